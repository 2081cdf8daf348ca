// Copyright 2025 The lrukv Authors
// This file is part of lrukv.
//
// lrukv is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// lrukv is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with lrukv. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"runtime"
	"time"
	"unicode"

	"github.com/lrukv/lrukv/cmd/utils"
	"github.com/lrukv/lrukv/internal/flags"
	"github.com/naoina/toml"
	"github.com/urfave/cli/v2"
)

var (
	dumpConfigCommand = &cli.Command{
		Action:      dumpConfig,
		Name:        "dumpconfig",
		Usage:       "Export configuration values in a TOML format",
		ArgsUsage:   "<dumpfile (optional)>",
		Flags:       utils.BenchFlags,
		Description: `Export configuration values in TOML format (to stdout by default).`,
	}

	configFileFlag = &flags.PathFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: flags.MiscCategory,
	}
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

type storeConfig struct {
	Capacity uint64 // Byte budget, keys and values included
	History  string `toml:",omitempty"`
}

type benchConfig struct {
	Workers   int
	Duration  time.Duration
	Ops       uint64  `toml:",omitempty"`
	Rate      float64 `toml:",omitempty"`
	Keys      int
	ValueSize uint64
	Writes    int // Percentage of puts
	Deletes   int // Percentage of deletes
}

type metricsConfig struct {
	Enabled bool
	HTTP    string `toml:",omitempty"`
	Port    int
}

type lrukvConfig struct {
	Store   storeConfig
	Bench   benchConfig
	Metrics metricsConfig
}

// defaultConfig mirrors the default values of the command line flags.
func defaultConfig() lrukvConfig {
	return lrukvConfig{
		Store: storeConfig{
			Capacity: 64 << 20,
		},
		Bench: benchConfig{
			Workers:   runtime.NumCPU(),
			Duration:  10 * time.Second,
			Keys:      100000,
			ValueSize: 128,
			Writes:    20,
			Deletes:   5,
		},
		Metrics: metricsConfig{
			Port: 6061,
		},
	}
}

func loadConfig(file string, cfg *lrukvConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// loadBaseConfig loads the lrukvConfig based on the given command line
// parameters and config file.
func loadBaseConfig(ctx *cli.Context) (lrukvConfig, error) {
	// Load defaults.
	cfg := defaultConfig()

	// Load config file.
	if file := ctx.String(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}
	// Apply flags.
	setStoreConfig(ctx, &cfg.Store)
	setBenchConfig(ctx, &cfg.Bench)
	setMetricsConfig(ctx, &cfg.Metrics)

	if err := checkConfig(ctx, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func setStoreConfig(ctx *cli.Context, cfg *storeConfig) {
	if ctx.IsSet(utils.CapacityFlag.Name) {
		cfg.Capacity = flags.GlobalSize(ctx, utils.CapacityFlag.Name)
	}
	if ctx.IsSet(utils.HistoryFlag.Name) {
		cfg.History = ctx.String(utils.HistoryFlag.Name)
	}
}

func setBenchConfig(ctx *cli.Context, cfg *benchConfig) {
	if ctx.IsSet(utils.BenchWorkersFlag.Name) {
		cfg.Workers = ctx.Int(utils.BenchWorkersFlag.Name)
	}
	if ctx.IsSet(utils.BenchDurationFlag.Name) {
		cfg.Duration = ctx.Duration(utils.BenchDurationFlag.Name)
	}
	if ctx.IsSet(utils.BenchOpsFlag.Name) {
		cfg.Ops = ctx.Uint64(utils.BenchOpsFlag.Name)
	}
	if ctx.IsSet(utils.BenchRateFlag.Name) {
		cfg.Rate = ctx.Float64(utils.BenchRateFlag.Name)
	}
	if ctx.IsSet(utils.BenchKeysFlag.Name) {
		cfg.Keys = ctx.Int(utils.BenchKeysFlag.Name)
	}
	if ctx.IsSet(utils.BenchValueSizeFlag.Name) {
		cfg.ValueSize = flags.GlobalSize(ctx, utils.BenchValueSizeFlag.Name)
	}
	if ctx.IsSet(utils.BenchWritesFlag.Name) {
		cfg.Writes = ctx.Int(utils.BenchWritesFlag.Name)
	}
	if ctx.IsSet(utils.BenchDeletesFlag.Name) {
		cfg.Deletes = ctx.Int(utils.BenchDeletesFlag.Name)
	}
	// An explicit op count replaces the default duration.
	if ctx.IsSet(utils.BenchOpsFlag.Name) && !ctx.IsSet(utils.BenchDurationFlag.Name) {
		cfg.Duration = 0
	}
}

func setMetricsConfig(ctx *cli.Context, cfg *metricsConfig) {
	if ctx.IsSet(utils.MetricsEnabledFlag.Name) {
		cfg.Enabled = ctx.Bool(utils.MetricsEnabledFlag.Name)
	}
	if ctx.IsSet(utils.MetricsHTTPFlag.Name) {
		cfg.HTTP = ctx.String(utils.MetricsHTTPFlag.Name)
	}
	if ctx.IsSet(utils.MetricsPortFlag.Name) {
		cfg.Port = ctx.Int(utils.MetricsPortFlag.Name)
	}
}

func checkConfig(ctx *cli.Context, cfg *lrukvConfig) error {
	if err := utils.CheckExclusive(ctx.IsSet, utils.BenchOpsFlag.Name, utils.BenchDurationFlag.Name); err != nil {
		return err
	}
	b := &cfg.Bench
	if err := utils.CheckPercent(utils.BenchWritesFlag.Name, b.Writes); err != nil {
		return err
	}
	if err := utils.CheckPercent(utils.BenchDeletesFlag.Name, b.Deletes); err != nil {
		return err
	}
	if b.Writes+b.Deletes > 100 {
		return fmt.Errorf("write and delete percentages add up to %d", b.Writes+b.Deletes)
	}
	if b.Workers <= 0 {
		return fmt.Errorf("invalid worker count %d", b.Workers)
	}
	if b.Keys <= 0 {
		return fmt.Errorf("invalid key count %d", b.Keys)
	}
	if b.Ops == 0 && b.Duration <= 0 {
		return errors.New("benchmark needs either a duration or an operation count")
	}
	return nil
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg, err := loadBaseConfig(ctx)
	if err != nil {
		return err
	}
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}

	dump := os.Stdout
	if ctx.NArg() > 0 {
		dump, err = os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer dump.Close()
	}
	_, err = dump.Write(out)
	return err
}
