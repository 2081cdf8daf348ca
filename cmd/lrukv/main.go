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

// lrukv is a command line front end to the bounded LRU key-value store.
package main

import (
	"fmt"
	"net"
	"os"
	"slices"
	"strings"

	"github.com/lrukv/lrukv/cmd/utils"
	"github.com/lrukv/lrukv/common"
	"github.com/lrukv/lrukv/common/lru"
	"github.com/lrukv/lrukv/console/prompt"
	"github.com/lrukv/lrukv/internal/debug"
	"github.com/lrukv/lrukv/internal/flags"
	"github.com/lrukv/lrukv/internal/version"
	"github.com/lrukv/lrukv/log"
	"github.com/lrukv/lrukv/metrics/exp"
	"github.com/urfave/cli/v2"
)

const (
	clientIdentifier = "lrukv" // Client identifier used in logs, env vars and metrics
)

var (
	storeFlags = flags.Merge(utils.StoreFlags, []cli.Flag{configFileFlag})

	versionCommand = &cli.Command{
		Action:    printVersion,
		Name:      "version",
		Usage:     "Print version numbers",
		ArgsUsage: " ",
		Description: `
The output of this command is supposed to be machine-readable.
`,
	}
)

var app = flags.NewApp("a bounded in-memory LRU key-value store")

func init() {
	// Initialize the CLI app and start lrukv
	app.Action = shell
	app.Commands = []*cli.Command{
		shellCommand,
		benchCommand,
		dumpConfigCommand,
		versionCommand,
	}
	slices.SortFunc(app.Commands, func(a, b *cli.Command) int {
		return strings.Compare(a.Name, b.Name)
	})

	app.Flags = flags.Merge(
		storeFlags,
		utils.MetricsFlags,
		debug.Flags,
	)
	flags.AutoEnvVars(app.Flags, "LRUKV")

	app.Before = func(ctx *cli.Context) error {
		if err := debug.Setup(ctx); err != nil {
			return err
		}
		flags.CheckEnvVars(ctx, app.Flags, "LRUKV")
		return nil
	}
	app.After = func(ctx *cli.Context) error {
		debug.Exit()
		prompt.Stdin.Close() // Resets terminal mode.
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore creates the store described by the configuration and registers
// it for statistics reporting.
func openStore(cfg *lrukvConfig) *lru.Cache {
	store := lru.NewCache(cfg.Store.Capacity)
	exp.DefaultRegistry.Register(clientIdentifier+"/store", store)
	log.Info("Opened LRU store", "capacity", common.StorageSize(cfg.Store.Capacity))

	setupMetrics(&cfg.Metrics)
	return store
}

// setupMetrics starts the stand-alone statistics endpoint if requested.
func setupMetrics(cfg *metricsConfig) {
	if !cfg.Enabled {
		return
	}
	if cfg.HTTP != "" {
		address := net.JoinHostPort(cfg.HTTP, fmt.Sprintf("%d", cfg.Port))
		log.Info("Enabling stand-alone metrics HTTP endpoint", "address", address)
		exp.Setup(address)
	} else {
		log.Warn(fmt.Sprintf("--%s specified without --%s, metrics are only served with --pprof", utils.MetricsEnabledFlag.Name, utils.MetricsHTTPFlag.Name))
	}
}

func printVersion(ctx *cli.Context) error {
	fmt.Print(version.Info(clientIdentifier))
	return nil
}
