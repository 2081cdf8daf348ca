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

// Package utils contains internal helper functions for lrukv commands.
package utils

import (
	"runtime"
	"time"

	"github.com/lrukv/lrukv/internal/flags"
	"github.com/urfave/cli/v2"
)

var (
	// Store settings
	CapacityFlag = &flags.SizeFlag{
		Name:     "capacity",
		Usage:    "Byte budget of the store, keys and values included (e.g. 64MiB, 1GB)",
		Value:    64 << 20,
		Category: flags.StoreCategory,
	}
	HistoryFlag = &flags.PathFlag{
		Name:     "history",
		Usage:    "File to keep the shell command history in",
		Category: flags.StoreCategory,
	}

	// Benchmark settings
	BenchWorkersFlag = &cli.IntFlag{
		Name:     "workers",
		Usage:    "Number of concurrent benchmark workers",
		Value:    runtime.NumCPU(),
		Category: flags.BenchCategory,
	}
	BenchDurationFlag = &cli.DurationFlag{
		Name:     "duration",
		Usage:    "How long to run the benchmark for",
		Value:    10 * time.Second,
		Category: flags.BenchCategory,
	}
	BenchOpsFlag = &cli.Uint64Flag{
		Name:     "ops",
		Usage:    "Stop after this many operations (0 = run for the full duration)",
		Category: flags.BenchCategory,
	}
	BenchRateFlag = &cli.Float64Flag{
		Name:     "rate",
		Usage:    "Maximum operations per second across all workers (0 = unlimited)",
		Category: flags.BenchCategory,
	}
	BenchKeysFlag = &cli.IntFlag{
		Name:     "keys",
		Usage:    "Number of distinct keys to draw from",
		Value:    100000,
		Category: flags.BenchCategory,
	}
	BenchValueSizeFlag = &flags.SizeFlag{
		Name:     "valuesize",
		Usage:    "Size of the values written",
		Value:    128,
		Category: flags.BenchCategory,
	}
	BenchWritesFlag = &cli.IntFlag{
		Name:     "writes",
		Usage:    "Percentage of operations that are writes",
		Value:    20,
		Category: flags.BenchCategory,
	}
	BenchDeletesFlag = &cli.IntFlag{
		Name:     "deletes",
		Usage:    "Percentage of operations that are deletes",
		Value:    5,
		Category: flags.BenchCategory,
	}

	// Metrics settings
	MetricsEnabledFlag = &cli.BoolFlag{
		Name:     "metrics",
		Usage:    "Enable the store statistics endpoint",
		Category: flags.MetricsCategory,
	}
	MetricsHTTPFlag = &cli.StringFlag{
		Name:     "metrics.addr",
		Usage:    "Enable stand-alone metrics HTTP server listening interface",
		Category: flags.MetricsCategory,
	}
	MetricsPortFlag = &cli.IntFlag{
		Name:     "metrics.port",
		Usage:    "Metrics HTTP server listening port",
		Value:    6061,
		Category: flags.MetricsCategory,
	}
)

var (
	// StoreFlags is the flag group of the store itself.
	StoreFlags = []cli.Flag{
		CapacityFlag,
		HistoryFlag,
	}
	// BenchFlags is the flag group of the bench command.
	BenchFlags = []cli.Flag{
		BenchWorkersFlag,
		BenchDurationFlag,
		BenchOpsFlag,
		BenchRateFlag,
		BenchKeysFlag,
		BenchValueSizeFlag,
		BenchWritesFlag,
		BenchDeletesFlag,
	}
	// MetricsFlags is the flag group of metrics reporting.
	MetricsFlags = []cli.Flag{
		MetricsEnabledFlag,
		MetricsHTTPFlag,
		MetricsPortFlag,
	}
)
