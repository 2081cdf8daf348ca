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
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/lrukv/lrukv/cmd/utils"
	"github.com/lrukv/lrukv/common/lru"
	"github.com/lrukv/lrukv/console"
	"github.com/lrukv/lrukv/log"
	"github.com/lrukv/lrukv/storage"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

var benchCommand = &cli.Command{
	Action:    bench,
	Name:      "bench",
	Usage:     "Run a concurrent load against a fresh store",
	ArgsUsage: " ",
	Flags:     utils.BenchFlags,
	Description: `
The bench command starts a number of workers issuing a random mix of gets, puts
and deletes over a fixed key space against one store, then reports throughput
and the store counters.`,
}

// progressInterval is the time between two benchmark progress reports.
const progressInterval = 8 * time.Second

// benchResult collects the outcome of a benchmark run.
type benchResult struct {
	ops     [storage.OpDelete + 1]uint64 // Operations issued, by kind
	refused [storage.OpDelete + 1]uint64 // Operations the store refused, by kind
	elapsed time.Duration
	stats   lru.Stats
}

func (r *benchResult) total() uint64 {
	var n uint64
	for _, c := range r.ops {
		n += c
	}
	return n
}

func bench(ctx *cli.Context) error {
	cfg, err := loadBaseConfig(ctx)
	if err != nil {
		return err
	}
	store := openStore(&cfg)
	defer store.Close()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Starting benchmark", "workers", cfg.Bench.Workers, "duration", cfg.Bench.Duration, "ops", cfg.Bench.Ops, "rate", cfg.Bench.Rate)
	res, err := runBench(runCtx, store, &cfg.Bench)
	if err != nil {
		return err
	}
	printBenchResult(os.Stdout, res)
	return nil
}

// runBench drives the store with cfg.Workers concurrent workers until the
// duration elapses, the operation budget is spent or ctx is cancelled.
func runBench(ctx context.Context, store *lru.Cache, cfg *benchConfig) (*benchResult, error) {
	if cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Duration)
		defer cancel()
	}
	var limiter *rate.Limiter
	if cfg.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Workers)
	}
	var (
		issued  atomic.Uint64
		ops     [storage.OpDelete + 1]atomic.Uint64
		refused [storage.OpDelete + 1]atomic.Uint64
		start   = time.Now()
		done    = make(chan struct{})
	)
	go func() {
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				log.Info("Benchmark in progress", "ops", issued.Load(), "elapsed", time.Since(start).Round(time.Millisecond), "items", store.Len())
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Workers; w++ {
		seed := start.UnixNano() + int64(w)
		g.Go(func() error {
			var (
				rng   = rand.New(rand.NewSource(seed))
				key   = make([]byte, 0, 16)
				value = make([]byte, cfg.ValueSize)
			)
			for gctx.Err() == nil {
				if cfg.Ops > 0 && issued.Add(1) > cfg.Ops {
					return nil
				}
				if limiter != nil {
					if err := limiter.Wait(gctx); err != nil {
						return nil
					}
				}
				key = strconv.AppendInt(append(key[:0], "key-"...), int64(rng.Intn(cfg.Keys)), 10)

				var (
					op storage.Op
					ok bool
				)
				switch p := rng.Intn(100); {
				case p < cfg.Deletes:
					op, ok = storage.OpDelete, store.Delete(key)
				case p < cfg.Deletes+cfg.Writes:
					rng.Read(value)
					op, ok = storage.OpPut, store.Put(key, value)
				default:
					_, ok = store.Get(key)
					op = storage.OpGet
				}
				if cfg.Ops == 0 {
					issued.Add(1)
				}
				ops[op].Add(1)
				if !ok {
					if store.Closed() {
						return storage.ErrClosed
					}
					refused[op].Add(1)
				}
			}
			return nil
		})
	}
	err := g.Wait()
	close(done)

	res := &benchResult{elapsed: time.Since(start), stats: store.Stats()}
	for i := range ops {
		res.ops[i] = ops[i].Load()
		res.refused[i] = refused[i].Load()
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return res, err
	}
	log.Info("Benchmark finished", "ops", res.total(), "elapsed", res.elapsed.Round(time.Millisecond))
	return res, nil
}

func printBenchResult(w io.Writer, res *benchResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Operation", "Count", "Refused"})
	for _, op := range []storage.Op{storage.OpGet, storage.OpPut, storage.OpDelete} {
		table.Append([]string{op.String(), strconv.FormatUint(res.ops[op], 10), strconv.FormatUint(res.refused[op], 10)})
	}
	var throughput float64
	if secs := res.elapsed.Seconds(); secs > 0 {
		throughput = float64(res.total()) / secs
	}
	table.SetFooter([]string{"Total", strconv.FormatUint(res.total(), 10), fmt.Sprintf("%.0f ops/s", throughput)})
	table.Render()

	console.WriteStats(w, res.stats)
}
