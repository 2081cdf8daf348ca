// Copyright 2025 The lrukv Authors
// This file is part of the lrukv library.
//
// The lrukv library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The lrukv library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the lrukv library. If not, see <http://www.gnu.org/licenses/>.

package log

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"regexp"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// errVmoduleSyntax is returned when a user vmodule pattern is invalid.
var errVmoduleSyntax = errors.New("expect comma-separated list of filename=N")

// GlogHandler is a log handler that mimics the filtering features of Google's
// glog logger: a global level, raised for call sites matching file patterns.
type GlogHandler struct {
	origin slog.Handler

	level    atomic.Int32 // Current log level
	override atomic.Bool  // Whether any vmodule pattern is set

	patterns  []pattern              // Current list of patterns to override with
	siteCache map[uintptr]slog.Level // Cache of callsite pattern evaluations
	lock      sync.RWMutex           // Lock protecting the override pattern list
}

// NewGlogHandler creates a new log handler with filtering functionality similar
// to Google's glog logger. The returned handler implements Handler.
func NewGlogHandler(h slog.Handler) *GlogHandler {
	return &GlogHandler{
		origin: h,
	}
}

type pattern struct {
	pattern *regexp.Regexp
	level   slog.Level
}

// Verbosity sets the glog verbosity ceiling. The verbosity of individual packages
// and source files can be raised using Vmodule.
func (h *GlogHandler) Verbosity(level slog.Level) {
	h.level.Store(int32(level))
}

// Vmodule sets the glog verbosity pattern.
//
// The syntax of the argument is a comma-separated list of pattern=N, where the
// pattern is a literal file name or "glob" pattern matching and N is a V level.
//
//	pattern="simple_lru.go=5"
//	 sets the V level to 5 in all Go files named "simple_lru.go"
//
//	pattern="lru=4"
//	 sets V to 4 in all files of any packages whose import path ends in "lru"
//
//	pattern="common/*=4"
//	 sets V to 4 in all files of any packages whose import path contains "common"
func (h *GlogHandler) Vmodule(ruleset string) error {
	var filter []pattern
	for _, rule := range strings.Split(ruleset, ",") {
		if len(rule) == 0 {
			continue
		}
		name, lvl, ok := strings.Cut(rule, "=")
		name, lvl = strings.TrimSpace(name), strings.TrimSpace(lvl)
		if !ok || name == "" || lvl == "" {
			return errVmoduleSyntax
		}
		l, err := strconv.Atoi(lvl)
		if err != nil {
			return errVmoduleSyntax
		}
		level := FromLegacyLevel(l)
		if level == LevelCrit {
			continue
		}
		matcher := ".*"
		for _, comp := range strings.Split(name, "/") {
			if comp == "*" {
				matcher += "(/.*)?"
			} else if comp != "" {
				matcher += "/" + regexp.QuoteMeta(comp)
			}
		}
		if !strings.HasSuffix(name, ".go") {
			matcher += "/[^/]+\\.go"
		}
		filter = append(filter, pattern{regexp.MustCompile(matcher + "$"), level})
	}
	h.lock.Lock()
	defer h.lock.Unlock()

	h.patterns = filter
	h.siteCache = make(map[uintptr]slog.Level)
	h.override.Store(len(filter) != 0)
	return nil
}

// Enabled implements slog.Handler, reporting whether the handler handles records
// at the given level.
func (h *GlogHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.override.Load() || slog.Level(h.level.Load()) <= lvl
}

// WithAttrs implements slog.Handler, returning a new Handler whose attributes
// consist of both the receiver's attributes and the arguments.
func (h *GlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.lock.RLock()
	res := &GlogHandler{
		origin:    h.origin.WithAttrs(attrs),
		patterns:  slices.Clone(h.patterns),
		siteCache: maps.Clone(h.siteCache),
	}
	h.lock.RUnlock()

	res.level.Store(h.level.Load())
	res.override.Store(h.override.Load())
	return res
}

// WithGroup implements slog.Handler. Groups are not supported.
func (h *GlogHandler) WithGroup(name string) slog.Handler {
	panic("not implemented")
}

// Handle implements slog.Handler, filtering a log record through the global
// and per-file levels.
func (h *GlogHandler) Handle(_ context.Context, r slog.Record) error {
	if slog.Level(h.level.Load()) <= r.Level {
		return h.origin.Handle(context.Background(), r)
	}
	h.lock.RLock()
	lvl, ok := h.siteCache[r.PC]
	h.lock.RUnlock()

	if !ok {
		h.lock.Lock()
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		lvl = LevelCrit + 1
		for _, rule := range h.patterns {
			if rule.pattern.MatchString("+" + frame.File) {
				lvl = rule.level
			}
		}
		if h.siteCache != nil {
			h.siteCache[r.PC] = lvl
		}
		h.lock.Unlock()
	}
	if lvl <= r.Level {
		return h.origin.Handle(context.Background(), r)
	}
	return nil
}
