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

// Package exp exposes store statistics through the expvar package.
package exp

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/lrukv/lrukv/common/lru"
	"github.com/lrukv/lrukv/log"
)

// Source is anything that can report store statistics.
type Source interface {
	Stats() lru.Stats
}

// Registry holds the named stores whose statistics are published.
type Registry struct {
	mu      sync.Mutex
	sources map[string]Source
}

// DefaultRegistry is the registry used by the command line tool.
var DefaultRegistry = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

// Register adds a store under the given name, replacing any previous one.
func (r *Registry) Register(name string, s Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[name] = s
}

// Unregister removes the named store.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sources, name)
}

// Each calls fn for every registered store in name order.
func (r *Registry) Each(fn func(name string, s Source)) {
	r.mu.Lock()
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sources := make([]Source, len(names))
	sort.Strings(names)
	for i, name := range names {
		sources[i] = r.sources[name]
	}
	r.mu.Unlock()

	for i, name := range names {
		fn(name, sources[i])
	}
}

type exp struct {
	expvarLock sync.Mutex // expvar panics if you try to register the same var twice, so we must probe it safely
	registry   *Registry
}

func (exp *exp) expHandler(w http.ResponseWriter, r *http.Request) {
	// load our variables into expvar
	exp.syncToExpvar()

	// now just run the official expvar handler code (which is not publicly callable, so pasted inline)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	fmt.Fprintf(w, "{\n")
	first := true
	expvar.Do(func(kv expvar.KeyValue) {
		if !first {
			fmt.Fprintf(w, ",\n")
		}
		first = false
		fmt.Fprintf(w, "%q: %s", kv.Key, kv.Value)
	})
	fmt.Fprintf(w, "\n}\n")
}

// Exp will register an expvar powered metrics handler with http.DefaultServeMux
// on "/debug/metrics".
func Exp(r *Registry) {
	h := ExpHandler(r)
	// this would cause a panic:
	// panic: http: multiple registrations for /debug/vars
	// http.HandleFunc("/debug/vars", e.expHandler)
	// haven't found an elegant way, so just use a different endpoint
	http.Handle("/debug/metrics", h)
}

// ExpHandler will return an expvar powered metrics handler.
func ExpHandler(r *Registry) http.Handler {
	e := exp{sync.Mutex{}, r}
	return http.HandlerFunc(e.expHandler)
}

// Setup starts a dedicated metrics server at the given address.
// This function enables metrics reporting separate from pprof.
func Setup(address string) {
	m := http.NewServeMux()
	m.Handle("/debug/metrics", ExpHandler(DefaultRegistry))
	log.Info("Starting metrics server", "addr", fmt.Sprintf("http://%s/debug/metrics", address))
	go func() {
		if err := http.ListenAndServe(address, m); err != nil {
			log.Error("Failure in running metrics server", "err", err)
		}
	}()
}

func (exp *exp) getInt(name string) *expvar.Int {
	var v *expvar.Int
	exp.expvarLock.Lock()
	p := expvar.Get(name)
	if p != nil {
		v = p.(*expvar.Int)
	} else {
		v = new(expvar.Int)
		expvar.Publish(name, v)
	}
	exp.expvarLock.Unlock()
	return v
}

func (exp *exp) getFloat(name string) *expvar.Float {
	var v *expvar.Float
	exp.expvarLock.Lock()
	p := expvar.Get(name)
	if p != nil {
		v = p.(*expvar.Float)
	} else {
		v = new(expvar.Float)
		expvar.Publish(name, v)
	}
	exp.expvarLock.Unlock()
	return v
}

func (exp *exp) publishStats(name string, s lru.Stats) {
	exp.getInt(name + ".items").Set(int64(s.Items))
	exp.getInt(name + ".size").Set(int64(s.Size))
	exp.getInt(name + ".capacity").Set(int64(s.Capacity))
	exp.getInt(name + ".hits").Set(int64(s.Hits))
	exp.getInt(name + ".misses").Set(int64(s.Misses))
	exp.getInt(name + ".inserts").Set(int64(s.Inserts))
	exp.getInt(name + ".updates").Set(int64(s.Updates))
	exp.getInt(name + ".deletes").Set(int64(s.Deletes))
	exp.getInt(name + ".evictions").Set(int64(s.Evictions))
	exp.getInt(name + ".rejected").Set(int64(s.Rejected))
	exp.getInt(name + ".conflicts").Set(int64(s.Conflicts))

	var ratio float64
	if lookups := s.Hits + s.Misses; lookups > 0 {
		ratio = float64(s.Hits) / float64(lookups)
	}
	exp.getFloat(name + ".hit-ratio").Set(ratio)
}

func (exp *exp) syncToExpvar() {
	exp.registry.Each(func(name string, s Source) {
		exp.publishStats(name, s.Stats())
	})
}
