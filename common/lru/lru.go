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

package lru

import (
	"sync"

	"github.com/lrukv/lrukv/common"
	"github.com/lrukv/lrukv/internal/syncx"
	"github.com/lrukv/lrukv/log"
	"github.com/lrukv/lrukv/storage"
)

// Cache is a SimpleLRU guarded by a single lock, so that every operation runs
// as if it had the store to itself. Once closed, writes report false and
// reads report a miss.
type Cache struct {
	lru       *SimpleLRU
	lock      *syncx.ClosableMutex
	closeOnce sync.Once
}

// NewCache creates a locked store holding at most capacity bytes.
func NewCache(capacity uint64) *Cache {
	return &Cache{
		lru:  NewSimpleLRU(capacity),
		lock: syncx.NewClosableMutex(),
	}
}

// Put inserts or replaces the value under key.
func (c *Cache) Put(key, value []byte) bool {
	if !c.lock.TryLock() {
		return false
	}
	defer c.lock.Unlock()

	return c.lru.Put(key, value)
}

// PutIfAbsent inserts the value only if key is not stored yet.
func (c *Cache) PutIfAbsent(key, value []byte) bool {
	if !c.lock.TryLock() {
		return false
	}
	defer c.lock.Unlock()

	return c.lru.PutIfAbsent(key, value)
}

// Set replaces the value of an existing key.
func (c *Cache) Set(key, value []byte) bool {
	if !c.lock.TryLock() {
		return false
	}
	defer c.lock.Unlock()

	return c.lru.Set(key, value)
}

// Delete removes key from the store.
func (c *Cache) Delete(key []byte) bool {
	if !c.lock.TryLock() {
		return false
	}
	defer c.lock.Unlock()

	return c.lru.Delete(key)
}

// Get returns a copy of the value stored under key.
func (c *Cache) Get(key []byte) ([]byte, bool) {
	if !c.lock.TryLock() {
		return nil, false
	}
	defer c.lock.Unlock()

	return c.lru.Get(key)
}

// Contains reports whether key is stored.
func (c *Cache) Contains(key []byte) bool {
	if !c.lock.TryLock() {
		return false
	}
	defer c.lock.Unlock()

	return c.lru.Contains(key)
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	if !c.lock.TryLock() {
		return 0
	}
	defer c.lock.Unlock()

	return c.lru.Len()
}

// Size returns the number of bytes currently held.
func (c *Cache) Size() uint64 {
	if !c.lock.TryLock() {
		return 0
	}
	defer c.lock.Unlock()

	return c.lru.Size()
}

// Capacity returns the byte budget. It never changes, so no lock is taken.
func (c *Cache) Capacity() uint64 {
	return c.lru.Capacity()
}

// Keys returns all keys, oldest first.
func (c *Cache) Keys() [][]byte {
	if !c.lock.TryLock() {
		return nil
	}
	defer c.lock.Unlock()

	return c.lru.Keys()
}

// Stats returns a snapshot of the store counters.
func (c *Cache) Stats() Stats {
	if !c.lock.TryLock() {
		return Stats{Capacity: c.lru.Capacity()}
	}
	defer c.lock.Unlock()

	return c.lru.Stats()
}

// Purge drops every entry.
func (c *Cache) Purge() {
	if !c.lock.TryLock() {
		return
	}
	defer c.lock.Unlock()

	c.lru.Purge()
}

// Exec runs fn against the underlying store while holding the lock. It
// reports false without calling fn once the store is closed.
func (c *Cache) Exec(fn func(s storage.Storage)) bool {
	if !c.lock.TryLock() {
		return false
	}
	defer c.lock.Unlock()

	fn(c.lru)
	return true
}

// Close waits for the running operation to finish and shuts the store down.
// Later calls are no-ops.
func (c *Cache) Close() {
	c.closeOnce.Do(func() {
		// Nobody can take the lock after this, the store is ours.
		c.lock.Close()
		stats := c.lru.Stats()
		c.lru.Purge()

		log.Debug("Closed LRU store", "items", stats.Items, "size", common.StorageSize(stats.Size),
			"inserts", stats.Inserts, "evictions", stats.Evictions)
	})
}

// Closed reports whether the store has been shut down.
func (c *Cache) Closed() bool {
	return c.lock.Closed()
}
