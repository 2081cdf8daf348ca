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

// Package lru implements a byte-bounded LRU key-value store.
package lru

import "bytes"

// Stats holds the current occupancy of a store together with its operation
// counters.
type Stats struct {
	Items    int    // Number of live entries
	Size     uint64 // Bytes held, keys plus values
	Capacity uint64 // Byte budget

	Hits      uint64 // Get on a present key
	Misses    uint64 // Get on an absent key
	Inserts   uint64 // New entries created
	Updates   uint64 // Values replaced on existing entries
	Deletes   uint64 // Entries removed by Delete
	Evictions uint64 // Entries dropped to make room
	Rejected  uint64 // Writes refused because the entry can never fit
	Conflicts uint64 // PutIfAbsent on a present key
}

// SimpleLRU is a key-value store whose capacity is measured in bytes, counting
// both keys and values. When a write needs more room than is left, the least
// recently inserted or updated entries are evicted until it fits.
//
// Reads do not count as use: Get leaves the recency order untouched.
//
// A write that could not fit even into an empty store is refused up front and
// leaves the store exactly as it was.
//
// This type is not safe for concurrent use, see Cache for a locked variant.
// The zero value is not valid, instances must be created using NewSimpleLRU.
type SimpleLRU struct {
	list     *list
	index    map[string]int32
	size     uint64
	capacity uint64
	stats    Stats
}

// NewSimpleLRU creates a store holding at most capacity bytes.
func NewSimpleLRU(capacity uint64) *SimpleLRU {
	return &SimpleLRU{
		list:     newList(),
		index:    make(map[string]int32),
		capacity: capacity,
	}
}

// Put inserts the value under key, replacing and refreshing any previous one.
// It reports false if the pair can never fit.
func (c *SimpleLRU) Put(key, value []byte) bool {
	if h, ok := c.index[string(key)]; ok {
		return c.update(h, value)
	}
	return c.insert(key, value)
}

// PutIfAbsent inserts the value only if key is not stored yet. An existing
// entry is left as is, including its position in the recency order.
func (c *SimpleLRU) PutIfAbsent(key, value []byte) bool {
	if _, ok := c.index[string(key)]; ok {
		c.stats.Conflicts++
		return false
	}
	return c.insert(key, value)
}

// Set replaces the value of an existing key. It reports false if the key is
// absent or the new pair can never fit.
func (c *SimpleLRU) Set(key, value []byte) bool {
	h, ok := c.index[string(key)]
	if !ok {
		return false
	}
	return c.update(h, value)
}

// Delete removes key from the store, reporting whether it was present.
func (c *SimpleLRU) Delete(key []byte) bool {
	h, ok := c.index[string(key)]
	if !ok {
		return false
	}
	c.remove(h)
	c.stats.Deletes++
	return true
}

// Get returns a copy of the value stored under key.
func (c *SimpleLRU) Get(key []byte) ([]byte, bool) {
	h, ok := c.index[string(key)]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	return bytes.Clone(c.list.items[h].value), true
}

// Contains reports whether key is stored, without touching any counter.
func (c *SimpleLRU) Contains(key []byte) bool {
	_, ok := c.index[string(key)]
	return ok
}

// Len returns the number of live entries.
func (c *SimpleLRU) Len() int {
	return c.list.len
}

// Size returns the number of bytes currently held.
func (c *SimpleLRU) Size() uint64 {
	return c.size
}

// Capacity returns the byte budget fixed at construction.
func (c *SimpleLRU) Capacity() uint64 {
	return c.capacity
}

// Keys returns all keys, oldest first.
func (c *SimpleLRU) Keys() [][]byte {
	return c.list.appendTo(make([][]byte, 0, c.list.len))
}

// Stats returns a snapshot of the store counters.
func (c *SimpleLRU) Stats() Stats {
	s := c.stats
	s.Items = c.list.len
	s.Size = c.size
	s.Capacity = c.capacity
	return s
}

// Purge drops every entry. Counters are kept.
func (c *SimpleLRU) Purge() {
	c.list.init()
	clear(c.index)
	c.size = 0
}

func (c *SimpleLRU) insert(key, value []byte) bool {
	need := uint64(len(key)) + uint64(len(value))
	if !c.ensureFree(need) {
		c.stats.Rejected++
		return false
	}
	h := c.list.alloc(string(key), bytes.Clone(value))
	c.list.pushTail(h)
	c.index[c.list.items[h].key] = h
	c.size += need
	c.stats.Inserts++
	return true
}

// update replaces the value of h and makes it the most recent entry. The entry
// is moved to the tail before any eviction, so only older entries make room
// for the growth: once everything else is gone the store holds exactly the
// old pair, and the new one fits because it passed the capacity check.
func (c *SimpleLRU) update(h int32, value []byte) bool {
	var (
		e       = &c.list.items[h]
		oldSize = uint64(len(e.value))
		newSize = uint64(len(value))
	)
	if uint64(len(e.key))+newSize > c.capacity {
		c.stats.Rejected++
		return false
	}
	c.list.moveToTail(h)
	if newSize > oldSize {
		c.ensureFree(newSize - oldSize)
	}
	e = &c.list.items[h]
	e.value = bytes.Clone(value)
	c.size = c.size - oldSize + newSize
	c.stats.Updates++
	return true
}

// ensureFree evicts from the head until n more bytes fit. Nothing is evicted
// if n exceeds the capacity.
func (c *SimpleLRU) ensureFree(n uint64) bool {
	if n > c.capacity {
		return false
	}
	for c.size > c.capacity-n {
		if !c.evictOldest() {
			break
		}
	}
	return true
}

// evictOldest drops the head of the recency list.
func (c *SimpleLRU) evictOldest() bool {
	h := c.list.head
	if h == nilHandle {
		return false
	}
	c.remove(h)
	c.stats.Evictions++
	return true
}

// remove unlinks h from both the index and the list and frees its slot.
func (c *SimpleLRU) remove(h int32) {
	e := &c.list.items[h]
	delete(c.index, e.key)
	c.size -= e.size()
	c.list.unlink(h)
	c.list.release(h)
}
