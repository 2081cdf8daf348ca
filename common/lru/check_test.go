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
	"fmt"
)

// verify walks the recency list in both directions and cross-checks it with
// the index, the size accounting and the free-list.
func (c *SimpleLRU) verify() error {
	l := c.list
	var (
		seen  = make(map[string]bool)
		size  uint64
		count int
		prev  = nilHandle
	)
	for h := l.head; h != nilHandle; h = l.items[h].next {
		e := &l.items[h]
		if e.prev != prev {
			return fmt.Errorf("entry %d: prev link %d, want %d", h, e.prev, prev)
		}
		if seen[e.key] {
			return fmt.Errorf("duplicate key %q in list", e.key)
		}
		seen[e.key] = true
		if ih, ok := c.index[e.key]; !ok || ih != h {
			return fmt.Errorf("key %q: index handle %d (present %t), list handle %d", e.key, ih, ok, h)
		}
		size += e.size()
		count++
		prev = h
		if count > len(l.items) {
			return fmt.Errorf("cycle in recency list")
		}
	}
	if l.tail != prev {
		return fmt.Errorf("tail %d, last reachable entry %d", l.tail, prev)
	}
	// Walk backwards as well.
	back := 0
	for h := l.tail; h != nilHandle; h = l.items[h].prev {
		back++
		if back > count {
			return fmt.Errorf("backward walk longer than forward walk")
		}
	}
	if back != count {
		return fmt.Errorf("backward walk saw %d entries, forward %d", back, count)
	}
	if count != len(c.index) || count != l.len {
		return fmt.Errorf("list has %d entries, index %d, len %d", count, len(c.index), l.len)
	}
	if size != c.size {
		return fmt.Errorf("accounted size %d, actual %d", c.size, size)
	}
	if c.size > c.capacity {
		return fmt.Errorf("size %d exceeds capacity %d", c.size, c.capacity)
	}
	free := 0
	for h := l.free; h != nilHandle; h = l.items[h].next {
		free++
		if free > len(l.items) {
			return fmt.Errorf("cycle in free-list")
		}
	}
	if free+count != len(l.items) {
		return fmt.Errorf("%d free + %d live slots, arena holds %d", free, count, len(l.items))
	}
	return nil
}
