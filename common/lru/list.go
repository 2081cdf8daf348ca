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

// nilHandle marks the absence of a neighbour, or an empty list.
const nilHandle int32 = -1

// entry is a single record of the recency list. Keys never change once the
// entry is allocated, values are replaced in place on update.
type entry struct {
	key   string
	value []byte
	prev  int32 // towards the head (older)
	next  int32 // towards the tail (newer), or the next free slot
}

func (e *entry) size() uint64 {
	return uint64(len(e.key)) + uint64(len(e.value))
}

// list is a doubly-linked list of entries stored in an arena. Entries are
// addressed by their index in items, which stays valid for as long as the
// entry is linked. Released slots are chained through their next field and
// handed out again by alloc before the arena grows.
//
// The head is the least recently touched entry, the tail the most recent one.
type list struct {
	items []entry
	head  int32
	tail  int32
	free  int32
	len   int
}

func newList() *list {
	l := new(list)
	l.init()
	return l
}

// init reinitializes the list, making it empty and dropping the arena.
func (l *list) init() {
	l.items = nil
	l.head, l.tail, l.free = nilHandle, nilHandle, nilHandle
	l.len = 0
}

// alloc takes a slot off the free-list, or grows the arena if none is left.
// The returned entry is not linked.
func (l *list) alloc(key string, value []byte) int32 {
	var h int32
	if l.free != nilHandle {
		h = l.free
		l.free = l.items[h].next
	} else {
		h = int32(len(l.items))
		l.items = append(l.items, entry{})
	}
	l.items[h] = entry{key: key, value: value, prev: nilHandle, next: nilHandle}
	return h
}

// release returns an unlinked slot to the free-list. The key and value are
// dropped so the arena does not pin them.
func (l *list) release(h int32) {
	l.items[h] = entry{prev: nilHandle, next: l.free}
	l.free = h
}

// pushTail links h after the current tail.
func (l *list) pushTail(h int32) {
	e := &l.items[h]
	e.prev, e.next = l.tail, nilHandle
	if l.tail == nilHandle {
		l.head = h
	} else {
		l.items[l.tail].next = h
	}
	l.tail = h
	l.len++
}

// unlink splices h out of the list, joining its neighbours.
func (l *list) unlink(h int32) {
	e := &l.items[h]
	if e.prev == nilHandle {
		l.head = e.next
	} else {
		l.items[e.prev].next = e.next
	}
	if e.next == nilHandle {
		l.tail = e.prev
	} else {
		l.items[e.next].prev = e.prev
	}
	e.prev, e.next = nilHandle, nilHandle
	l.len--
}

// moveToTail marks h as the most recently touched entry.
func (l *list) moveToTail(h int32) {
	if h == l.tail {
		return
	}
	l.unlink(h)
	l.pushTail(h)
}

// appendTo appends the keys from head to tail.
func (l *list) appendTo(keys [][]byte) [][]byte {
	for h := l.head; h != nilHandle; h = l.items[h].next {
		keys = append(keys, []byte(l.items[h].key))
	}
	return keys
}
