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

// Package storage defines the interfaces to a key-value store backend.
package storage

// Reader wraps the read methods of a backing store.
type Reader interface {
	// Contains reports whether the key is present in the store.
	Contains(key []byte) bool

	// Get retrieves the value stored under key, if any. Reads never change
	// which entry is evicted next.
	Get(key []byte) ([]byte, bool)
}

// Writer wraps the write methods of a backing store. Each method reports
// whether it took effect; a store refusing a write is left unchanged.
type Writer interface {
	// Put inserts the value under key, replacing any previous value.
	Put(key, value []byte) bool

	// PutIfAbsent inserts the value only if the key is not present.
	PutIfAbsent(key, value []byte) bool

	// Set replaces the value of a key that is already present.
	Set(key, value []byte) bool

	// Delete removes the key from the store.
	Delete(key []byte) bool
}

// Storage contains all the methods required by the key-value service.
type Storage interface {
	Reader
	Writer
}

// Executor is implemented by stores shared between goroutines. Exec runs fn
// against the store with every other caller held off, and reports false
// without calling fn if the store is closed.
type Executor interface {
	Exec(fn func(s Storage)) bool
}
