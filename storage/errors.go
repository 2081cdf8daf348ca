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

package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when reading, updating or deleting a key that
	// is not present.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyPresent is returned by PutIfAbsent on a key that is present.
	ErrAlreadyPresent = errors.New("already present")

	// ErrUnfittable is returned when an entry is larger than the store could
	// ever hold.
	ErrUnfittable = errors.New("entry does not fit")

	// ErrClosed is returned if the store was closed before the operation.
	ErrClosed = errors.New("storage closed")
)

// Op identifies one of the store operations.
type Op uint8

const (
	OpGet Op = iota
	OpPut
	OpPutIfAbsent
	OpSet
	OpDelete
)

var opNames = map[Op]string{
	OpGet:         "get",
	OpPut:         "put",
	OpPutIfAbsent: "putifabsent",
	OpSet:         "set",
	OpDelete:      "del",
}

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// ParseOp looks an operation up by its command name.
func ParseOp(name string) (Op, bool) {
	for op, n := range opNames {
		if n == name {
			return op, true
		}
	}
	return 0, false
}

// Do runs op against the store and converts a refusal into one of the
// package errors. Only OpGet returns a value. On an Executor the operation
// and the classification of a refusal run as one step.
func Do(s Storage, op Op, key, value []byte) (out []byte, err error) {
	if x, ok := s.(Executor); ok {
		if !x.Exec(func(s Storage) { out, err = do(s, op, key, value) }) {
			return nil, ErrClosed
		}
		return out, err
	}
	return do(s, op, key, value)
}

func do(s Storage, op Op, key, value []byte) ([]byte, error) {
	var ok bool
	switch op {
	case OpGet:
		var v []byte
		if v, ok = s.Get(key); ok {
			return v, nil
		}
	case OpPut:
		ok = s.Put(key, value)
	case OpPutIfAbsent:
		ok = s.PutIfAbsent(key, value)
	case OpSet:
		ok = s.Set(key, value)
	case OpDelete:
		ok = s.Delete(key)
	default:
		return nil, fmt.Errorf("unknown operation %v", op)
	}
	if ok {
		return nil, nil
	}
	return nil, explain(s, op, key)
}

// explain classifies a refused operation. A refusal never modifies the
// store, so as long as nobody else wrote in between, the key is still in
// the state the operation saw.
func explain(s Storage, op Op, key []byte) error {
	present := s.Contains(key)
	switch {
	case op == OpPutIfAbsent && present:
		return ErrAlreadyPresent
	case op == OpGet || op == OpDelete:
		return ErrNotFound
	case op == OpSet && !present:
		return ErrNotFound
	default:
		return ErrUnfittable
	}
}
