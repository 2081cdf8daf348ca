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

package storage_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/lrukv/lrukv/common/lru"
	"github.com/lrukv/lrukv/storage"
	"github.com/stretchr/testify/require"
)

var (
	_ storage.Storage = (*lru.SimpleLRU)(nil)
	_ storage.Storage  = (*lru.Cache)(nil)
	_ storage.Executor = (*lru.Cache)(nil)
)

func TestDo(t *testing.T) {
	s := lru.NewSimpleLRU(8)

	tests := []struct {
		op         storage.Op
		key, value string
		want       string
		err        error
	}{
		{op: storage.OpGet, key: "a", err: storage.ErrNotFound},
		{op: storage.OpSet, key: "a", value: "1", err: storage.ErrNotFound},
		{op: storage.OpDelete, key: "a", err: storage.ErrNotFound},
		{op: storage.OpPut, key: "a", value: "123456789", err: storage.ErrUnfittable},
		{op: storage.OpPut, key: "a", value: "1"},
		{op: storage.OpGet, key: "a", want: "1"},
		{op: storage.OpPutIfAbsent, key: "a", value: "2", err: storage.ErrAlreadyPresent},
		{op: storage.OpPutIfAbsent, key: "bb", value: "123456789", err: storage.ErrUnfittable},
		{op: storage.OpSet, key: "a", value: "123456789", err: storage.ErrUnfittable},
		{op: storage.OpSet, key: "a", value: "22"},
		{op: storage.OpGet, key: "a", want: "22"},
		{op: storage.OpDelete, key: "a"},
		{op: storage.OpGet, key: "a", err: storage.ErrNotFound},
	}
	for i, tt := range tests {
		v, err := storage.Do(s, tt.op, []byte(tt.key), []byte(tt.value))
		require.ErrorIs(t, err, tt.err, "test %d: %v %s", i, tt.op, tt.key)
		if tt.err == nil {
			require.NoError(t, err, "test %d", i)
		}
		require.Equal(t, tt.want, string(v), "test %d", i)
	}
}

func TestDoClosed(t *testing.T) {
	c := lru.NewCache(8)
	c.Close()
	_, err := storage.Do(c, storage.OpPut, []byte("a"), []byte("1"))
	require.ErrorIs(t, err, storage.ErrClosed)
}

// sneakyStore lets another writer insert the key right after a refused Set,
// before the refusal is classified, unless the store is locked.
type sneakyStore struct {
	*lru.SimpleLRU
	locked bool
}

func (s *sneakyStore) Set(key, value []byte) bool {
	ok := s.SimpleLRU.Set(key, value)
	if !ok && !s.locked {
		s.SimpleLRU.Put(key, []byte("x"))
	}
	return ok
}

// lockedStore holds writers off for the duration of Exec.
type lockedStore struct{ *sneakyStore }

func (s lockedStore) Exec(fn func(storage.Storage)) bool {
	s.locked = true
	defer func() { s.locked = false }()
	fn(s.sneakyStore)
	return true
}

func TestDoClassifiesUnderLock(t *testing.T) {
	// Without exclusive access the interleaved insert is misread.
	racy := &sneakyStore{SimpleLRU: lru.NewSimpleLRU(8)}
	_, err := storage.Do(racy, storage.OpSet, []byte("a"), []byte("1"))
	require.ErrorIs(t, err, storage.ErrUnfittable)

	locked := lockedStore{&sneakyStore{SimpleLRU: lru.NewSimpleLRU(8)}}
	_, err = storage.Do(locked, storage.OpSet, []byte("a"), []byte("1"))
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDoConcurrentSet(t *testing.T) {
	c := lru.NewCache(64)
	key := []byte("k")

	var (
		wg   sync.WaitGroup
		stop = make(chan struct{})
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				c.Put(key, []byte("v"))
				c.Delete(key)
			}
		}
	}()
	for i := 0; i < 2000; i++ {
		_, err := storage.Do(c, storage.OpSet, key, []byte("w"))
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			close(stop)
			wg.Wait()
			t.Fatalf("set %d: unexpected error %v", i, err)
		}
	}
	close(stop)
	wg.Wait()
}

func TestParseOp(t *testing.T) {
	for _, op := range []storage.Op{storage.OpGet, storage.OpPut, storage.OpPutIfAbsent, storage.OpSet, storage.OpDelete} {
		got, ok := storage.ParseOp(op.String())
		require.True(t, ok)
		require.Equal(t, op, got)
	}
	_, ok := storage.ParseOp("flush")
	require.False(t, ok)
	require.Equal(t, "op(42)", storage.Op(42).String())
}
