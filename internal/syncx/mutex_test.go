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

package syncx

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClosableMutexExclusive(t *testing.T) {
	var (
		mu      = NewClosableMutex()
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				mu.MustLock()
				counter++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 8000, counter)
}

func TestClosableMutexClose(t *testing.T) {
	mu := NewClosableMutex()
	require.False(t, mu.Closed())
	require.True(t, mu.TryLock())

	closed := make(chan struct{})
	go func() {
		mu.Close()
		close(closed)
	}()
	select {
	case <-closed:
		t.Fatal("Close returned while the lock was held")
	case <-time.After(50 * time.Millisecond):
	}
	mu.Unlock()
	<-closed

	require.True(t, mu.Closed())
	require.False(t, mu.TryLock())
	require.Panics(t, mu.MustLock)
	require.Panics(t, mu.Close)
}

func TestClosableMutexDoubleUnlock(t *testing.T) {
	mu := NewClosableMutex()
	require.Panics(t, mu.Unlock)
}
