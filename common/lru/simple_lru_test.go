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
	"bytes"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustGet(t *testing.T, c *SimpleLRU, key, want string) {
	t.Helper()
	v, ok := c.Get([]byte(key))
	require.True(t, ok, "key %q missing", key)
	require.Equal(t, want, string(v), "key %q", key)
}

func mustMiss(t *testing.T, c *SimpleLRU, key string) {
	t.Helper()
	_, ok := c.Get([]byte(key))
	require.False(t, ok, "key %q present", key)
}

func keyStrings(keys [][]byte) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}

func TestSimpleLRUPutGet(t *testing.T) {
	c := NewSimpleLRU(100)
	require.True(t, c.Put([]byte("a"), []byte("1")))
	require.True(t, c.Put([]byte("b"), []byte("22")))
	mustGet(t, c, "a", "1")
	mustGet(t, c, "b", "22")
	mustMiss(t, c, "c")
	require.Equal(t, uint64(5), c.Size())
	require.Equal(t, 2, c.Len())

	// Replacing keeps a single entry and refreshes the size.
	require.True(t, c.Put([]byte("a"), []byte("333")))
	mustGet(t, c, "a", "333")
	require.Equal(t, uint64(7), c.Size())
	require.Equal(t, []string{"b", "a"}, keyStrings(c.Keys()))
	require.NoError(t, c.verify())
}

func TestSimpleLRUEvictionOrder(t *testing.T) {
	c := NewSimpleLRU(10)
	require.True(t, c.Put([]byte("ab"), []byte("12")))
	require.True(t, c.Put([]byte("cd"), []byte("3456")))
	require.Equal(t, uint64(10), c.Size())

	require.True(t, c.Put([]byte("e"), []byte("f")))
	mustMiss(t, c, "ab")
	mustGet(t, c, "cd", "3456")
	mustGet(t, c, "e", "f")
	require.Equal(t, uint64(8), c.Size())
	require.Equal(t, uint64(1), c.Stats().Evictions)
	require.NoError(t, c.verify())
}

func TestSimpleLRUUnfittable(t *testing.T) {
	c := NewSimpleLRU(5)
	require.False(t, c.Put([]byte("toolong"), []byte("value")))
	mustMiss(t, c, "toolong")
	require.Zero(t, c.Len())
	require.Zero(t, c.Size())
	require.Equal(t, uint64(1), c.Stats().Rejected)

	// Refusals must not evict anything either.
	require.True(t, c.Put([]byte("k"), []byte("v")))
	require.False(t, c.Put([]byte("toolong"), []byte("value")))
	require.False(t, c.PutIfAbsent([]byte("toolong"), []byte("value")))
	require.False(t, c.Set([]byte("k"), []byte("value")))
	mustGet(t, c, "k", "v")
	require.Equal(t, uint64(4), c.Stats().Rejected)
	require.Zero(t, c.Stats().Evictions)
	require.NoError(t, c.verify())
}

func TestSimpleLRURecencyUpdate(t *testing.T) {
	c := NewSimpleLRU(10)
	require.True(t, c.Put([]byte("a"), []byte("1")))
	require.True(t, c.Put([]byte("b"), []byte("2")))
	require.True(t, c.Set([]byte("a"), []byte("333")))
	require.Equal(t, []string{"b", "a"}, keyStrings(c.Keys()))

	// 6 more bytes need exactly one eviction, which must hit b.
	require.True(t, c.Put([]byte("c"), []byte("12345")))
	mustMiss(t, c, "b")
	mustGet(t, c, "a", "333")
	mustGet(t, c, "c", "12345")
	require.Equal(t, uint64(10), c.Size())
	require.NoError(t, c.verify())
}

func TestSimpleLRUGetDoesNotPromote(t *testing.T) {
	c := NewSimpleLRU(4)
	require.True(t, c.Put([]byte("a"), []byte("1")))
	require.True(t, c.Put([]byte("b"), []byte("2")))
	mustGet(t, c, "a", "1")

	require.True(t, c.Put([]byte("c"), []byte("3")))
	mustMiss(t, c, "a")
	mustGet(t, c, "b", "2")
	require.Equal(t, []string{"b", "c"}, keyStrings(c.Keys()))
}

func TestSimpleLRUPutIfAbsent(t *testing.T) {
	c := NewSimpleLRU(6)
	require.True(t, c.PutIfAbsent([]byte("a"), []byte("1")))
	require.True(t, c.PutIfAbsent([]byte("b"), []byte("2")))
	require.False(t, c.PutIfAbsent([]byte("a"), []byte("9")))
	mustGet(t, c, "a", "1")

	// The refused call must not have refreshed a.
	require.Equal(t, []string{"a", "b"}, keyStrings(c.Keys()))
	require.True(t, c.PutIfAbsent([]byte("cc"), []byte("3")))
	mustMiss(t, c, "a")
	require.Equal(t, uint64(1), c.Stats().Conflicts)
	require.NoError(t, c.verify())
}

func TestSimpleLRUSetAbsent(t *testing.T) {
	c := NewSimpleLRU(10)
	require.False(t, c.Set([]byte("a"), []byte("1")))
	mustMiss(t, c, "a")
	require.Zero(t, c.Len())
}

func TestSimpleLRUDelete(t *testing.T) {
	c := NewSimpleLRU(100)
	for _, k := range []string{"a", "b", "c", "d"} {
		require.True(t, c.Put([]byte(k), []byte(k+k)))
	}
	require.False(t, c.Delete([]byte("x")))

	// Middle, head, tail, last.
	for _, tt := range []struct {
		key  string
		left []string
	}{
		{"b", []string{"a", "c", "d"}},
		{"a", []string{"c", "d"}},
		{"d", []string{"c"}},
		{"c", []string{}},
	} {
		require.True(t, c.Delete([]byte(tt.key)), tt.key)
		mustMiss(t, c, tt.key)
		require.Equal(t, tt.left, keyStrings(c.Keys()))
		require.NoError(t, c.verify())
	}
	require.Zero(t, c.Size())
	require.Equal(t, uint64(4), c.Stats().Deletes)

	// The list must be usable after going empty.
	require.True(t, c.Put([]byte("e"), []byte("5")))
	require.Equal(t, []string{"e"}, keyStrings(c.Keys()))
	require.NoError(t, c.verify())
}

func TestSimpleLRUGrowEvictsOthersOnly(t *testing.T) {
	c := NewSimpleLRU(6)
	require.True(t, c.Put([]byte("a"), []byte("1")))
	require.True(t, c.Put([]byte("b"), []byte("2")))
	require.True(t, c.Put([]byte("c"), []byte("3")))

	// a is the head, growing it must evict b and c rather than a itself.
	require.True(t, c.Put([]byte("a"), []byte("12345")))
	mustGet(t, c, "a", "12345")
	mustMiss(t, c, "b")
	mustMiss(t, c, "c")
	require.Equal(t, uint64(6), c.Size())
	require.NoError(t, c.verify())
}

func TestSimpleLRUShrinkDoesNotEvict(t *testing.T) {
	c := NewSimpleLRU(8)
	require.True(t, c.Put([]byte("a"), []byte("123")))
	require.True(t, c.Put([]byte("b"), []byte("456")))
	require.True(t, c.Set([]byte("a"), []byte("")))
	mustGet(t, c, "a", "")
	mustGet(t, c, "b", "456")
	require.Equal(t, uint64(5), c.Size())
	require.Equal(t, []string{"b", "a"}, keyStrings(c.Keys()))
	require.Zero(t, c.Stats().Evictions)
}

func TestSimpleLRUFailedUpdateUnchanged(t *testing.T) {
	c := NewSimpleLRU(6)
	require.True(t, c.Put([]byte("a"), []byte("1")))
	require.True(t, c.Put([]byte("b"), []byte("2")))
	before := c.Keys()

	require.False(t, c.Put([]byte("a"), []byte("123456")))
	require.Equal(t, before, c.Keys())
	mustGet(t, c, "a", "1")
	mustGet(t, c, "b", "2")
	require.Equal(t, uint64(4), c.Size())
}

func TestSimpleLRUExactFit(t *testing.T) {
	c := NewSimpleLRU(5)
	require.True(t, c.Put([]byte("ab"), []byte("cde")))
	require.Equal(t, uint64(5), c.Size())
	require.True(t, c.Put([]byte("x"), []byte("1234")))
	mustMiss(t, c, "ab")
	require.NoError(t, c.verify())
}

func TestSimpleLRUZeroCapacity(t *testing.T) {
	c := NewSimpleLRU(0)
	require.False(t, c.Put([]byte("a"), nil))
	require.True(t, c.Put(nil, nil))
	require.Equal(t, 1, c.Len())
	require.Zero(t, c.Size())
	require.NoError(t, c.verify())
}

func TestSimpleLRUOwnership(t *testing.T) {
	c := NewSimpleLRU(100)
	key, value := []byte("key"), []byte("value")
	require.True(t, c.Put(key, value))

	key[0], value[0] = 'X', 'X'
	mustGet(t, c, "key", "value")

	v, _ := c.Get([]byte("key"))
	v[0] = 'Y'
	mustGet(t, c, "key", "value")
}

func TestSimpleLRUSlotReuse(t *testing.T) {
	c := NewSimpleLRU(4)
	for i := 0; i < 100; i++ {
		k := []byte(fmt.Sprintf("%02d", i))
		require.True(t, c.Put(k, nil))
	}
	// Two live two-byte entries at any time, so the arena never needs more
	// than three slots.
	require.Equal(t, 2, c.Len())
	require.LessOrEqual(t, len(c.list.items), 3)
	require.NoError(t, c.verify())
}

func TestSimpleLRUPurge(t *testing.T) {
	c := NewSimpleLRU(100)
	require.True(t, c.Put([]byte("a"), []byte("1")))
	mustGet(t, c, "a", "1")
	c.Purge()
	mustMiss(t, c, "a")
	require.Zero(t, c.Len())
	require.Zero(t, c.Size())
	require.Equal(t, uint64(1), c.Stats().Hits)
	require.NoError(t, c.verify())

	require.True(t, c.Put([]byte("b"), []byte("2")))
	require.NoError(t, c.verify())
}

func TestSimpleLRUStats(t *testing.T) {
	c := NewSimpleLRU(4)
	c.Put([]byte("a"), []byte("1"))
	c.Put([]byte("b"), []byte("2"))
	c.Put([]byte("a"), []byte("3"))
	c.Get([]byte("a"))
	c.Get([]byte("zz"))
	c.Put([]byte("c"), []byte("4"))
	c.Delete([]byte("a"))

	assert.Equal(t, Stats{
		Items:     1,
		Size:      2,
		Capacity:  4,
		Hits:      1,
		Misses:    1,
		Inserts:   3,
		Updates:   1,
		Deletes:   1,
		Evictions: 1,
	}, c.Stats())
}

// model is a naive reference implementation: a slice ordered oldest first.
type model struct {
	capacity uint64
	keys     []string
	values   map[string][]byte
}

func (m *model) size() (n uint64) {
	for _, k := range m.keys {
		n += uint64(len(k) + len(m.values[k]))
	}
	return n
}

func (m *model) drop(key string) {
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			delete(m.values, key)
			return
		}
	}
}

func (m *model) write(key string, value []byte) bool {
	if uint64(len(key)+len(value)) > m.capacity {
		return false
	}
	if _, ok := m.values[key]; ok {
		m.drop(key)
	}
	for m.size()+uint64(len(key)+len(value)) > m.capacity {
		m.drop(m.keys[0])
	}
	m.keys = append(m.keys, key)
	m.values[key] = value
	return true
}

func TestSimpleLRURandomAgainstModel(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, capacity := range []uint64{0, 1, 7, 32, 256} {
		var (
			c = NewSimpleLRU(capacity)
			m = &model{capacity: capacity, values: make(map[string][]byte)}
		)
		for i := 0; i < 5000; i++ {
			key := fmt.Sprintf("k%d", rng.Intn(24))
			value := bytes.Repeat([]byte{byte('a' + rng.Intn(26))}, rng.Intn(12))
			_, present := m.values[key]

			switch op := rng.Intn(5); op {
			case 0:
				require.Equal(t, m.write(key, value), c.Put([]byte(key), value))
			case 1:
				want := !present && m.write(key, value)
				require.Equal(t, want, c.PutIfAbsent([]byte(key), value))
			case 2:
				want := present && m.write(key, value)
				require.Equal(t, want, c.Set([]byte(key), value))
			case 3:
				m.drop(key)
				require.Equal(t, present, c.Delete([]byte(key)))
			case 4:
				v, ok := c.Get([]byte(key))
				require.Equal(t, present, ok)
				require.Equal(t, string(m.values[key]), string(v))
			}
			require.NoError(t, c.verify(), "capacity %d step %d", capacity, i)
			require.Equal(t, strings.Join(m.keys, ","), strings.Join(keyStrings(c.Keys()), ","), "capacity %d step %d", capacity, i)
			require.Equal(t, m.size(), c.Size())
		}
	}
}

func BenchmarkSimpleLRUPut(b *testing.B) {
	var (
		c     = NewSimpleLRU(1 << 20)
		keys  = make([][]byte, 1<<16)
		value = make([]byte, 64)
	)
	for i := range keys {
		keys[i] = []byte(fmt.Sprintf("key-%d", i))
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Put(keys[i&(len(keys)-1)], value)
	}
}

func BenchmarkSimpleLRUGet(b *testing.B) {
	var (
		c     = NewSimpleLRU(1 << 20)
		keys  = make([][]byte, 1<<12)
		value = make([]byte, 64)
	)
	for i := range keys {
		keys[i] = []byte(fmt.Sprintf("key-%d", i))
		c.Put(keys[i], value)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(keys[i&(len(keys)-1)])
	}
}
