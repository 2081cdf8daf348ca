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

package exp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lrukv/lrukv/common/lru"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpHandler(t *testing.T) {
	store := lru.NewSimpleLRU(64)
	store.Put([]byte("a"), []byte("1"))
	store.Put([]byte("b"), []byte("22"))
	store.Get([]byte("a"))
	store.Get([]byte("missing"))

	r := NewRegistry()
	r.Register("exptest/store", store)

	rec := httptest.NewRecorder()
	ExpHandler(r).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var vars map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vars))
	assert.EqualValues(t, 2, vars["exptest/store.items"])
	assert.EqualValues(t, 5, vars["exptest/store.size"])
	assert.EqualValues(t, 64, vars["exptest/store.capacity"])
	assert.EqualValues(t, 1, vars["exptest/store.hits"])
	assert.EqualValues(t, 1, vars["exptest/store.misses"])
	assert.EqualValues(t, 0.5, vars["exptest/store.hit-ratio"])

	// Values are refreshed on every request.
	store.Delete([]byte("a"))
	rec = httptest.NewRecorder()
	ExpHandler(r).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/metrics", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vars))
	assert.EqualValues(t, 1, vars["exptest/store.items"])
	assert.EqualValues(t, 1, vars["exptest/store.deletes"])
}

func TestRegistryEach(t *testing.T) {
	r := NewRegistry()
	r.Register("b", lru.NewSimpleLRU(1))
	r.Register("a", lru.NewSimpleLRU(2))
	r.Register("c", lru.NewSimpleLRU(3))
	r.Unregister("c")

	var names []string
	r.Each(func(name string, s Source) {
		names = append(names, name)
	})
	assert.Equal(t, []string{"a", "b"}, names)
}
