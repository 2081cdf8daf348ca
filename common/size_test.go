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

package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageSizeString(t *testing.T) {
	tests := []struct {
		size StorageSize
		str  string
	}{
		{2839828, "2.71 MiB"},
		{2458, "2.40 KiB"},
		{2380, "2.32 KiB"},
		{12, "12.00 B"},
		{5 << 30, "5.00 GiB"},
	}
	for _, test := range tests {
		assert.Equal(t, test.str, test.size.String())
	}
}

func TestStorageSizeTerminalString(t *testing.T) {
	assert.Equal(t, "2.71MiB", StorageSize(2839828).TerminalString())
	assert.Equal(t, "12.00B", StorageSize(12).TerminalString())
}

func TestParseStorageSize(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
	}{
		{"0", 0},
		{"4096", 4096},
		{"10B", 10},
		{"64KiB", 64 << 10},
		{"64 MiB", 64 << 20},
		{"2GiB", 2 << 30},
		{"1KB", 1000},
		{"3MB", 3_000_000},
	}
	for _, test := range tests {
		got, err := ParseStorageSize(test.in)
		require.NoError(t, err, test.in)
		assert.Equal(t, test.want, got, test.in)
	}
	for _, bad := range []string{"", "KiB", "-1", "1.5MiB", "12XB", "20000000TiB"} {
		_, err := ParseStorageSize(bad)
		assert.Error(t, err, bad)
	}
}
