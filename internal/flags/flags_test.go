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

package flags

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestPathExpansion(t *testing.T) {
	home := HomeDir()
	tests := map[string]string{
		"/home/someuser/tmp": "/home/someuser/tmp",
		"~/tmp":              filepath.Join(home, "tmp"),
		"~thisOtherUser/b/":  "~thisOtherUser/b",
		"$DDDXXX/a/b":        "/tmp/a/b",
		"/a/b/":              "/a/b",
	}
	os.Setenv("DDDXXX", "/tmp")
	defer os.Unsetenv("DDDXXX")

	for test, expected := range tests {
		assert.Equal(t, expected, expandPath(test), "input %q", test)
	}
}

func TestSizeFlag(t *testing.T) {
	f := &SizeFlag{Name: "capacity", Value: 2048}
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	require.NoError(t, f.Apply(set))

	assert.Equal(t, "2.00 KiB", f.GetDefaultText())
	require.NoError(t, set.Parse([]string{"--capacity", "64MiB"}))
	assert.Equal(t, "64.00 MiB", set.Lookup("capacity").Value.String())
	assert.Equal(t, uint64(2048), f.Value)
	assert.Equal(t, "2.00 KiB", f.GetDefaultText())

	assert.Error(t, set.Parse([]string{"--capacity", "lots"}))
}

func TestSizeFlagEnv(t *testing.T) {
	t.Setenv("LRUKV_CAPACITY", "2KiB")
	f := &SizeFlag{Name: "capacity", EnvVars: []string{"LRUKV_CAPACITY"}}
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	require.NoError(t, f.Apply(set))
	assert.True(t, f.IsSet())
	assert.Equal(t, "2.00 KiB", set.Lookup("capacity").Value.String())

	t.Setenv("LRUKV_CAPACITY", "-1")
	bad := &SizeFlag{Name: "capacity", EnvVars: []string{"LRUKV_CAPACITY"}}
	assert.Error(t, bad.Apply(flag.NewFlagSet("test", flag.ContinueOnError)))
}

func TestGlobalSize(t *testing.T) {
	app := cli.NewApp()
	var got uint64
	app.Flags = []cli.Flag{&SizeFlag{Name: "capacity", Value: 10}}
	app.Action = func(ctx *cli.Context) error {
		got = GlobalSize(ctx, "capacity")
		return nil
	}
	require.NoError(t, app.Run([]string{"lrukv", "--capacity", "3KB"}))
	assert.Equal(t, uint64(3000), got)
}

func TestFlagsReapplied(t *testing.T) {
	var (
		size = &SizeFlag{Name: "capacity", Value: 10}
		path = &PathFlag{Name: "config"}

		gotSize uint64
		gotPath string
	)
	app := cli.NewApp()
	app.Flags = []cli.Flag{size, path}
	app.Action = func(ctx *cli.Context) error {
		gotSize = GlobalSize(ctx, "capacity")
		gotPath = ctx.String("config")
		return nil
	}
	require.NoError(t, app.Run([]string{"lrukv", "--capacity", "3KB", "--config", "/tmp/a.toml"}))
	assert.Equal(t, uint64(3000), gotSize)
	assert.Equal(t, "/tmp/a.toml", gotPath)

	// Values given to one run must not become the defaults of the next.
	require.NoError(t, app.Run([]string{"lrukv"}))
	assert.Equal(t, uint64(10), gotSize)
	assert.Equal(t, "", gotPath)
	assert.Equal(t, uint64(10), size.Value)
	assert.Equal(t, PathString(""), path.Value)
}

func TestAutoEnvVars(t *testing.T) {
	fs := []cli.Flag{
		&cli.StringFlag{Name: "log.format"},
		&cli.IntFlag{Name: "verbosity"},
		&SizeFlag{Name: "capacity"},
		&PathFlag{Name: "config"},
	}
	AutoEnvVars(fs, "LRUKV")

	assert.Equal(t, []string{"LRUKV_LOG_FORMAT"}, fs[0].(*cli.StringFlag).EnvVars)
	assert.Equal(t, []string{"LRUKV_VERBOSITY"}, fs[1].(*cli.IntFlag).EnvVars)
	assert.Equal(t, []string{"LRUKV_CAPACITY"}, fs[2].(*SizeFlag).EnvVars)
	assert.Equal(t, []string{"LRUKV_CONFIG"}, fs[3].(*PathFlag).EnvVars)
}

func TestMerge(t *testing.T) {
	a := []cli.Flag{&cli.BoolFlag{Name: "a"}}
	b := []cli.Flag{&cli.BoolFlag{Name: "b"}, &cli.BoolFlag{Name: "c"}}
	assert.Len(t, Merge(a, b, nil), 3)
}
