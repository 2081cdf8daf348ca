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
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/lrukv/lrukv/common"
	"github.com/urfave/cli/v2"
)

// PathString is custom type which is registered in the flags library which cli uses for
// argument parsing. This allows us to expand Value to an absolute path when
// the argument is parsed.
type PathString string

func (s *PathString) String() string {
	return string(*s)
}

func (s *PathString) Set(value string) error {
	*s = PathString(expandPath(value))
	return nil
}

var (
	_ cli.Flag              = (*PathFlag)(nil)
	_ cli.RequiredFlag      = (*PathFlag)(nil)
	_ cli.VisibleFlag       = (*PathFlag)(nil)
	_ cli.DocGenerationFlag = (*PathFlag)(nil)
	_ cli.CategorizableFlag = (*PathFlag)(nil)
)

// PathFlag is custom cli.Flag type which expand the received string to an absolute path.
// e.g. ~/lrukv.toml -> /home/username/lrukv.toml
type PathFlag struct {
	Name string

	Category    string
	DefaultText string
	Usage       string

	Required   bool
	Hidden     bool
	HasBeenSet bool

	Value PathString

	Aliases []string
	EnvVars []string
}

// For cli.Flag:

func (f *PathFlag) Names() []string { return append([]string{f.Name}, f.Aliases...) }
func (f *PathFlag) IsSet() bool     { return f.HasBeenSet }
func (f *PathFlag) String() string  { return cli.FlagStringer(f) }

// Apply called by cli library, grabs variable from environment (if in env)
// and adds variable to flag set for parsing.
// Apply registers a fresh copy of the default value with the flag set, so the
// flag definition can be applied again by a later run.
func (f *PathFlag) Apply(set *flag.FlagSet) error {
	value := f.Value
	for _, envVar := range f.EnvVars {
		envVar = strings.TrimSpace(envVar)
		if v, found := syscall.Getenv(envVar); found {
			value.Set(v)
			f.HasBeenSet = true
			break
		}
	}
	eachName(f, func(name string) {
		set.Var(&value, name, f.Usage)
	})
	return nil
}

// For cli.RequiredFlag:

func (f *PathFlag) IsRequired() bool { return f.Required }

// For cli.VisibleFlag:

func (f *PathFlag) IsVisible() bool { return !f.Hidden }

// For cli.CategorizableFlag:

func (f *PathFlag) GetCategory() string { return f.Category }

// For cli.DocGenerationFlag:

func (f *PathFlag) TakesValue() bool     { return true }
func (f *PathFlag) GetUsage() string     { return f.Usage }
func (f *PathFlag) GetValue() string     { return f.Value.String() }
func (f *PathFlag) GetEnvVars() []string { return f.EnvVars }

func (f *PathFlag) GetDefaultText() string {
	if f.DefaultText != "" {
		return f.DefaultText
	}
	return f.GetValue()
}

var (
	_ cli.Flag              = (*SizeFlag)(nil)
	_ cli.RequiredFlag      = (*SizeFlag)(nil)
	_ cli.VisibleFlag       = (*SizeFlag)(nil)
	_ cli.DocGenerationFlag = (*SizeFlag)(nil)
	_ cli.CategorizableFlag = (*SizeFlag)(nil)
)

// SizeFlag is a command line flag that accepts a byte count, either as a plain
// number or with a unit suffix such as "64MiB" or "1GB".
type SizeFlag struct {
	Name string

	Category    string
	DefaultText string
	Usage       string

	Required   bool
	Hidden     bool
	HasBeenSet bool

	Value uint64

	Aliases []string
	EnvVars []string
}

// For cli.Flag:

func (f *SizeFlag) Names() []string { return append([]string{f.Name}, f.Aliases...) }
func (f *SizeFlag) IsSet() bool     { return f.HasBeenSet }
func (f *SizeFlag) String() string  { return cli.FlagStringer(f) }

func (f *SizeFlag) Apply(set *flag.FlagSet) error {
	value := sizeValue(f.Value)
	for _, envVar := range f.EnvVars {
		envVar = strings.TrimSpace(envVar)
		if v, found := syscall.Getenv(envVar); found {
			if err := value.Set(v); err != nil {
				return fmt.Errorf("could not parse %q from environment variable %q for flag %s: %v", v, envVar, f.Name, err)
			}
			f.HasBeenSet = true
			break
		}
	}
	eachName(f, func(name string) {
		set.Var(&value, name, f.Usage)
	})
	return nil
}

// For cli.RequiredFlag:

func (f *SizeFlag) IsRequired() bool { return f.Required }

// For cli.VisibleFlag:

func (f *SizeFlag) IsVisible() bool { return !f.Hidden }

// For cli.CategorizableFlag:

func (f *SizeFlag) GetCategory() string { return f.Category }

// For cli.DocGenerationFlag:

func (f *SizeFlag) TakesValue() bool     { return true }
func (f *SizeFlag) GetUsage() string     { return f.Usage }
func (f *SizeFlag) GetValue() string     { return (*sizeValue)(&f.Value).String() }
func (f *SizeFlag) GetEnvVars() []string { return f.EnvVars }

func (f *SizeFlag) GetDefaultText() string {
	if f.DefaultText != "" {
		return f.DefaultText
	}
	return f.GetValue()
}

// sizeValue turns uint64 into a flag.Value
type sizeValue uint64

func (s *sizeValue) String() string {
	if s == nil {
		return ""
	}
	return common.StorageSize(*s).String()
}

func (s *sizeValue) Set(v string) error {
	n, err := common.ParseStorageSize(v)
	if err != nil {
		return err
	}
	*s = sizeValue(n)
	return nil
}

// GlobalSize returns the value of a SizeFlag from the global flag set.
func GlobalSize(ctx *cli.Context, name string) uint64 {
	val := ctx.Generic(name)
	if val == nil {
		return 0
	}
	return uint64(*val.(*sizeValue))
}

// expandPath expands a file path
// 1. replace tilde with users home dir
// 2. expands embedded environment variables
// 3. cleans the path, e.g. /a/b/../c -> /a/c
// Note, it has limitations, e.g. ~someuser/tmp will not be expanded
func expandPath(p string) string {
	if strings.HasPrefix(p, "~/") || strings.HasPrefix(p, "~\\") {
		if home := HomeDir(); home != "" {
			p = home + p[1:]
		}
	}
	return filepath.Clean(os.ExpandEnv(p))
}

func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func eachName(f cli.Flag, fn func(string)) {
	for _, name := range f.Names() {
		name = strings.Trim(name, " ")
		fn(name)
	}
}
