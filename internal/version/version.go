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

// Package version implements reading of build version information.
package version

import (
	"fmt"
	"runtime"

	"github.com/lrukv/lrukv/version"
)

const ourPath = "github.com/lrukv/lrukv" // Path to our module

// Family holds the textual version string for major.minor
var Family = fmt.Sprintf("%d.%d", version.Major, version.Minor)

// Semantic holds the textual version string for major.minor.patch.
var Semantic = fmt.Sprintf("%d.%d.%d", version.Major, version.Minor, version.Patch)

// WithMeta holds the textual version string including the metadata.
var WithMeta = func() string {
	v := Semantic
	if version.Meta != "" {
		v += "-" + version.Meta
	}
	return v
}()

// WithCommit appends a short commit hash and date to the version string.
func WithCommit(gitCommit, gitDate string) string {
	vsn := WithMeta
	if len(gitCommit) >= 8 {
		vsn += "-" + gitCommit[:8]
	}
	if (version.Meta != "stable") && (gitDate != "") {
		vsn += "-" + gitDate
	}
	return vsn
}

// Info returns the multi-line text printed by the version command.
func Info(name string) string {
	s := fmt.Sprintf("%s\nVersion: %s\n", name, WithMeta)
	if vcs, ok := VCS(); ok {
		s += fmt.Sprintf("Git Commit: %s\n", vcs.Commit)
		s += fmt.Sprintf("Git Commit Date: %s\n", vcs.Date)
		if vcs.Dirty {
			s += "Git Tree: dirty\n"
		}
	}
	s += fmt.Sprintf("Architecture: %s\n", runtime.GOARCH)
	s += fmt.Sprintf("Go Version: %s\n", runtime.Version())
	s += fmt.Sprintf("Operating System: %s\n", runtime.GOOS)
	return s
}
