// Copyright 2025 The lrukv Authors
// This file is part of lrukv.
//
// lrukv is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// lrukv is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with lrukv. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"os"

	"github.com/lrukv/lrukv/cmd/utils"
	"github.com/lrukv/lrukv/console"
	"github.com/lrukv/lrukv/console/prompt"
	"github.com/urfave/cli/v2"
)

var shellCommand = &cli.Command{
	Action:    shell,
	Name:      "shell",
	Usage:     "Start an interactive shell over a fresh store (default)",
	ArgsUsage: "[script]",
	Description: `
The shell opens an empty store and runs put, putifabsent, set, get and del
commands against it. With a script argument, or when standard input is not a
terminal, commands are read line by line instead of prompted for.`,
}

// shell is the main entry point into the system if no special subcommand is
// run. It creates a store and runs the command shell against it.
func shell(ctx *cli.Context) error {
	if ctx.NArg() > 1 {
		return fmt.Errorf("invalid command: %s", ctx.Args().Get(1))
	}
	cfg, err := loadBaseConfig(ctx)
	if err != nil {
		return err
	}
	store := openStore(&cfg)
	defer store.Close()

	c, err := console.New(console.Config{
		Backend:     store,
		HistoryPath: cfg.Store.History,
	})
	if err != nil {
		utils.Fatalf("Failed to start the shell: %v", err)
	}
	defer c.Stop()

	// If a script file was given, run it and quit.
	if script := ctx.Args().First(); script != "" {
		f, err := os.Open(script)
		if err != nil {
			return err
		}
		defer f.Close()
		return c.Execute(f)
	}
	if !prompt.Supported() {
		return c.Execute(os.Stdin)
	}
	c.Welcome()
	c.Interactive()
	return nil
}
