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

// Package console implements the interactive command shell of the store.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lrukv/lrukv/common"
	"github.com/lrukv/lrukv/common/lru"
	"github.com/lrukv/lrukv/console/prompt"
	"github.com/lrukv/lrukv/internal/debug"
	"github.com/lrukv/lrukv/log"
	"github.com/lrukv/lrukv/storage"
	"github.com/mattn/go-colorable"
	"github.com/olekukonko/tablewriter"
)

// DefaultPrompt is the default prompt line prefix to use for user input querying.
const DefaultPrompt = "> "

// errExit is returned by a command that ends the session.
var errExit = errors.New("exit")

// Backend is the store a console operates on.
type Backend interface {
	storage.Storage
	Keys() [][]byte
	Stats() lru.Stats
	Purge()
}

// Config is the collection of configurations to fine tune the behavior of the
// shell.
type Config struct {
	Backend     Backend             // Store to run the commands against
	Prompt      string              // Input prompt prefix string (defaults to DefaultPrompt)
	Prompter    prompt.UserPrompter // Input prompter to allow interactive user feedback (defaults to prompt.Stdin)
	Printer     io.Writer           // Output writer to serialize any display strings to (defaults to os.Stdout)
	HistoryPath string              // File to load and persist the command history in, empty disables it
}

// Console is an interactive command shell over a key-value store.
type Console struct {
	backend     Backend
	prompt      string
	prompter    prompt.UserPrompter
	printer     io.Writer
	histPath    string
	history     []string
	interactive bool
}

// New initializes a console, loading the command history if configured.
func New(config Config) (*Console, error) {
	if config.Backend == nil {
		return nil, errors.New("console: no backend")
	}
	if config.Prompter == nil {
		config.Prompter = prompt.Stdin
	}
	if config.Prompt == "" {
		config.Prompt = DefaultPrompt
	}
	if config.Printer == nil {
		config.Printer = colorable.NewColorableStdout()
	}
	console := &Console{
		backend:  config.Backend,
		prompt:   config.Prompt,
		prompter: config.Prompter,
		printer:  config.Printer,
		histPath: config.HistoryPath,
	}
	if err := console.init(); err != nil {
		return nil, err
	}
	return console, nil
}

func (c *Console) init() error {
	if c.histPath != "" {
		content, err := os.ReadFile(c.histPath)
		switch {
		case err == nil:
			c.history = strings.Split(string(content), "\n")
			c.prompter.SetHistory(c.history)
		case !errors.Is(err, os.ErrNotExist):
			return fmt.Errorf("failed to load history: %w", err)
		}
	}
	c.prompter.SetWordCompleter(c.AutoCompleteInput)
	return nil
}

// AutoCompleteInput is a pre-assembled word completer to be used by the user
// input prompter to provide hints to the user about the commands and keys.
func (c *Console) AutoCompleteInput(line string, pos int) (string, []string, string) {
	if len(line) == 0 || pos == 0 {
		return "", nil, ""
	}
	head, tail := line[:pos], line[pos:]
	start := strings.LastIndexAny(head, " \t") + 1
	prefix, word := head[:start], head[start:]

	var candidates []string
	switch fields := strings.Fields(prefix); {
	case len(fields) == 0:
		for _, name := range commandNames {
			if strings.HasPrefix(name, word) {
				candidates = append(candidates, name)
			}
		}
	case len(fields) == 1:
		if _, ok := storage.ParseOp(fields[0]); !ok {
			break
		}
		for _, key := range c.backend.Keys() {
			if strings.HasPrefix(string(key), word) {
				candidates = append(candidates, string(key))
			}
		}
	}
	return prefix, candidates, tail
}

// Welcome shows summary of the store behind the console.
func (c *Console) Welcome() {
	stats := c.backend.Stats()

	message := "Welcome to the lrukv shell!\n\n"
	message += fmt.Sprintf("capacity: %v\n", common.StorageSize(stats.Capacity))
	message += fmt.Sprintf(" entries: %d (%v)\n", stats.Items, common.StorageSize(stats.Size))
	message += "\nTo exit, press ctrl-d or type exit. Type help for the command list."
	fmt.Fprintln(c.printer, message)
}

// Evaluate executes a single command line and prints its outcome. It reports
// whether the line asked to end the session.
func (c *Console) Evaluate(line string) bool {
	args, err := splitArgs(line)
	if err != nil {
		fmt.Fprintln(c.printer, "Error:", err)
		return false
	}
	if len(args) == 0 {
		return false
	}
	if err := c.run(args[0], args[1:]); err != nil {
		if errors.Is(err, errExit) {
			return true
		}
		fmt.Fprintln(c.printer, "Error:", err)
	}
	return false
}

// Interactive starts an interactive user session, where input is prompted from
// the configured user prompter.
func (c *Console) Interactive() {
	c.interactive = true
	defer func() { c.interactive = false }()

	for {
		line, err := c.prompter.PromptInput(c.prompt)
		if err != nil {
			switch {
			case errors.Is(err, prompt.ErrAborted):
				fmt.Fprintln(c.printer, "caught interrupt, exiting")
			case !errors.Is(err, io.EOF):
				log.Error("Failed to read input", "err", err)
			}
			return
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		c.history = append(c.history, line)
		c.prompter.AppendHistory(line)
		if c.Evaluate(line) {
			return
		}
	}
}

// Execute runs the commands read line by line from r. Empty lines and lines
// starting with '#' are skipped.
func (c *Console) Execute(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if c.Evaluate(line) {
			return nil
		}
	}
	return scanner.Err()
}

// Stop persists the command history.
func (c *Console) Stop() error {
	if c.histPath == "" {
		return nil
	}
	return os.WriteFile(c.histPath, []byte(strings.Join(c.history, "\n")), 0600)
}

var commandNames = []string{
	"put", "putifabsent", "set", "get", "del",
	"keys", "stats", "memstats", "memprofile", "purge", "verbosity", "vmodule",
	"help", "exit",
}

const helpText = `Commands:
  put <key> <value>          insert or replace a value
  putifabsent <key> <value>  insert only if the key is absent
  set <key> <value>          replace the value of a present key
  get <key>                  read a value (does not refresh recency)
  del <key>                  remove a key
  keys                       list keys, least recently written first
  stats                      show store counters
  memstats                   show Go heap statistics
  memprofile <file>          write a heap profile
  purge                      drop every entry
  verbosity <0-5>            change the log level
  vmodule <pattern>          change per-file log levels
  help                       show this text
  exit                       leave the shell
Arguments containing spaces can be double quoted with Go escapes.`

func (c *Console) run(cmd string, args []string) error {
	if op, ok := storage.ParseOp(cmd); ok {
		return c.runOp(op, args)
	}
	switch cmd {
	case "keys":
		keys := c.backend.Keys()
		for _, key := range keys {
			fmt.Fprintln(c.printer, formatBytes(key))
		}
		fmt.Fprintf(c.printer, "(%d entries)\n", len(keys))
	case "stats":
		WriteStats(c.printer, c.backend.Stats())
	case "memstats":
		WriteMemStats(c.printer, debug.Handler.MemStats())
	case "memprofile":
		if len(args) != 1 {
			return errors.New("usage: memprofile <file>")
		}
		if err := debug.Handler.WriteMemProfile(args[0]); err != nil {
			return err
		}
		fmt.Fprintln(c.printer, "OK")
	case "purge":
		if c.interactive {
			ok, err := c.prompter.PromptConfirm("Drop all entries?")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(c.printer, "Aborted")
				return nil
			}
		}
		c.backend.Purge()
		log.Info("Purged store")
		fmt.Fprintln(c.printer, "OK")
	case "verbosity":
		if len(args) != 1 {
			return errors.New("usage: verbosity <0-5>")
		}
		level, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid verbosity %q", args[0])
		}
		debug.Handler.Verbosity(level)
		fmt.Fprintln(c.printer, "OK")
	case "vmodule":
		if len(args) != 1 {
			return errors.New("usage: vmodule <pattern>")
		}
		if err := debug.Handler.Vmodule(args[0]); err != nil {
			return err
		}
		fmt.Fprintln(c.printer, "OK")
	case "help":
		fmt.Fprintln(c.printer, helpText)
	case "exit", "quit":
		return errExit
	default:
		return fmt.Errorf("unknown command %q, type help for the command list", cmd)
	}
	return nil
}

func (c *Console) runOp(op storage.Op, args []string) error {
	want := 2
	if op == storage.OpGet || op == storage.OpDelete {
		want = 1
	}
	if len(args) != want {
		if want == 1 {
			return fmt.Errorf("usage: %v <key>", op)
		}
		return fmt.Errorf("usage: %v <key> <value>", op)
	}
	key := []byte(args[0])
	var value []byte
	if want == 2 {
		value = []byte(args[1])
	}
	out, err := storage.Do(c.backend, op, key, value)
	if err != nil {
		log.Debug("Command refused", "op", op, "key", key, "err", err)
		return err
	}
	log.Trace("Command executed", "op", op, "key", key)
	if op == storage.OpGet {
		fmt.Fprintln(c.printer, formatBytes(out))
	} else {
		fmt.Fprintln(c.printer, "OK")
	}
	return nil
}

// WriteStats renders store counters as a table.
func WriteStats(w io.Writer, s lru.Stats) {
	var ratio float64
	if lookups := s.Hits + s.Misses; lookups > 0 {
		ratio = float64(s.Hits) / float64(lookups)
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Counter", "Value"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk([][]string{
		{"Items", strconv.Itoa(s.Items)},
		{"Size", common.StorageSize(s.Size).String()},
		{"Capacity", common.StorageSize(s.Capacity).String()},
		{"Hits", strconv.FormatUint(s.Hits, 10)},
		{"Misses", strconv.FormatUint(s.Misses, 10)},
		{"Hit ratio", strconv.FormatFloat(ratio, 'f', 3, 64)},
		{"Inserts", strconv.FormatUint(s.Inserts, 10)},
		{"Updates", strconv.FormatUint(s.Updates, 10)},
		{"Deletes", strconv.FormatUint(s.Deletes, 10)},
		{"Evictions", strconv.FormatUint(s.Evictions, 10)},
		{"Rejected", strconv.FormatUint(s.Rejected, 10)},
		{"Conflicts", strconv.FormatUint(s.Conflicts, 10)},
	})
	table.Render()
}

// WriteMemStats renders the Go runtime heap figures as a table.
func WriteMemStats(w io.Writer, m *runtime.MemStats) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Heap", "Value"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk([][]string{
		{"Allocated", common.StorageSize(m.HeapAlloc).String()},
		{"In use", common.StorageSize(m.HeapInuse).String()},
		{"Idle", common.StorageSize(m.HeapIdle).String()},
		{"Released", common.StorageSize(m.HeapReleased).String()},
		{"Objects", strconv.FormatUint(m.HeapObjects, 10)},
		{"System", common.StorageSize(m.Sys).String()},
		{"GC cycles", strconv.FormatUint(uint64(m.NumGC), 10)},
	})
	table.Render()
}

// formatBytes prints printable text as is and quotes anything else.
func formatBytes(b []byte) string {
	if utf8.Valid(b) && strings.IndexFunc(string(b), func(r rune) bool { return !unicode.IsPrint(r) }) < 0 {
		return string(b)
	}
	return strconv.Quote(string(b))
}

// splitArgs splits a command line on whitespace. Arguments starting with a
// double quote are read up to the closing quote and unquoted.
func splitArgs(line string) ([]string, error) {
	var args []string
	for {
		line = strings.TrimLeft(line, " \t")
		if line == "" {
			return args, nil
		}
		if line[0] != '"' {
			end := strings.IndexAny(line, " \t")
			if end < 0 {
				end = len(line)
			}
			args = append(args, line[:end])
			line = line[end:]
			continue
		}
		quoted, err := strconv.QuotedPrefix(line)
		if err != nil {
			return nil, errors.New("unterminated quoted argument")
		}
		arg, err := strconv.Unquote(quoted)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		line = line[len(quoted):]
	}
}
