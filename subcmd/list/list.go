// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package list is list subcommand to list headers used by a compile database.
package list

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/system/signals"

	"go.chromium.org/infra/build/incdeps/compiledb"
	"go.chromium.org/infra/build/incdeps/incdeps"
	"go.chromium.org/infra/build/incdeps/ui"
)

const usage = `list headers used by translation units in compile database

 $ incdeps list [flags] [<compile_commands.json>]

runs the compiler of each compile command in dependency listing mode
(-M for gcc/clang, /showIncludes for cl) and prints the union of
headers, one path per line, in lexicographic order.

<compile_commands.json> defaults to ./compile_commands.json.
.zst or .gz compressed file can be used.

Compile commands that fail are skipped and reported to stderr.
`

// Cmd returns the Command for the `list` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "list [flags] [<compile_commands.json>]",
		ShortDesc: "list headers used by compile database",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	cfg        incdeps.Config
	configFile string
	rel        string
	sources    bool
	format     string
	verbose    bool
}

func (c *run) init() {
	c.cfg = incdeps.DefaultConfig()
	c.cfg.RegisterFlags(&c.Flags)
	c.Flags.StringVar(&c.configFile, "config", "", "yaml config file. flags take precedence over the file")
	c.Flags.StringVar(&c.rel, "rel", "", "print paths relative to the dir if under the dir")
	c.Flags.BoolVar(&c.sources, "sources", false, "print translation units that include the header, indented under each header")
	c.Flags.StringVar(&c.format, "format", "text", `output format. "text" or "json"`)
	c.Flags.BoolVar(&c.verbose, "v", false, "verbose logging and details of failures")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx, args)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
		case errors.Is(err, context.Canceled):
			fmt.Fprintln(os.Stderr, "interrupted")
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer signals.HandleInterrupt(cancel)()

	if c.verbose {
		log.SetLevel(log.DebugLevel)
	}
	fname := "compile_commands.json"
	switch len(args) {
	case 0:
	case 1:
		fname = args[0]
	default:
		return fmt.Errorf("too many arguments %q: %w", args, flag.ErrHelp)
	}
	switch c.format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown format %q: %w", c.format, flag.ErrHelp)
	}
	if c.configFile != "" {
		err := c.cfg.LoadFile(c.configFile, &c.Flags)
		if err != nil {
			return fmt.Errorf("failed to load config %s: %w", c.configFile, err)
		}
	}
	started := time.Now()
	spin := ui.Default.NewSpinner()
	spin.Start("loading %s", fname)
	records, err := compiledb.Load(ctx, fname)
	if err != nil {
		spin.Stop(err)
		return err
	}
	records = compiledb.Unique(records)
	spin.Done("%d compile commands", len(records))

	result, err := incdeps.New(c.cfg, nil).Scan(ctx, records)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(os.Stdout)
	switch c.format {
	case "json":
		err = writeJSON(w, result, c.rel)
	default:
		err = writeText(w, result, c.rel, c.sources)
	}
	if err != nil {
		return err
	}
	err = w.Flush()
	if err != nil {
		return err
	}
	printSummary(result, time.Since(started), c.verbose)
	return nil
}

func writeText(w io.Writer, r *incdeps.Result, base string, sources bool) error {
	r = r.Rel(absDir(base))
	for _, h := range r.Headers {
		_, err := fmt.Fprintln(w, h.Path)
		if err != nil {
			return err
		}
		if !sources {
			continue
		}
		for _, src := range h.Sources {
			_, err := fmt.Fprintf(w, "  %s\n", src)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

type jsonFailure struct {
	File       string `json:"file"`
	Directory  string `json:"directory"`
	Kind       string `json:"kind"`
	Error      string `json:"error"`
	Diagnostic string `json:"diagnostic,omitempty"`
}

type jsonOutput struct {
	Headers  []incdeps.Header `json:"headers"`
	Total    int              `json:"total"`
	Records  int              `json:"records"`
	Failures []jsonFailure    `json:"failures"`
}

func writeJSON(w io.Writer, r *incdeps.Result, base string) error {
	r = r.Rel(absDir(base))
	out := jsonOutput{
		Headers:  append(make([]incdeps.Header, 0, len(r.Headers)), r.Headers...),
		Total:    r.Total,
		Records:  r.Records,
		Failures: make([]jsonFailure, 0, len(r.Failures)),
	}
	for _, f := range r.Failures {
		out.Failures = append(out.Failures, jsonFailure{
			File:       f.File,
			Directory:  f.Directory,
			Kind:       incdeps.Kind(f),
			Error:      f.Err.Error(),
			Diagnostic: f.Diagnostic,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	return enc.Encode(out)
}

func absDir(dir string) string {
	if dir == "" {
		return ""
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		log.Warnf("failed to get abs path of %s: %v", dir, err)
		return dir
	}
	return abs
}

func printSummary(r *incdeps.Result, d time.Duration, verbose bool) {
	ui.Default.Infof("%d headers (%d before filter) from %d compile commands in %s", len(r.Headers), r.Total, r.Records, ui.FormatDuration(d))
	if len(r.Failures) == 0 {
		return
	}
	kinds := make(map[string]int)
	var order []string
	for _, f := range r.Failures {
		k := incdeps.Kind(f)
		if kinds[k] == 0 {
			order = append(order, k)
		}
		kinds[k]++
	}
	ui.Default.Warningf("%d compile commands skipped", len(r.Failures))
	for _, k := range order {
		ui.Default.Warningf(" %s: %d", k, kinds[k])
	}
	if !verbose {
		ui.Default.Infof("use -v to see details of skipped compile commands")
		return
	}
	for _, f := range r.Failures {
		ui.Default.Errorf("%v", f)
		if f.Diagnostic != "" {
			ui.Default.Infof("%s", f.Diagnostic)
		}
	}
}
