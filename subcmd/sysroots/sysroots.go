// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package sysroots is sysroots subcommand to print system roots used to
// classify headers.
package sysroots

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/system/signals"

	"go.chromium.org/infra/build/incdeps/compiledb"
	"go.chromium.org/infra/build/incdeps/incdeps"
)

const usage = `print system roots

 $ incdeps sysroots [flags] [<compile_commands.json>]

prints system header roots, one per line, that "incdeps list" uses to
classify headers as system headers for the compile database.
`

// Cmd returns the Command for the `sysroots` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "sysroots [flags] [<compile_commands.json>]",
		ShortDesc: "print system header roots",
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
}

func (c *run) init() {
	c.cfg = incdeps.DefaultConfig()
	c.cfg.RegisterFlags(&c.Flags)
	c.Flags.StringVar(&c.configFile, "config", "", "yaml config file. flags take precedence over the file")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx, args)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
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

	fname := "compile_commands.json"
	switch len(args) {
	case 0:
	case 1:
		fname = args[0]
	default:
		return fmt.Errorf("too many arguments %q: %w", args, flag.ErrHelp)
	}
	if c.configFile != "" {
		err := c.cfg.LoadFile(c.configFile, &c.Flags)
		if err != nil {
			return fmt.Errorf("failed to load config %s: %w", c.configFile, err)
		}
	}
	records, err := compiledb.Load(ctx, fname)
	if err != nil {
		return err
	}
	roots, err := incdeps.SystemRoots(ctx, c.cfg, records)
	if err != nil {
		return err
	}
	for _, root := range roots {
		fmt.Println(root)
	}
	return nil
}
