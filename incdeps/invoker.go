// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package incdeps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"go.chromium.org/infra/build/incdeps/compiledb"
	"go.chromium.org/infra/build/incdeps/execute"
	"go.chromium.org/infra/build/incdeps/execute/localexec"
	"go.chromium.org/infra/build/incdeps/toolsupport/gccutil"
	"go.chromium.org/infra/build/incdeps/toolsupport/msvcutil"
)

// Format is a format of dependency output.
type Format int

const (
	// FormatGCC is make rules printed by `-M`.
	FormatGCC Format = iota

	// FormatMSVC is "Note: including file:" lines printed by `/showIncludes`.
	FormatMSVC
)

func (f Format) String() string {
	switch f {
	case FormatGCC:
		return "gcc"
	case FormatMSVC:
		return "msvc"
	}
	return "unknown"
}

// RawOutput is dependency output of a compiler invocation.
type RawOutput struct {
	Format Format
	Data   []byte
}

// Invoker runs a compiler in dependency listing mode for a record.
type Invoker interface {
	// Invoke returns the raw dependency output of the record.
	// It returns *RecordError for a failure of the record, or
	// ctx's error if ctx is canceled.
	Invoke(ctx context.Context, rec compiledb.Record) (RawOutput, error)
}

// LocalInvoker invokes compilers on the local machine.
type LocalInvoker struct {
	// Timeout is per invocation timeout. zero means no timeout.
	Timeout time.Duration

	// Env is the environment of compiler processes.
	// nil means the current process's environment.
	Env []string

	// Executor runs the compiler. nil means localexec.
	Executor execute.Executor
}

// Invoke runs the compiler of rec in dependency listing mode.
func (li *LocalInvoker) Invoke(ctx context.Context, rec compiledb.Record) (RawOutput, error) {
	args := CompilerArgs(rec.Arguments)
	if len(args) == 0 {
		return RawOutput{}, recordError(rec, fmt.Errorf("%w: no compiler in %q", ErrToolchainNotFound, rec.Arguments), nil)
	}
	if _, err := os.Stat(rec.AbsFile()); err != nil {
		return RawOutput{}, recordError(rec, fmt.Errorf("%w: source file: %w", ErrInvocationFailed, err), nil)
	}
	raw := RawOutput{Format: FormatGCC}
	var dargs []string
	switch DetectFamily(args) {
	case FamilyMSVC:
		raw.Format = FormatMSVC
		dargs = msvcutil.DepsArgs(args)
	default:
		dargs = gccutil.DepsArgs(args)
	}
	cmd := &execute.Cmd{
		ID:      uuid.New().String(),
		Desc:    "DEPS " + rec.File,
		Args:    dargs,
		Env:     li.Env,
		Dir:     rec.Directory,
		Timeout: li.Timeout,
	}
	log.Debugf("%s: run %s in %s", cmd, cmd.Command(), cmd.Dir)
	executor := li.Executor
	if executor == nil {
		executor = localexec.LocalExec{}
	}
	err := executor.Run(ctx, cmd)
	if err != nil {
		if ctx.Err() != nil {
			return RawOutput{}, ctx.Err()
		}
		var nerr execute.NotFoundError
		var terr execute.TimeoutError
		switch {
		case errors.As(err, &nerr):
			err = fmt.Errorf("%w: %w", ErrToolchainNotFound, err)
		case errors.As(err, &terr):
			err = fmt.Errorf("%w: %w", ErrInvocationTimedOut, err)
		default:
			// non-zero exit, or failed to start.
			err = fmt.Errorf("%w: %w", ErrInvocationFailed, err)
		}
		return RawOutput{}, recordError(rec, err, cmd.Stderr())
	}
	switch raw.Format {
	case FormatMSVC:
		// cl prints notes to stdout, clang-cl prints them to stderr.
		raw.Data = append(raw.Data, cmd.Stdout()...)
		raw.Data = append(raw.Data, cmd.Stderr()...)
	default:
		raw.Data = cmd.Stdout()
		if len(cmd.Stderr()) > 0 {
			log.Debugf("%s: stderr: %s", cmd, cmd.Stderr())
		}
	}
	return raw, nil
}

func recordError(rec compiledb.Record, err error, diag []byte) *RecordError {
	return &RecordError{
		File:       rec.File,
		Directory:  rec.Directory,
		Err:        err,
		Diagnostic: string(diag),
	}
}
