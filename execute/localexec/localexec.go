// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package localexec implements local command execution.
package localexec

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/incdeps/execute"
	"go.chromium.org/infra/build/incdeps/sync/semaphore"
)

// childOOMScoreAdj is oom_score_adj for child processes.
const childOOMScoreAdj = 1000

// waitDelay is how long to wait for i/o after the process is killed.
const waitDelay = 5 * time.Second

// LocalExec implements execute.Executor interface that runs commands locally.
type LocalExec struct{}

// Run runs cmd with LocalExec.
func Run(ctx context.Context, cmd *execute.Cmd) error {
	return LocalExec{}.Run(ctx, cmd)
}

// fix for http://b/278658064 windows: fork/exec: Not enough memory resources are available to process this command.
var forkSema = semaphore.New("fork", runtime.NumCPU())

// Run runs a cmd.
// It returns execute.NotFoundError if the executable is not found,
// execute.TimeoutError if cmd.Timeout exceeded, execute.ExitError
// if the cmd exited with non-zero exit code, or ctx's error
// if ctx is canceled.
func (LocalExec) Run(ctx context.Context, cmd *execute.Cmd) error {
	if len(cmd.Args) == 0 {
		return fmt.Errorf("no arguments in the command. ID: %s", cmd.ID)
	}
	if cmd.Dir != "" {
		fi, err := os.Stat(cmd.Dir)
		if err != nil {
			return fmt.Errorf("bad working directory: %w", err)
		}
		if !fi.IsDir() {
			return fmt.Errorf("working directory %q is not a directory", cmd.Dir)
		}
	}
	rctx := ctx
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}
	c := exec.CommandContext(rctx, cmd.Args[0], cmd.Args[1:]...)
	c.Env = cmd.Env
	c.Dir = cmd.Dir
	c.Stdout = cmd.StdoutWriter()
	c.Stderr = cmd.StderrWriter()
	c.WaitDelay = waitDelay
	setProcessGroup(c)
	if c.Err != nil {
		// lookup failure of the executable in PATH.
		return execute.NotFoundError{Name: cmd.Args[0], Err: c.Err}
	}
	s := time.Now()
	err := forkSema.Do(ctx, func(ctx context.Context) error {
		return c.Start()
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return execute.NotFoundError{Name: cmd.Args[0], Err: err}
		}
		return fmt.Errorf("failed to start %s: %w", cmd, err)
	}
	oomScoreAdj(c.Process.Pid, childOOMScoreAdj)
	err = c.Wait()
	cmd.SetDuration(time.Since(s))
	log.Debugf("%s exit=%v stdout=%d stderr=%d %s", cmd, err, len(cmd.Stdout()), len(cmd.Stderr()), cmd.Duration())
	switch {
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(rctx.Err(), context.DeadlineExceeded):
		return execute.TimeoutError{Timeout: cmd.Timeout}
	case err == nil:
		return nil
	}
	var eerr *exec.ExitError
	if errors.As(err, &eerr) {
		return execute.ExitError{ExitCode: eerr.ExitCode()}
	}
	return err
}
