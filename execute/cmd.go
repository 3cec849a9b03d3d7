// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package execute runs commands.
package execute

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"go.chromium.org/infra/build/incdeps/toolsupport/shutil"
)

// Executor is an interface to run the cmd.
type Executor interface {
	Run(ctx context.Context, cmd *Cmd) error
}

// Cmd includes all the information required to run a toolchain command.
type Cmd struct {
	// ID is used as a unique identifier for this cmd in logs.
	// It does not have to be human-readable, so using a UUID is fine.
	ID string

	// Desc is a short, human-readable identifier of the cmd.
	// Example: "DEPS a.cpp"
	Desc string

	// Args holds command line arguments.
	Args []string

	// Env specifies the environment of the process.
	// If nil, the process uses the current process's environment.
	Env []string

	// Dir specifies the working directory of the cmd.
	Dir string

	// Timeout is the timeout of the cmd. zero means no timeout.
	Timeout time.Duration

	stdoutWriter, stderrWriter io.Writer
	stdoutBuffer, stderrBuffer bytes.Buffer

	duration time.Duration
}

// String returns an ID of the cmd.
func (c *Cmd) String() string {
	if c.Desc != "" {
		return fmt.Sprintf("%s(%s)", c.Desc, c.ID)
	}
	return c.ID
}

// Command returns a command line string.
func (c *Cmd) Command() string {
	return shutil.Join(c.Args)
}

// SetStdoutWriter sets w for stdout.
func (c *Cmd) SetStdoutWriter(w io.Writer) {
	c.stdoutWriter = w
}

// SetStderrWriter sets w for stderr.
func (c *Cmd) SetStderrWriter(w io.Writer) {
	c.stderrWriter = w
}

// StdoutWriter returns a writer set for stdout.
func (c *Cmd) StdoutWriter() io.Writer {
	c.stdoutBuffer.Reset()
	if c.stdoutWriter == nil {
		return &c.stdoutBuffer
	}
	return io.MultiWriter(c.stdoutWriter, &c.stdoutBuffer)
}

// StderrWriter returns a writer set for stderr.
func (c *Cmd) StderrWriter() io.Writer {
	c.stderrBuffer.Reset()
	if c.stderrWriter == nil {
		return &c.stderrBuffer
	}
	return io.MultiWriter(c.stderrWriter, &c.stderrBuffer)
}

// Stdout returns stdout output of the cmd.
func (c *Cmd) Stdout() []byte {
	return c.stdoutBuffer.Bytes()
}

// Stderr returns stderr output of the cmd.
func (c *Cmd) Stderr() []byte {
	return c.stderrBuffer.Bytes()
}

// SetDuration records how long the cmd ran.
func (c *Cmd) SetDuration(d time.Duration) {
	c.duration = d
}

// Duration returns how long the cmd ran.
func (c *Cmd) Duration() time.Duration {
	return c.duration
}

// ExitError is an error of cmd exit.
type ExitError struct {
	ExitCode int
}

func (e ExitError) Error() string {
	return fmt.Sprintf("exit=%d", e.ExitCode)
}

// TimeoutError is an error of cmd that didn't finish in its timeout.
type TimeoutError struct {
	Timeout time.Duration
}

func (e TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s", e.Timeout)
}

// NotFoundError is an error of cmd whose executable is not found.
type NotFoundError struct {
	Name string
	Err  error
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("executable %q not found: %v", e.Name, e.Err)
}

func (e NotFoundError) Unwrap() error {
	return e.Err
}
