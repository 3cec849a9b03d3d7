// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package incdeps

import (
	"errors"
	"fmt"
)

var (
	// ErrToolchainNotFound is returned when the compiler binary is not found.
	ErrToolchainNotFound = errors.New("toolchain not found")

	// ErrInvocationFailed is returned when the compiler exits with non-zero code.
	ErrInvocationFailed = errors.New("invocation failed")

	// ErrInvocationTimedOut is returned when the compiler doesn't finish in time.
	ErrInvocationTimedOut = errors.New("invocation timed out")

	// ErrMalformedDependencyOutput is returned when the compiler output is empty or unparsable.
	ErrMalformedDependencyOutput = errors.New("malformed dependency output")

	// ErrNoUsableRecords is returned when no record could be scanned.
	ErrNoUsableRecords = errors.New("no usable compile records")
)

// RecordError is an error of a compile record.
// It doesn't abort the scan.
type RecordError struct {
	File      string
	Directory string

	// Err wraps one of ErrToolchainNotFound, ErrInvocationFailed,
	// ErrInvocationTimedOut or ErrMalformedDependencyOutput.
	Err error

	// Diagnostic is stderr of the compiler, if any.
	Diagnostic string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s (in %s): %v", e.File, e.Directory, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Kind returns the kind of err, i.e. the message of the sentinel error
// err wraps, or "error" for other errors.
func Kind(err error) string {
	for _, kind := range []error{
		ErrToolchainNotFound,
		ErrInvocationFailed,
		ErrInvocationTimedOut,
		ErrMalformedDependencyOutput,
	} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "error"
}
