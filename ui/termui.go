// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

type termSpinner struct {
	quit, done chan struct{}
	started    time.Time
	n          int
	msg        string
}

// Start starts the spinner.
func (s *termSpinner) Start(format string, args ...any) {
	s.started = time.Now()
	s.msg = fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "%s... ", s.msg)
	s.quit = make(chan struct{})
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-s.quit:
				return
			case <-ticker.C:
				const chars = `/-\|`
				fmt.Fprintf(os.Stderr, "\b%c", chars[s.n])
				s.n = (s.n + 1) % len(chars)
			}
		}
	}()
}

// Stop stops the spinner.
func (s *termSpinner) Stop(err error) {
	close(s.quit)
	<-s.done
	d := time.Since(s.started)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\r\033[K%6s %s %s %v\n", FormatDuration(d), s.msg, SGR(Red, "failed"), err)
		return
	}
	fmt.Fprintf(os.Stderr, "\r\033[K%6s %s\n", FormatDuration(d), s.msg)
}

// Done finishes the spinner with message.
func (s *termSpinner) Done(format string, args ...any) {
	close(s.quit)
	<-s.done
	msg := fmt.Sprintf(format, args...)
	d := time.Since(s.started)
	fmt.Fprintf(os.Stderr, "\r\033[K%6s %s %s\n", FormatDuration(d), s.msg, msg)
}

// TermUI is a terminal-based UI.
type TermUI struct {
	width int

	mu       sync.Mutex
	progress bool
}

func (t *TermUI) init() {
	t.width, _, _ = term.GetSize(int(os.Stderr.Fd()))
}

// Progress replaces the current progress line with msg.
func (t *TermUI) Progress(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if msg == "" {
		if t.progress {
			fmt.Fprint(os.Stderr, "\r\033[K")
			t.progress = false
		}
		return
	}
	fmt.Fprintf(os.Stderr, "\r\033[K%s", elideMiddle(msg, t.width))
	t.progress = true
}

// NewSpinner returns a terminal-based spinner.
func (*TermUI) NewSpinner() spinner {
	return &termSpinner{}
}

func (t *TermUI) printf(prefix, format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.progress {
		fmt.Fprint(os.Stderr, "\r\033[K")
		t.progress = false
	}
	fmt.Fprintf(os.Stderr, "%s%s\n", prefix, fmt.Sprintf(format, args...))
}

// Infof reports info message to stderr.
func (t *TermUI) Infof(format string, args ...any) {
	t.printf("", format, args...)
}

// Warningf reports warning message to stderr.
func (t *TermUI) Warningf(format string, args ...any) {
	t.printf(SGR(Yellow, "WARNING: "), format, args...)
}

// Errorf reports error message to stderr.
func (t *TermUI) Errorf(format string, args ...any) {
	t.printf(SGR(Red, "ERROR: "), format, args...)
}
