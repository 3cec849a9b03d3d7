// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package incdeps

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/incdeps/compiledb"
	"go.chromium.org/infra/build/incdeps/execute"
)

type fakeExecutor struct {
	stdout, stderr string
	err            error

	cmd *execute.Cmd
}

func (f *fakeExecutor) Run(ctx context.Context, cmd *execute.Cmd) error {
	f.cmd = cmd
	fmt.Fprint(cmd.StdoutWriter(), f.stdout)
	fmt.Fprint(cmd.StderrWriter(), f.stderr)
	return f.err
}

func setupSource(t *testing.T, name string) string {
	t.Helper()
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, name), []byte("#include <stdio.h>\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLocalInvoker_gcc(t *testing.T) {
	dir := setupSource(t, "a.cpp")
	ex := &fakeExecutor{
		stdout: "a.o: a.cpp /usr/include/stdio.h\n",
		stderr: "warning: something\n",
	}
	li := &LocalInvoker{Timeout: 10 * time.Second, Executor: ex}
	rec := compiledb.Record{
		Directory: dir,
		File:      "a.cpp",
		Arguments: []string{"ccache", "clang++", "-MMD", "-MF", "a.o.d", "-c", "a.cpp", "-o", "a.o"},
	}
	raw, err := li.Invoke(context.Background(), rec)
	if err != nil {
		t.Fatalf("Invoke=_, %v; want nil err", err)
	}
	want := RawOutput{Format: FormatGCC, Data: []byte(ex.stdout)}
	if diff := cmp.Diff(want, raw); diff != "" {
		t.Errorf("Invoke diff -want +got:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"clang++", "a.cpp", "-M"}, ex.cmd.Args); diff != "" {
		t.Errorf("cmd.Args diff -want +got:\n%s", diff)
	}
	if ex.cmd.Dir != dir || ex.cmd.Timeout != 10*time.Second || ex.cmd.ID == "" {
		t.Errorf("cmd dir=%q timeout=%v id=%q; want dir=%q timeout=10s, non-empty id", ex.cmd.Dir, ex.cmd.Timeout, ex.cmd.ID, dir)
	}
}

func TestLocalInvoker_msvc(t *testing.T) {
	dir := setupSource(t, "a.cc")
	ex := &fakeExecutor{
		stdout: "a.cc\r\nNote: including file: C:\\sdk\\stdio.h\r\n",
		stderr: "Note: including file: C:\\sdk\\stdlib.h\r\n",
	}
	li := &LocalInvoker{Executor: ex}
	rec := compiledb.Record{
		Directory: dir,
		File:      "a.cc",
		Arguments: []string{"cl.exe", "/c", "a.cc", "/Foa.obj"},
	}
	raw, err := li.Invoke(context.Background(), rec)
	if err != nil {
		t.Fatalf("Invoke=_, %v; want nil err", err)
	}
	want := RawOutput{Format: FormatMSVC, Data: []byte(ex.stdout + ex.stderr)}
	if diff := cmp.Diff(want, raw); diff != "" {
		t.Errorf("Invoke diff -want +got:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"cl.exe", "/Zs", "a.cc", "/showIncludes"}, ex.cmd.Args); diff != "" {
		t.Errorf("cmd.Args diff -want +got:\n%s", diff)
	}
}

func TestLocalInvoker_errors(t *testing.T) {
	dir := setupSource(t, "a.cpp")
	rec := compiledb.Record{
		Directory: dir,
		File:      "a.cpp",
		Arguments: []string{"clang++", "-c", "a.cpp"},
	}
	for _, tc := range []struct {
		name     string
		rec      compiledb.Record
		ex       *fakeExecutor
		want     error
		wantDiag string
	}{
		{
			name: "notfound",
			rec:  rec,
			ex:   &fakeExecutor{err: execute.NotFoundError{Name: "clang++", Err: fs.ErrNotExist}},
			want: ErrToolchainNotFound,
		},
		{
			name: "nocompiler",
			rec: compiledb.Record{
				Directory: dir,
				File:      "a.cpp",
				Arguments: []string{"ccache"},
			},
			ex:   &fakeExecutor{},
			want: ErrToolchainNotFound,
		},
		{
			name:     "exit",
			rec:      rec,
			ex:       &fakeExecutor{stderr: "a.cpp:1:10: fatal error: 'x.h' file not found\n", err: execute.ExitError{ExitCode: 1}},
			want:     ErrInvocationFailed,
			wantDiag: "a.cpp:1:10: fatal error: 'x.h' file not found\n",
		},
		{
			name: "timeout",
			rec:  rec,
			ex:   &fakeExecutor{err: execute.TimeoutError{Timeout: time.Second}},
			want: ErrInvocationTimedOut,
		},
		{
			name: "nosource",
			rec: compiledb.Record{
				Directory: dir,
				File:      "missing.cpp",
				Arguments: []string{"clang++", "-c", "missing.cpp"},
			},
			ex:   &fakeExecutor{},
			want: ErrInvocationFailed,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			li := &LocalInvoker{Executor: tc.ex}
			_, err := li.Invoke(context.Background(), tc.rec)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Invoke=_, %v; want %v", err, tc.want)
			}
			var rerr *RecordError
			if !errors.As(err, &rerr) {
				t.Fatalf("Invoke=_, %T; want *RecordError", err)
			}
			if rerr.File != tc.rec.File || rerr.Directory != dir || rerr.Diagnostic != tc.wantDiag {
				t.Errorf("RecordError=%#v; want file=%q dir=%q diag=%q", rerr, tc.rec.File, dir, tc.wantDiag)
			}
			if got, want := Kind(err), tc.want.Error(); got != want {
				t.Errorf("Kind(%v)=%q; want %q", err, got, want)
			}
		})
	}
}

func TestLocalInvoker_canceled(t *testing.T) {
	dir := setupSource(t, "a.cpp")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	li := &LocalInvoker{Executor: &fakeExecutor{err: context.Canceled}}
	_, err := li.Invoke(ctx, compiledb.Record{
		Directory: dir,
		File:      "a.cpp",
		Arguments: []string{"clang++", "-c", "a.cpp"},
	})
	var rerr *RecordError
	if !errors.Is(err, context.Canceled) || errors.As(err, &rerr) {
		t.Errorf("Invoke=_, %v; want %v", err, context.Canceled)
	}
}
