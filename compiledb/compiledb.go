// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package compiledb provides the model and loader of compile database
// (compile_commands.json).
//
// https://clang.llvm.org/docs/JSONCompilationDatabase.html
package compiledb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"go.chromium.org/infra/build/incdeps/toolsupport/cmdutil"
	"go.chromium.org/infra/build/incdeps/toolsupport/shutil"
)

// Record is an entry of compile database, i.e. one translation unit.
type Record struct {
	// Directory is the working directory of the compile command.
	// It is an absolute path.
	Directory string `json:"directory"`

	// File is the main source file of the translation unit.
	// It may be relative to Directory.
	File string `json:"file"`

	// Arguments is the compile command line.
	// Arguments[0] is the compiler (or compiler launcher).
	Arguments []string `json:"arguments"`

	// Output is the output file of the compile command, if any.
	Output string `json:"output,omitempty"`
}

// AbsFile returns the absolute, cleaned path of the source file.
func (r Record) AbsFile() string {
	if filepath.IsAbs(r.File) {
		return filepath.Clean(r.File)
	}
	return filepath.Join(r.Directory, r.File)
}

// String returns short description of the record.
func (r Record) String() string {
	return r.File
}

// entry is json representation of compile database entry.
type entry struct {
	Directory string   `json:"directory"`
	File      string   `json:"file"`
	Arguments []string `json:"arguments"`
	Command   string   `json:"command"`
	Output    string   `json:"output"`
}

// Load loads compile database from fname.
// fname with ".zst" or ".gz" suffix is decompressed.
// Relative directory in entries is resolved against the dir of fname.
func Load(ctx context.Context, fname string) ([]Record, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var r io.Reader = f
	switch {
	case strings.HasSuffix(fname, ".zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader for %s: %w", fname, err)
		}
		defer zr.Close()
		r = zr
	case strings.HasSuffix(fname, ".gz"):
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader for %s: %w", fname, err)
		}
		defer gr.Close()
		r = gr
	}
	base, err := filepath.Abs(filepath.Dir(fname))
	if err != nil {
		return nil, err
	}
	records, err := Decode(r, base)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", fname, err)
	}
	log.Infof("loaded %d entries from %s", len(records), fname)
	return records, nil
}

// Decode decodes compile database from r.
// Relative directory in entries is resolved against base.
func Decode(r io.Reader, base string) ([]Record, error) {
	var entries []entry
	err := json.NewDecoder(r).Decode(&entries)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(entries))
	for i, ent := range entries {
		rec, err := ent.record(base)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (e entry) record(base string) (Record, error) {
	if e.Directory == "" {
		return Record{}, fmt.Errorf("missing directory")
	}
	if e.File == "" {
		return Record{}, fmt.Errorf("missing file")
	}
	args := e.Arguments
	if len(args) == 0 {
		if e.Command == "" {
			return Record{}, fmt.Errorf("neither arguments nor command for %s", e.File)
		}
		var err error
		args, err = splitCommand(e.Command)
		if err != nil {
			return Record{}, fmt.Errorf("bad command for %s: %w", e.File, err)
		}
		if len(args) == 0 {
			return Record{}, fmt.Errorf("empty command for %s", e.File)
		}
	}
	dir := e.Directory
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(base, dir)
	}
	return Record{
		Directory: filepath.Clean(dir),
		File:      e.File,
		Arguments: args,
		Output:    e.Output,
	}, nil
}

// splitCommand splits command of compile database entry.
// It follows cmd.exe's rule on windows, and posix shell's rule on others.
func splitCommand(command string) ([]string, error) {
	if runtime.GOOS == "windows" {
		return cmdutil.Split(command)
	}
	return shutil.Split(command)
}

// Unique returns records with unique source files.
// The first record for the source file wins, as the other commands
// compile the same file in other configurations.
func Unique(records []Record) []Record {
	seen := make(map[string]bool)
	var unique []Record
	for _, rec := range records {
		fname := rec.AbsFile()
		if seen[fname] {
			log.Warnf("another command for same file. skip: file=%s args=%q", fname, rec.Arguments)
			continue
		}
		seen[fname] = true
		unique = append(unique, rec)
	}
	return unique
}

// ResolveCompiler returns the path to run compiler cc of the record.
// A relative path with directory separators is resolved against
// Directory. A bare command name is kept to be looked up in PATH.
func (r Record) ResolveCompiler(cc string) string {
	if strings.ContainsAny(cc, `/\`) && !filepath.IsAbs(cc) {
		return filepath.Join(r.Directory, cc)
	}
	return cc
}
