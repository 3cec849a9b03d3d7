// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package gccutil

import (
	"path/filepath"
	"strings"
)

// IncludeParams holds include related params of a gcc/clang command line.
// Paths are as given in the command line, i.e. relative to the
// command's working directory.
type IncludeParams struct {
	// Sources are source files compiled by the command.
	Sources []string

	// Dirs are user include dirs (-I, -iquote).
	Dirs []string

	// SystemDirs are system include dirs (-isystem, -idirafter).
	SystemDirs []string

	// Sysroots are --sysroot dirs.
	Sysroots []string
}

// IsCompiler reports whether cmdname looks like gcc or clang driver.
func IsCompiler(cmdname string) bool {
	cmdname = filepath.Base(cmdname)
	cmdname = strings.TrimSuffix(cmdname, ".exe")
	// strip version suffix. e.g. gcc-13, clang++-18
	if i := strings.LastIndexByte(cmdname, '-'); i > 0 && isVersion(cmdname[i+1:]) {
		cmdname = cmdname[:i]
	}
	switch {
	case strings.HasSuffix(cmdname, "clang"),
		strings.HasSuffix(cmdname, "clang++"),
		strings.HasSuffix(cmdname, "gcc"),
		strings.HasSuffix(cmdname, "g++"),
		cmdname == "cc",
		cmdname == "c++",
		strings.HasSuffix(cmdname, "-cc"),
		strings.HasSuffix(cmdname, "-c++"):
		return true
	}
	return false
}

func isVersion(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if (ch < '0' || ch > '9') && ch != '.' {
			return false
		}
	}
	return true
}

// ExtractIncludeParams parses args and returns include params.
// It only parses major command line flags.
// full set of command line flags for include dirs can be found in
// https://clang.llvm.org/docs/ClangCommandLineReference.html#include-path-management
func ExtractIncludeParams(args []string) IncludeParams {
	var params IncludeParams
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-I", "--include-directory", "-iquote":
			i++
			if i < len(args) {
				params.Dirs = append(params.Dirs, args[i])
			}
			continue
		case "-isystem", "-idirafter", "--system-header-prefix":
			i++
			if i < len(args) {
				params.SystemDirs = append(params.SystemDirs, args[i])
			}
			continue
		case "--sysroot", "-isysroot":
			i++
			if i < len(args) {
				params.Sysroots = append(params.Sysroots, args[i])
			}
			continue
		case "-o", "-MF", "-MT", "-MQ", "-x", "-include", "-imacros":
			// flags with separate value that is not a source.
			i++
			continue
		}
		switch {
		case strings.HasPrefix(arg, "-I"):
			params.Dirs = append(params.Dirs, strings.TrimPrefix(arg, "-I"))
		case strings.HasPrefix(arg, "--include-directory="):
			params.Dirs = append(params.Dirs, strings.TrimPrefix(arg, "--include-directory="))
		case strings.HasPrefix(arg, "-iquote"):
			params.Dirs = append(params.Dirs, strings.TrimPrefix(arg, "-iquote"))
		case strings.HasPrefix(arg, "-isystem"):
			params.SystemDirs = append(params.SystemDirs, strings.TrimPrefix(arg, "-isystem"))
		case strings.HasPrefix(arg, "-idirafter"):
			params.SystemDirs = append(params.SystemDirs, strings.TrimPrefix(arg, "-idirafter"))
		case strings.HasPrefix(arg, "--sysroot="):
			params.Sysroots = append(params.Sysroots, strings.TrimPrefix(arg, "--sysroot="))
		case strings.HasPrefix(arg, "-isysroot"):
			params.Sysroots = append(params.Sysroots, strings.TrimPrefix(arg, "-isysroot"))
		case i > 0 && !strings.HasPrefix(arg, "-"):
			switch filepath.Ext(arg) {
			case ".c", ".cc", ".cxx", ".cpp", ".c++", ".C", ".m", ".mm", ".S", ".s":
				params.Sources = append(params.Sources, arg)
			}
		}
	}
	return params
}
