// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package msvcutil provides utilities of msvc.
package msvcutil

import (
	"bytes"
	"path/filepath"
	"strings"
)

// msvc may localized text, but we assume developers don't use that.
const depsPrefix = "Note: including file:"

// IsCompiler reports whether cmdname is cl.exe or clang-cl.
func IsCompiler(cmdname string) bool {
	// cmdname may be a windows path on non-windows host.
	if i := strings.LastIndexAny(cmdname, `/\`); i >= 0 {
		cmdname = cmdname[i+1:]
	}
	cmdname = strings.ToLower(strings.TrimSuffix(strings.ToLower(cmdname), ".exe"))
	return cmdname == "cl" || cmdname == "clang-cl"
}

// ParseShowIncludes parses /showIncludes outputs, and returns a list of inputs and other outputs.
func ParseShowIncludes(b []byte) ([]string, []byte) {
	// showIncludes contents
	//  Note: including file:  <pathname>\r\n
	//
	// nested includes are indented by spaces after the prefix.
	// other lines will be normal stdout/stderr (e.g. compiler error message)
	var deps []string
	var outs []byte
	for len(b) > 0 {
		line := b
		var eol []byte
		if i := bytes.IndexByte(b, '\n'); i >= 0 {
			line, eol, b = b[:i], b[i:i+1], b[i+1:]
		} else {
			b = nil
		}
		if bytes.HasSuffix(line, []byte("\r")) {
			line = line[:len(line)-1]
			eol = append([]byte("\r"), eol...)
		}
		if dep, ok := bytes.CutPrefix(line, []byte(depsPrefix)); ok {
			dep = bytes.TrimSpace(dep)
			if len(dep) > 0 {
				deps = append(deps, string(dep))
			}
			continue
		}
		outs = append(outs, line...)
		outs = append(outs, eol...)
	}
	return deps, outs
}

// DepsArgs returns command line args to get deps for args.
// It preprocesses without writing any outputs, and prints
// included files to stderr.
func DepsArgs(args []string) []string {
	var dargs []string
	hasShowIncludes := false
	for _, arg := range args {
		switch arg {
		case "/showIncludes:user", "-showIncludes:user":
			// need system headers too.
			dargs = append(dargs, "/showIncludes")
			hasShowIncludes = true
			continue
		case "/showIncludes", "-showIncludes":
			hasShowIncludes = true
		case "/c", "-c":
			// syntax check only.
			dargs = append(dargs, "/Zs")
			continue
		}
		switch {
		case strings.HasPrefix(arg, "/Fo"), strings.HasPrefix(arg, "-Fo"):
			continue
		case strings.HasPrefix(arg, "/Fd"), strings.HasPrefix(arg, "-Fd"):
			continue
		case strings.HasPrefix(arg, "/Fp"), strings.HasPrefix(arg, "-Fp"):
			continue
		}
		dargs = append(dargs, arg)
	}
	if !hasShowIncludes {
		dargs = append(dargs, "/showIncludes")
	}
	return dargs
}

// IncludeParams holds include related params of a cl command line.
type IncludeParams struct {
	// Sources are source files compiled by the command.
	Sources []string

	// SystemDirs are external include dirs (/imsvc, /external:I).
	SystemDirs []string

	// Sysroots are /winsysroot dirs.
	Sysroots []string
}

// ExtractIncludeParams parses args and returns include params.
// full set of command line flags for include dirs can be found in
// https://learn.microsoft.com/en-us/cpp/build/reference/compiler-options-listed-by-category?view=msvc-170
func ExtractIncludeParams(args []string) IncludeParams {
	var params IncludeParams
	for i := 1; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "/imsvc", "-imsvc", "/external:I", "-external:I":
			i++
			if i < len(args) {
				params.SystemDirs = append(params.SystemDirs, args[i])
			}
			continue
		case "/winsysroot", "-winsysroot":
			i++
			if i < len(args) {
				params.Sysroots = append(params.Sysroots, args[i])
			}
			continue
		}
		switch {
		case strings.HasPrefix(arg, "/imsvc"), strings.HasPrefix(arg, "-imsvc"):
			params.SystemDirs = append(params.SystemDirs, arg[len("/imsvc"):])
		case strings.HasPrefix(arg, "/external:I"), strings.HasPrefix(arg, "-external:I"):
			params.SystemDirs = append(params.SystemDirs, arg[len("/external:I"):])
		case strings.HasPrefix(arg, "/winsysroot"), strings.HasPrefix(arg, "-winsysroot"):
			params.Sysroots = append(params.Sysroots, arg[len("/winsysroot"):])
		case !strings.HasPrefix(arg, "-") && !strings.HasPrefix(arg, "/"):
			switch strings.ToLower(filepath.Ext(arg)) {
			case ".c", ".cc", ".cxx", ".cpp":
				params.Sources = append(params.Sources, arg)
			}
		}
	}
	return params
}
