// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package gccutil provides utilities of gcc.
package gccutil

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/incdeps/execute"
	"go.chromium.org/infra/build/incdeps/execute/localexec"
)

// DepsArgs returns command line args to get deps for args.
// deps will be printed to stdout in make rule format.
func DepsArgs(args []string) []string {
	var dargs []string
	skip := false
	for _, arg := range args {
		if skip {
			skip = false
			continue
		}
		switch arg {
		case "-MD", "-MMD", "-M", "-MM", "-MG", "-c":
			continue
		case "-MF", "-MT", "-MQ", "-o":
			skip = true
			continue
		}
		switch {
		case strings.HasPrefix(arg, "-MF"),
			strings.HasPrefix(arg, "-MT"),
			strings.HasPrefix(arg, "-MQ"),
			strings.HasPrefix(arg, "-o"):
			continue
		}
		dargs = append(dargs, arg)
	}
	dargs = append(dargs, "-M")
	return dargs
}

// SearchDirsArgs returns command line args to make compiler print
// its default include search dirs for lang ("c" or "c++") to stderr.
// targetArgs are flags that change the default search dirs,
// as returned by TargetArgs.
func SearchDirsArgs(compiler, lang string, targetArgs []string) []string {
	args := []string{compiler}
	args = append(args, targetArgs...)
	return append(args, "-E", "-x", lang, "-v", "-")
}

// Language returns the language ("c" or "c++") to ask default search
// dirs for the source file.
// Unknown extension is treated as "c", which every gcc compatible
// compiler supports.
func Language(source string) string {
	switch filepath.Ext(source) {
	case ".cc", ".cpp", ".cxx", ".c++", ".cp", ".C", ".mm", ".ii":
		return "c++"
	}
	return "c"
}

// TargetArgs returns flags in args that change the default include
// search dirs of the compiler, i.e. sysroot, target, ABI, stdlib and
// -nostdinc flags.
// Relative sysroot dirs are resolved against dir.
func TargetArgs(args []string, dir string) []string {
	abs := func(p string) string {
		if dir == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	var targs []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--sysroot", "-isysroot":
			i++
			if i < len(args) {
				targs = append(targs, arg, abs(args[i]))
			}
			continue
		case "-target", "--target", "--gcc-toolchain", "-arch":
			i++
			if i < len(args) {
				targs = append(targs, arg, args[i])
			}
			continue
		case "-m32", "-m64", "-mx32", "-m16",
			"-nostdinc", "-nostdinc++", "-nostdlibinc", "-nobuiltininc":
			targs = append(targs, arg)
			continue
		}
		switch {
		case strings.HasPrefix(arg, "--sysroot="):
			targs = append(targs, "--sysroot="+abs(strings.TrimPrefix(arg, "--sysroot=")))
		case strings.HasPrefix(arg, "-isysroot"):
			targs = append(targs, "-isysroot", abs(strings.TrimPrefix(arg, "-isysroot")))
		case strings.HasPrefix(arg, "--target="),
			strings.HasPrefix(arg, "--gcc-toolchain="),
			strings.HasPrefix(arg, "-stdlib="),
			strings.HasPrefix(arg, "--stdlib="):
			targs = append(targs, arg)
		}
	}
	return targs
}

// ParseSearchDirs parses `-v` output of gcc/clang and returns
// system include search dirs listed in
//
//	#include <...> search starts here:
//	 /usr/include
//	 /System/Library/Frameworks (framework directory)
//	End of search list.
func ParseSearchDirs(b []byte) []string {
	var dirs []string
	inList := false
	for _, line := range bytes.Split(b, []byte("\n")) {
		line = bytes.TrimRight(line, "\r")
		switch {
		case bytes.HasPrefix(line, []byte("#include <...> search starts here:")):
			inList = true
			continue
		case bytes.HasPrefix(line, []byte("#include ")):
			// quote dirs.
			inList = false
			continue
		case bytes.HasPrefix(line, []byte("End of search list.")):
			inList = false
			continue
		}
		if !inList || !bytes.HasPrefix(line, []byte(" ")) {
			continue
		}
		dir := strings.TrimSpace(string(line))
		dir = strings.TrimSuffix(dir, " (framework directory)")
		dir = strings.TrimSuffix(dir, " (headermap)")
		if dir == "" {
			continue
		}
		dirs = append(dirs, filepath.Clean(dir))
	}
	return dirs
}

// SystemIncludeDirs runs args (as returned by SearchDirsArgs) in cwd
// and returns the compiler's default include search dirs.
func SystemIncludeDirs(ctx context.Context, args []string, env []string, cwd string) ([]string, error) {
	s := time.Now()
	cmd := &execute.Cmd{
		Args: args,
		Env:  env,
		Dir:  cwd,
	}
	err := localexec.Run(ctx, cmd)
	if err != nil {
		log.Warnf("failed to run %q: %v\n%s", cmd.Args, err, cmd.Stderr())
		return nil, err
	}
	dirs := ParseSearchDirs(cmd.Stderr())
	if len(dirs) == 0 {
		return nil, fmt.Errorf("no include search dirs in output of %q", cmd.Args)
	}
	log.Infof("%q search dirs %q (%s)", cmd.Args, dirs, time.Since(s))
	return dirs, nil
}
