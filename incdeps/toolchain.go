// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package incdeps

import (
	"strings"

	"go.chromium.org/infra/build/incdeps/toolsupport/msvcutil"
)

// Family is a toolchain family, which decides the command line to list
// dependencies and its output format.
type Family int

const (
	// FamilyGCC is gcc and clang compatible compilers.
	// Unknown compilers are treated as this family.
	FamilyGCC Family = iota

	// FamilyMSVC is cl and clang-cl.
	FamilyMSVC
)

func (f Family) String() string {
	switch f {
	case FamilyGCC:
		return "gcc"
	case FamilyMSVC:
		return "msvc"
	}
	return "unknown"
}

// launchers are compiler wrappers that take a compiler command line
// after their own flags.
var launchers = map[string]bool{
	"ccache":    true,
	"sccache":   true,
	"distcc":    true,
	"icecc":     true,
	"goma":      true,
	"gomacc":    true,
	"rewrapper": true,
}

func isLauncher(arg string) bool {
	name := strings.ToLower(arg[strings.LastIndexAny(arg, `/\`)+1:])
	name = strings.TrimSuffix(name, ".exe")
	return launchers[name]
}

// CompilerArgs returns the compiler command line in args, stripping
// compiler launchers and their flags.
// It returns nil if args has no compiler.
func CompilerArgs(args []string) []string {
	for len(args) > 0 && isLauncher(args[0]) {
		args = args[1:]
		for len(args) > 0 && strings.HasPrefix(args[0], "-") {
			args = args[1:]
		}
	}
	if len(args) == 0 {
		return nil
	}
	return args
}

// CompilerOf returns the compiler in args.
func CompilerOf(args []string) string {
	args = CompilerArgs(args)
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// DetectFamily returns the toolchain family of the compiler command line.
func DetectFamily(args []string) Family {
	if msvcutil.IsCompiler(CompilerOf(args)) {
		return FamilyMSVC
	}
	return FamilyGCC
}
