// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package gccutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractIncludeParams(t *testing.T) {
	for _, tc := range []struct {
		name string
		args []string
		want IncludeParams
	}{
		{
			name: "clang++",
			args: []string{
				"../../third_party/llvm-build/Release+Asserts/bin/clang++",
				"-MMD",
				"-MF",
				"obj/base/base/base64.o.d",
				"-DDCHECK_ALWAYS_ON=1",
				"-I../..",
				"-Igen",
				"-isystem",
				"../../buildtools/third_party/libc++/trunk/include",
				"-isystem../../buildtools/third_party/libc++abi/trunk/include",
				"--sysroot=../../build/linux/debian_bullseye_amd64-sysroot",
				"-c",
				"../../base/base64.cc",
				"-o",
				"obj/base/base/base64.o",
			},
			want: IncludeParams{
				Sources: []string{
					"../../base/base64.cc",
				},
				Dirs: []string{
					"../..",
					"gen",
				},
				SystemDirs: []string{
					"../../buildtools/third_party/libc++/trunk/include",
					"../../buildtools/third_party/libc++abi/trunk/include",
				},
				Sysroots: []string{
					"../../build/linux/debian_bullseye_amd64-sysroot",
				},
			},
		},
		{
			name: "gcc-separate",
			args: []string{
				"/usr/bin/gcc",
				"-iquote", "inc",
				"-idirafter", "/opt/sdk/include",
				"--sysroot", "/opt/sysroot",
				"-x", "c",
				"-c", "main.c",
				"-o", "main.o",
			},
			want: IncludeParams{
				Sources:    []string{"main.c"},
				Dirs:       []string{"inc"},
				SystemDirs: []string{"/opt/sdk/include"},
				Sysroots:   []string{"/opt/sysroot"},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractIncludeParams(tc.args)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ExtractIncludeParams(%q): diff -want +got:\n%s", tc.args, diff)
			}
		})
	}
}

func TestIsCompiler(t *testing.T) {
	for _, tc := range []struct {
		cmd  string
		want bool
	}{
		{cmd: "../../third_party/llvm-build/Release+Asserts/bin/clang++", want: true},
		{cmd: "/usr/bin/gcc", want: true},
		{cmd: "g++-13", want: true},
		{cmd: "clang-18", want: true},
		{cmd: "x86_64-linux-gnu-g++", want: true},
		{cmd: "cc", want: true},
		{cmd: `C:\tools\clang.exe`, want: true},
		{cmd: "ccache", want: false},
		{cmd: "python3", want: false},
		{cmd: "clang-cl", want: false},
	} {
		got := IsCompiler(tc.cmd)
		if got != tc.want {
			t.Errorf("IsCompiler(%q)=%t; want %t", tc.cmd, got, tc.want)
		}
	}
}
