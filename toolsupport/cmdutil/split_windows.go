// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//go:build windows

package cmdutil

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// Split splits cmdline with the rule of CommandLineToArgvW,
// which msvc's compile commands follow.
func Split(cmdline string) ([]string, error) {
	if cmdline == "" {
		// CommandLineToArgvW returns the current executable for "".
		return nil, nil
	}
	var argc int32
	argsPtr, err := windows.UTF16PtrFromString(cmdline)
	if err != nil {
		return nil, err
	}
	argv, err := windows.CommandLineToArgv(argsPtr, &argc)
	if err != nil {
		return nil, err
	}
	defer windows.LocalFree(windows.Handle(unsafe.Pointer(argv)))
	args := make([]string, 0, argc)
	for _, v := range (*argv)[:argc] {
		args = append(args, windows.UTF16PtrToString(&v[0]))
	}
	return args, nil
}
