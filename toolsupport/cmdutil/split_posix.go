// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//go:build !windows

package cmdutil

import (
	"fmt"
	"runtime"
)

// Split splits cmd.exe's cmdline. Windows only.
// Use shutil.Split for posix shell's cmdline.
func Split(cmdline string) ([]string, error) {
	return nil, fmt.Errorf("cmdutil.Split is not supported on %s", runtime.GOOS)
}
