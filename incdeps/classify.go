// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package incdeps

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
)

// Classification is a class of a header.
type Classification int

const (
	// Project is a header in the project.
	Project Classification = iota

	// System is a header provided by the toolchain or SDK.
	System
)

func (c Classification) String() string {
	switch c {
	case Project:
		return "project"
	case System:
		return "system"
	}
	return fmt.Sprintf("Classification(%d)", int(c))
}

// MarshalText implements encoding.TextMarshaler.
func (c Classification) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Classifier classifies headers by system roots.
type Classifier struct {
	roots []string
}

// NewClassifier returns a classifier with system roots.
// roots should be absolute paths.
func NewClassifier(roots []string) *Classifier {
	var rs []string
	for _, root := range roots {
		if root == "" {
			continue
		}
		rs = append(rs, filepath.Clean(root))
	}
	slices.Sort(rs)
	return &Classifier{roots: slices.Compact(rs)}
}

// Roots returns system roots of the classifier in sorted order.
func (c *Classifier) Roots() []string {
	return slices.Clone(c.roots)
}

// Classify returns System if path is one of the system roots or
// under one of the system roots, or Project otherwise.
// path should be a normalized absolute path.
func (c *Classifier) Classify(path string) Classification {
	for _, root := range c.roots {
		if under(path, root) {
			return System
		}
	}
	return Project
}

// caseInsensitivePaths is true if the file system compares paths
// ignoring case. cl may print lower-cased paths in /showIncludes
// while INCLUDE keeps the original case.
var caseInsensitivePaths = runtime.GOOS == "windows"

// under reports whether path is dir or in dir, on a path component
// boundary. "/usr/include2/x.h" is not under "/usr/include".
func under(path, dir string) bool {
	if len(path) < len(dir) {
		return false
	}
	if caseInsensitivePaths {
		if !strings.EqualFold(path[:len(dir)], dir) {
			return false
		}
	} else if path[:len(dir)] != dir {
		return false
	}
	if len(path) == len(dir) {
		return true
	}
	if os.IsPathSeparator(dir[len(dir)-1]) {
		// root dir, e.g. "/" or `C:\`.
		return true
	}
	return os.IsPathSeparator(path[len(dir)])
}
