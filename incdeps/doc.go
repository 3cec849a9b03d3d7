// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package incdeps extracts header dependencies of translation units in
// a compile database.
//
// For each compile record, the toolchain is invoked in dependency
// listing mode (gcc/clang `-M`, cl `/showIncludes`). The output is
// parsed into lexically normalized absolute paths, merged into one set
// keyed by path, classified as system or project headers by configured
// system roots, filtered, and ordered lexicographically.
//
// Failure of one record (toolchain not found, non-zero exit, timeout,
// malformed output) is reported in the result and never aborts the
// other records. Scan fails only if no record is usable or ctx is
// canceled.
package incdeps
