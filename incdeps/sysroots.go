// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package incdeps

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"go.chromium.org/infra/build/incdeps/compiledb"
	"go.chromium.org/infra/build/incdeps/toolsupport/gccutil"
	"go.chromium.org/infra/build/incdeps/toolsupport/msvcutil"
)

// detectSearchDirs returns default include search dirs of a gcc
// compatible compiler for args made by gccutil.SearchDirsArgs.
// It is replaced in tests.
var detectSearchDirs = gccutil.SystemIncludeDirs

// SystemRoots returns system roots used to classify headers of records,
// sorted and deduplicated.
// They are computed once per run from cfg.SystemRoots, default include
// search dirs of compilers (if cfg.DetectSystemRoots) and system include
// dirs in command lines (if cfg.IsystemAsSystem).
// Failure to detect search dirs of a compiler is logged and ignored.
func SystemRoots(ctx context.Context, cfg Config, records []compiledb.Record) ([]string, error) {
	var roots []string
	for _, root := range cfg.SystemRoots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, err
		}
		roots = append(roots, abs)
	}
	if cfg.DetectSystemRoots {
		dirs, err := DetectSystemRoots(ctx, records, cfg.Concurrency)
		if err != nil {
			return nil, err
		}
		roots = append(roots, dirs...)
	}
	if cfg.IsystemAsSystem {
		roots = append(roots, commandLineSystemDirs(records)...)
	}
	return NewClassifier(roots).Roots(), nil
}

// DetectSystemRoots returns default include search dirs of compilers
// used in records.
// gcc compatible compilers are asked with `-E -x <lang> -v -` once per
// distinct compiler, language and flags that change its default search
// dirs (sysroot, target etc), so cross compile records get their SDK
// dirs.
// For cl, dirs in INCLUDE environment variable are used.
func DetectSystemRoots(ctx context.Context, records []compiledb.Record, concurrency int) ([]string, error) {
	var queries [][]string
	seen := make(map[string]bool)
	msvc := false
	for _, rec := range records {
		args := CompilerArgs(rec.Arguments)
		if len(args) == 0 {
			continue
		}
		cc := rec.ResolveCompiler(args[0])
		if msvcutil.IsCompiler(cc) {
			msvc = true
			continue
		}
		q := gccutil.SearchDirsArgs(cc, gccutil.Language(rec.File), gccutil.TargetArgs(args[1:], rec.Directory))
		key := strings.Join(q, "\x00")
		if seen[key] {
			continue
		}
		seen[key] = true
		if !gccutil.IsCompiler(cc) {
			log.Debugf("unknown compiler %s. assume gcc compatible", cc)
		}
		queries = append(queries, q)
	}
	var mu sync.Mutex
	var roots []string
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(concurrency, 1))
	for _, q := range queries {
		eg.Go(func() error {
			dirs, err := detectSearchDirs(ctx, q, nil, "")
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Warnf("failed to detect system roots with %q: %v", q, err)
				return nil
			}
			mu.Lock()
			roots = append(roots, dirs...)
			mu.Unlock()
			return nil
		})
	}
	err := eg.Wait()
	if err != nil {
		return nil, err
	}
	if msvc {
		for _, dir := range strings.Split(os.Getenv("INCLUDE"), ";") {
			dir = strings.TrimSpace(dir)
			if dir == "" {
				continue
			}
			roots = append(roots, filepath.Clean(dir))
		}
	}
	return roots, nil
}

// commandLineSystemDirs returns system include dirs and sysroots
// given in command lines of records.
func commandLineSystemDirs(records []compiledb.Record) []string {
	var dirs []string
	for _, rec := range records {
		args := CompilerArgs(rec.Arguments)
		var found []string
		switch DetectFamily(args) {
		case FamilyMSVC:
			params := msvcutil.ExtractIncludeParams(args)
			found = append(params.SystemDirs, params.Sysroots...)
		default:
			params := gccutil.ExtractIncludeParams(args)
			found = append(params.SystemDirs, params.Sysroots...)
		}
		for _, dir := range found {
			dirs = append(dirs, NormalizePath(rec.Directory, dir))
		}
	}
	return dirs
}
