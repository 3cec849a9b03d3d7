// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package incdeps

import (
	"bytes"
	"fmt"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"

	"go.chromium.org/infra/build/incdeps/compiledb"
	"go.chromium.org/infra/build/incdeps/toolsupport/makeutil"
	"go.chromium.org/infra/build/incdeps/toolsupport/msvcutil"
)

// defaultPathCacheSize is the number of normalized paths to keep.
// Large projects have tens of thousands of unique headers.
const defaultPathCacheSize = 1 << 16

// HeaderDependency is a header used by a translation unit.
type HeaderDependency struct {
	// Path is lexically normalized absolute path of the header.
	Path string

	// Source is normalized absolute path of the translation unit
	// that includes the header.
	Source string
}

// Parser parses dependency outputs.
// It is safe for concurrent use.
type Parser struct {
	// key: dir + "\x00" + path, value: normalized path.
	cache *lru.Cache[string, string]
}

// NewParser returns a new parser that caches up to size normalized
// paths. size <= 0 means the default size.
func NewParser(size int) *Parser {
	if size <= 0 {
		size = defaultPathCacheSize
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		// only fails for non-positive size.
		panic(err)
	}
	return &Parser{cache: cache}
}

var defaultParser = NewParser(0)

// ParseDeps parses raw of rec with the default parser.
func ParseDeps(rec compiledb.Record, raw RawOutput) ([]HeaderDependency, error) {
	return defaultParser.Parse(rec, raw)
}

// Parse parses raw dependency output of rec, and returns headers
// included by rec, in the order of the output.
// The source file of rec is excluded.
// It returns error wrapping ErrMalformedDependencyOutput if raw is
// empty or unparsable.
func (p *Parser) Parse(rec compiledb.Record, raw RawOutput) ([]HeaderDependency, error) {
	if len(bytes.TrimSpace(raw.Data)) == 0 {
		return nil, fmt.Errorf("%w: empty %s output", ErrMalformedDependencyOutput, raw.Format)
	}
	var paths []string
	switch raw.Format {
	case FormatGCC:
		var err error
		paths, err = makeutil.ParseDeps(raw.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedDependencyOutput, err)
		}
	case FormatMSVC:
		paths, _ = msvcutil.ParseShowIncludes(raw.Data)
	default:
		return nil, fmt.Errorf("%w: unknown format %d", ErrMalformedDependencyOutput, raw.Format)
	}
	source := rec.AbsFile()
	seen := make(map[string]bool)
	deps := make([]HeaderDependency, 0, len(paths))
	for _, path := range paths {
		path = p.normalize(rec.Directory, path)
		if path == source || seen[path] {
			continue
		}
		seen[path] = true
		deps = append(deps, HeaderDependency{
			Path:   path,
			Source: source,
		})
	}
	return deps, nil
}

func (p *Parser) normalize(dir, path string) string {
	key := path
	if !filepath.IsAbs(path) {
		key = dir + "\x00" + path
	}
	if v, ok := p.cache.Get(key); ok {
		return v
	}
	v := NormalizePath(dir, path)
	p.cache.Add(key, v)
	return v
}

// NormalizePath returns lexically normalized absolute path of path.
// Relative path is resolved against dir. `.` and `..` are collapsed
// without resolving symlinks.
func NormalizePath(dir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(dir, path)
}
