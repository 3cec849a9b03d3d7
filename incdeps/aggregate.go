// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package incdeps

import (
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Filter selects headers in the result.
type Filter struct {
	// ExcludeSystem excludes System headers.
	ExcludeSystem bool

	// HeadersOnly keeps only paths that look like headers,
	// i.e. with no extension or extension starting with ".h".
	HeadersOnly bool
}

func (f Filter) keep(h Header) bool {
	if f.ExcludeSystem && h.Class == System {
		return false
	}
	if f.HeadersOnly && !isHeader(h.Path) {
		return false
	}
	return true
}

// isHeader reports whether path looks like a header.
// e.g. "foo.h", "foo.hpp", "foo.hh", "vector".
func isHeader(path string) bool {
	ext := filepath.Ext(path)
	return ext == "" || strings.HasPrefix(ext, ".h")
}

// Header is a header in the result.
type Header struct {
	Path  string         `json:"path"`
	Class Classification `json:"class"`

	// Sources are translation units that include the header, sorted.
	Sources []string `json:"sources,omitempty"`
}

// Result is the result of the scan.
type Result struct {
	// Headers are filtered headers ordered by path.
	Headers []Header

	// Total is the number of unique headers before filtering.
	Total int

	// Records is the number of records scanned.
	Records int

	// Failures are errors of records that are skipped,
	// ordered by file.
	Failures []*RecordError
}

// Paths returns paths of headers.
func (r *Result) Paths() []string {
	paths := make([]string, 0, len(r.Headers))
	for _, h := range r.Headers {
		paths = append(paths, h.Path)
	}
	return paths
}

// Rel returns a copy of r with paths of headers and their sources
// made relative to base if they are under base, reordered by the new
// paths. It returns r if base is empty.
func (r *Result) Rel(base string) *Result {
	if base == "" {
		return r
	}
	base = filepath.Clean(base)
	nr := *r
	nr.Headers = make([]Header, 0, len(r.Headers))
	for _, h := range r.Headers {
		h.Path = relPath(base, h.Path)
		if h.Sources != nil {
			srcs := make([]string, 0, len(h.Sources))
			for _, src := range h.Sources {
				srcs = append(srcs, relPath(base, src))
			}
			slices.Sort(srcs)
			h.Sources = srcs
		}
		nr.Headers = append(nr.Headers, h)
	}
	sortHeaders(nr.Headers)
	return &nr
}

// RelPaths returns paths of headers, relative to base if the header is
// under base, in lexicographic order.
func (r *Result) RelPaths(base string) []string {
	return r.Rel(base).Paths()
}

func relPath(base, path string) string {
	if !under(path, base) {
		return path
	}
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return rel
}

func sortHeaders(headers []Header) {
	slices.SortFunc(headers, func(x, y Header) int {
		return strings.Compare(x.Path, y.Path)
	})
}

// Aggregator merges headers of translation units.
// It is safe for concurrent use.
type Aggregator struct {
	mu sync.Mutex
	// path -> sources
	headers map[string]map[string]bool
}

// NewAggregator returns a new aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		headers: make(map[string]map[string]bool),
	}
}

// Add adds deps to the set of headers.
func (a *Aggregator) Add(deps []HeaderDependency) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, dep := range deps {
		sources, ok := a.headers[dep.Path]
		if !ok {
			sources = make(map[string]bool)
			a.headers[dep.Path] = sources
		}
		sources[dep.Source] = true
	}
}

// Len returns the number of unique headers.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.headers)
}

// Result classifies all headers by c, and returns headers selected
// by filter, ordered by path.
func (a *Aggregator) Result(c *Classifier, filter Filter) *Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	r := &Result{
		Total: len(a.headers),
	}
	for path, sources := range a.headers {
		h := Header{
			Path:  path,
			Class: c.Classify(path),
		}
		if !filter.keep(h) {
			continue
		}
		for src := range sources {
			h.Sources = append(h.Sources, src)
		}
		slices.Sort(h.Sources)
		r.Headers = append(r.Headers, h)
	}
	sortHeaders(r.Headers)
	return r
}
