// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package incdeps

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func deps(source string, paths ...string) []HeaderDependency {
	var ds []HeaderDependency
	for _, p := range paths {
		ds = append(ds, HeaderDependency{Path: p, Source: source})
	}
	return ds
}

func TestAggregator_union(t *testing.T) {
	agg := NewAggregator()
	agg.Add(deps("/p/1.cc", "/p/A.h", "/p/B.h"))
	agg.Add(deps("/p/2.cc", "/p/B.h", "/p/C.h"))

	r := agg.Result(NewClassifier(nil), Filter{})
	want := []Header{
		{Path: "/p/A.h", Class: Project, Sources: []string{"/p/1.cc"}},
		{Path: "/p/B.h", Class: Project, Sources: []string{"/p/1.cc", "/p/2.cc"}},
		{Path: "/p/C.h", Class: Project, Sources: []string{"/p/2.cc"}},
	}
	if diff := cmp.Diff(want, r.Headers); diff != "" {
		t.Errorf("Result().Headers diff -want +got:\n%s", diff)
	}
	if r.Total != 3 {
		t.Errorf("Result().Total=%d; want 3", r.Total)
	}
}

func TestAggregator_filter(t *testing.T) {
	agg := NewAggregator()
	agg.Add(deps("/p/a.cc",
		"/usr/include/stdio.h",
		"/usr/include/c++/13/vector",
		"/p/lib/x.h",
		"/p/lib/x.hpp",
		"/p/lib/table.inc",
		"/p/lib/string",
	))
	c := NewClassifier([]string{"/usr/include"})
	for _, tc := range []struct {
		name   string
		filter Filter
		want   []string
	}{
		{
			name: "none",
			want: []string{
				"/p/lib/string",
				"/p/lib/table.inc",
				"/p/lib/x.h",
				"/p/lib/x.hpp",
				"/usr/include/c++/13/vector",
				"/usr/include/stdio.h",
			},
		},
		{
			name:   "exclude-system",
			filter: Filter{ExcludeSystem: true},
			want: []string{
				"/p/lib/string",
				"/p/lib/table.inc",
				"/p/lib/x.h",
				"/p/lib/x.hpp",
			},
		},
		{
			name:   "headers-only",
			filter: Filter{HeadersOnly: true},
			want: []string{
				"/p/lib/string",
				"/p/lib/x.h",
				"/p/lib/x.hpp",
				"/usr/include/c++/13/vector",
				"/usr/include/stdio.h",
			},
		},
		{
			name:   "both",
			filter: Filter{ExcludeSystem: true, HeadersOnly: true},
			want: []string{
				"/p/lib/string",
				"/p/lib/x.h",
				"/p/lib/x.hpp",
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := agg.Result(c, tc.filter)
			if diff := cmp.Diff(tc.want, r.Paths()); diff != "" {
				t.Errorf("Result(%+v).Paths() diff -want +got:\n%s", tc.filter, diff)
			}
			// total is counted before filtering.
			if r.Total != 6 {
				t.Errorf("Result(%+v).Total=%d; want 6", tc.filter, r.Total)
			}
		})
	}
}

func TestAggregator_concurrent(t *testing.T) {
	agg := NewAggregator()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			agg.Add(deps(fmt.Sprintf("/p/%d.cc", i), "/p/common.h", fmt.Sprintf("/p/%d.h", i%10)))
		}()
	}
	wg.Wait()
	if got, want := agg.Len(), 11; got != want {
		t.Errorf("Len()=%d; want %d", got, want)
	}
	r := agg.Result(NewClassifier(nil), Filter{})
	if got := len(r.Headers[len(r.Headers)-1].Sources); r.Headers[len(r.Headers)-1].Path != "/p/common.h" || got != 50 {
		t.Errorf("last header=%q with %d sources; want %q with 50 sources", r.Headers[len(r.Headers)-1].Path, got, "/p/common.h")
	}
}

func TestResult_relPaths(t *testing.T) {
	r := &Result{
		Headers: []Header{
			{Path: "/proj/lib/x.h"},
			{Path: "/proj/lib/y.h"},
			{Path: "/proj2/a.h"},
			{Path: "/usr/include/stdio.h"},
		},
	}
	got := r.RelPaths("/proj")
	want := []string{
		"/proj2/a.h",
		"/usr/include/stdio.h",
		"lib/x.h",
		"lib/y.h",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RelPaths diff -want +got:\n%s", diff)
	}
}

func TestResult_rel(t *testing.T) {
	r := &Result{
		Headers: []Header{
			{Path: "/proj/lib/x.h", Class: Project, Sources: []string{"/proj/z.cc", "/a/b.cc"}},
			{Path: "/proj2/a.h", Class: Project, Sources: []string{"/proj/a.cc"}},
			{Path: "/usr/include/stdio.h", Class: System},
		},
		Total:   4,
		Records: 2,
	}
	got := r.Rel("/proj/")
	want := &Result{
		Headers: []Header{
			{Path: "/proj2/a.h", Class: Project, Sources: []string{"a.cc"}},
			{Path: "/usr/include/stdio.h", Class: System},
			{Path: "lib/x.h", Class: Project, Sources: []string{"/a/b.cc", "z.cc"}},
		},
		Total:   4,
		Records: 2,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Rel diff -want +got:\n%s", diff)
	}
	if r.Headers[0].Path != "/proj/lib/x.h" {
		t.Errorf("Rel modified receiver: %q", r.Headers[0].Path)
	}
	if r.Rel("") != r {
		t.Errorf("Rel(%q) should return the receiver", "")
	}
}

func TestRelPath(t *testing.T) {
	for _, tc := range []struct {
		base, path string
		want       string
	}{
		{base: "/proj", path: "/proj/lib/a.h", want: "lib/a.h"},
		{base: "/proj", path: "/proj2/a.h", want: "/proj2/a.h"},
		{base: "/proj/out", path: "/proj/a.h", want: "/proj/a.h"},
		{base: "/proj", path: "/proj", want: "."},
	} {
		got := relPath(tc.base, tc.path)
		if got != tc.want {
			t.Errorf("relPath(%q, %q)=%q; want %q", tc.base, tc.path, got, tc.want)
		}
	}
}
