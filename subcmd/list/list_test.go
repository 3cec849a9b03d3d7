// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package list

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/incdeps/incdeps"
)

func testResult() *incdeps.Result {
	return &incdeps.Result{
		Headers: []incdeps.Header{
			{Path: "/proj/lib/x.h", Class: incdeps.Project, Sources: []string{"/proj/a.cpp", "/proj/b.cpp"}},
			{Path: "/proj/lib/y.h", Class: incdeps.Project, Sources: []string{"/proj/b.cpp"}},
			{Path: "/usr/include/stdio.h", Class: incdeps.System, Sources: []string{"/proj/a.cpp"}},
		},
		Total:   3,
		Records: 3,
		Failures: []*incdeps.RecordError{
			{
				File:       "c.cpp",
				Directory:  "/proj",
				Err:        fmt.Errorf("%w: exit=1", incdeps.ErrInvocationFailed),
				Diagnostic: "c.cpp:1:10: fatal error: 'z.h' file not found\n",
			},
		},
	}
}

func TestWriteText(t *testing.T) {
	for _, tc := range []struct {
		name    string
		base    string
		sources bool
		want    string
	}{
		{
			name: "abs",
			want: "/proj/lib/x.h\n/proj/lib/y.h\n/usr/include/stdio.h\n",
		},
		{
			name: "rel",
			base: "/proj",
			want: "/usr/include/stdio.h\nlib/x.h\nlib/y.h\n",
		},
		{
			name:    "sources",
			base:    "/proj",
			sources: true,
			want: `/usr/include/stdio.h
  a.cpp
lib/x.h
  a.cpp
  b.cpp
lib/y.h
  b.cpp
`,
		},
		{
			name:    "sources-abs",
			sources: true,
			want: `/proj/lib/x.h
  /proj/a.cpp
  /proj/b.cpp
/proj/lib/y.h
  /proj/b.cpp
/usr/include/stdio.h
  /proj/a.cpp
`,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := writeText(&buf, testResult(), tc.base, tc.sources)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.want, buf.String()); diff != "" {
				t.Errorf("writeText diff -want +got:\n%s", diff)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	err := writeJSON(&buf, testResult(), "/proj")
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	err = json.Unmarshal(buf.Bytes(), &got)
	if err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	want := map[string]any{
		"headers": []any{
			map[string]any{"path": "/usr/include/stdio.h", "class": "system", "sources": []any{"a.cpp"}},
			map[string]any{"path": "lib/x.h", "class": "project", "sources": []any{"a.cpp", "b.cpp"}},
			map[string]any{"path": "lib/y.h", "class": "project", "sources": []any{"b.cpp"}},
		},
		"total":   3.0,
		"records": 3.0,
		"failures": []any{
			map[string]any{
				"file":       "c.cpp",
				"directory":  "/proj",
				"kind":       "invocation failed",
				"error":      "invocation failed: exit=1",
				"diagnostic": "c.cpp:1:10: fatal error: 'z.h' file not found\n",
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("writeJSON diff -want +got:\n%s", diff)
	}
}

func TestRun_badArgs(t *testing.T) {
	c := &run{}
	c.init()
	err := c.run(t.Context(), []string{"a.json", "b.json"})
	if !errors.Is(err, flag.ErrHelp) {
		t.Errorf("run(ctx, 2 args)=%v; want %v", err, flag.ErrHelp)
	}
}
