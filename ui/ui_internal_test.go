// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import "testing"

func TestElideMiddle(t *testing.T) {
	for _, tc := range []struct {
		msg   string
		width int
		want  string
	}{
		{
			msg:   "scanning a.cpp",
			width: 80,
			want:  "scanning a.cpp",
		},
		{
			msg:   "scanning third_party/abseil-cpp/absl/strings/str_cat.cc",
			width: 24,
			want:  "scanning t...str_cat.cc",
		},
		{
			msg:   "scanning a.cpp",
			width: 0,
			want:  "scanning a.cpp",
		},
	} {
		got := elideMiddle(tc.msg, tc.width)
		if got != tc.want {
			t.Errorf("elideMiddle(%q, %d)=%q; want %q", tc.msg, tc.width, got, tc.want)
		}
	}
}
