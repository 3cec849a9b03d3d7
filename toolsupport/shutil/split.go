// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package shutil

import (
	"fmt"
	"strings"
)

// Split splits a command line in POSIX shell syntax.
// It supports single quotes, double quotes and backslash escapes.
// It would return error for complicated pipe line or shell expansion.
func Split(cmdline string) ([]string, error) {
	var args []string
	var sb strings.Builder
	inword := false
	for i := 0; i < len(cmdline); i++ {
		ch := cmdline[i]
		switch ch {
		case ' ', '\t', '\n', '\r':
			if inword {
				args = append(args, sb.String())
				sb.Reset()
				inword = false
			}
		case '\\':
			i++
			if i >= len(cmdline) {
				return nil, fmt.Errorf("failed to split: trailing backslash")
			}
			if cmdline[i] != '\n' {
				sb.WriteByte(cmdline[i])
				inword = true
			}
		case '\'':
			j := strings.IndexByte(cmdline[i+1:], '\'')
			if j < 0 {
				return nil, fmt.Errorf("failed to split: unterminated single quote at %d", i)
			}
			sb.WriteString(cmdline[i+1 : i+1+j])
			i += j + 1
			inword = true
		case '"':
			n, err := doubleQuoted(&sb, cmdline[i+1:])
			if err != nil {
				return nil, fmt.Errorf("failed to split: %w at %d", err, i)
			}
			i += n + 1
			inword = true
		case '#':
			if !inword {
				return nil, fmt.Errorf("failed to split: cmdline contains comment")
			}
			sb.WriteByte(ch)
		case ';', '&', '|', '<', '>', '$', '`', '(', ')':
			return nil, fmt.Errorf("failed to split: cmdline contains shell metachar %c", ch)
		default:
			sb.WriteByte(ch)
			inword = true
		}
	}
	if inword {
		args = append(args, sb.String())
	}
	if len(args) >= 1 && strings.Contains(args[0], "=") {
		// if initial args contains =, it would set env var and need to invoke via sh
		return nil, fmt.Errorf("argv[0] is env set %q", args[0])
	}
	return args, nil
}

// doubleQuoted writes contents of double quoted string s to sb,
// and returns length of s consumed, including closing quote.
func doubleQuoted(sb *strings.Builder, s string) (int, error) {
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; ch {
		case '"':
			return i + 1, nil
		case '\\':
			if i+1 < len(s) {
				switch s[i+1] {
				case '"', '\\', '$', '`':
					i++
					sb.WriteByte(s[i])
					continue
				case '\n':
					i++
					continue
				}
			}
			sb.WriteByte(ch)
		case '$', '`':
			return 0, fmt.Errorf("shell expansion %c in double quote", ch)
		default:
			sb.WriteByte(ch)
		}
	}
	return 0, fmt.Errorf("unterminated double quote")
}
