// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package makeutil provides utilities for make.
package makeutil

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is returned when deps contents is not a list of `<target>: <input>...` rules.
var ErrMalformed = errors.New("malformed deps")

// ParseDeps parses deps and returns a list of inputs of all rules.
func ParseDeps(b []byte) ([]string, error) {
	// deps contents
	//  <output>: <input> ...
	//  <input>:
	// <input> is space separated
	// '\'+newline is space
	// '\'+space is escaped space (not separator)
	// '$$' is '$'
	// empty rules (`-MP` phony targets) have no inputs.
	sc := &scanner{s: b}
	var inputs, targets []string
	inRule := false
	nrules := 0
	for !sc.done() {
		token, sep, eol := sc.next()
		switch {
		case sep:
			if inRule {
				return nil, fmt.Errorf("unexpected ':' after %q in rule of %q: %w", token, targets, ErrMalformed)
			}
			if token != "" {
				targets = append(targets, token)
			}
			if len(targets) == 0 {
				return nil, fmt.Errorf("rule without target: %w", ErrMalformed)
			}
			inRule = true
			nrules++
		case token == "" || token == "|":
			// order-only separator is not used by compilers,
			// but treat it as normal input separator.
		case inRule:
			inputs = append(inputs, token)
		default:
			targets = append(targets, token)
		}
		if eol {
			if !inRule && len(targets) > 0 {
				return nil, fmt.Errorf("missing ':' after %q: %w", targets, ErrMalformed)
			}
			inRule = false
			targets = targets[:0]
		}
	}
	if !inRule && len(targets) > 0 {
		return nil, fmt.Errorf("missing ':' after %q: %w", targets, ErrMalformed)
	}
	if nrules == 0 {
		return nil, fmt.Errorf("no rule: %w", ErrMalformed)
	}
	return inputs, nil
}

type scanner struct {
	s []byte
}

func (sc *scanner) done() bool {
	return len(sc.s) == 0
}

func isSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

// next returns next token.
// sep is true if the token is terminated by rule separator ':'.
// eol is true if the token is at the end of logical line.
func (sc *scanner) next() (token string, sep, eol bool) {
	s := sc.s
	// skip spaces and line continuations.
	i := 0
skipSpaces:
	for i < len(s) {
		switch {
		case s[i] == '\\' && i+1 < len(s) && s[i+1] == '\n':
			i += 2
		case s[i] == '\\' && i+2 < len(s) && s[i+1] == '\r' && s[i+2] == '\n':
			i += 3
		case s[i] == ' ', s[i] == '\t', s[i] == '\r':
			i++
		case s[i] == '\n':
			sc.s = s[i+1:]
			return "", false, true
		default:
			break skipSpaces
		}
	}
	s = s[i:]
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; ch {
		case '\\':
			if i+1 < len(s) {
				switch s[i+1] {
				case ' ', '#':
					i++
					sb.WriteByte(s[i])
					continue
				case '\n':
					sc.s = s[i+2:]
					return sb.String(), false, false
				case '\r':
					if i+2 < len(s) && s[i+2] == '\n' {
						sc.s = s[i+3:]
						return sb.String(), false, false
					}
				}
			}
			// keep backslash for windows path.
			sb.WriteByte(ch)
		case '$':
			if i+1 < len(s) && s[i+1] == '$' {
				i++
			}
			sb.WriteByte(ch)
		case ':':
			// drive letter "C:\" or "C:/" is not a separator.
			if i+1 == len(s) || isSpace(s[i+1]) {
				sc.s = s[i+1:]
				return sb.String(), true, i+1 == len(s)
			}
			sb.WriteByte(ch)
		case ' ', '\t', '\r':
			sc.s = s[i+1:]
			return sb.String(), false, false
		case '\n':
			sc.s = s[i+1:]
			return sb.String(), false, true
		default:
			sb.WriteByte(ch)
		}
	}
	sc.s = nil
	return sb.String(), false, true
}
