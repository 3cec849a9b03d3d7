// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package incdeps

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/cpuid/v2"
	"go.chromium.org/luci/common/flag/stringlistflag"
	"gopkg.in/yaml.v3"
)

// DefaultTimeout is the default per invocation timeout.
const DefaultTimeout = 60 * time.Second

// Config is a configuration of the scan.
type Config struct {
	// ExcludeSystemHeaders excludes System headers from the result.
	ExcludeSystemHeaders bool

	// HeadersOnly keeps only paths that look like headers.
	HeadersOnly bool

	// SystemRoots are path prefixes of system headers.
	SystemRoots []string

	// DetectSystemRoots adds default include search dirs of
	// compilers to SystemRoots.
	DetectSystemRoots bool

	// IsystemAsSystem adds -isystem, -imsvc, /external:I and sysroot
	// dirs of records to SystemRoots.
	IsystemAsSystem bool

	// Concurrency is the max number of concurrent invocations.
	Concurrency int

	// Timeout is per invocation timeout.
	Timeout time.Duration
}

// DefaultConfig returns the default config.
// It checks INCDEPS_LIMITS environment variable to override limits.
// INCDEPS_LIMITS is comma-separated <key>=<value> pair.
// e.g.
//
//	INCDEPS_LIMITS=j=8,timeout=2m
func DefaultConfig() Config {
	cfg := Config{
		DetectSystemRoots: true,
		Concurrency:       defaultConcurrency(),
		Timeout:           DefaultTimeout,
	}
	cfg.applyLimits(os.Getenv("INCDEPS_LIMITS"))
	return cfg
}

func defaultConcurrency() int {
	if n := cpuid.CPU.LogicalCores; n > 0 {
		return n
	}
	return runtime.NumCPU()
}

func (c *Config) applyLimits(overrides string) {
	if overrides == "" {
		return
	}
	for _, ov := range strings.Split(overrides, ",") {
		ov = strings.TrimSpace(ov)
		k, v, ok := strings.Cut(ov, "=")
		if !ok {
			log.Warnf("wrong INCDEPS_LIMITS value %q", ov)
			continue
		}
		switch k {
		case "j":
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				log.Warnf("wrong limits value for %s: %v", k, v)
				continue
			}
			c.Concurrency = n
		case "timeout":
			d, err := time.ParseDuration(v)
			if err != nil || d <= 0 {
				log.Warnf("wrong limits value for %s: %v", k, v)
				continue
			}
			c.Timeout = d
		default:
			log.Warnf("unknown limits name %q", k)
			continue
		}
		log.Infof("apply INCDEPS_LIMITS=%s", ov)
	}
}

// RegisterFlags registers flags for the config.
// Call it on the config returned by DefaultConfig to use defaults.
func (c *Config) RegisterFlags(flagSet *flag.FlagSet) {
	flagSet.BoolVar(&c.ExcludeSystemHeaders, "exclude_system_headers", c.ExcludeSystemHeaders, "exclude system headers")
	flagSet.BoolVar(&c.HeadersOnly, "headers", c.HeadersOnly, "print only header files (no extension, or extension starts with .h)")
	flagSet.Var((*stringlistflag.Flag)(&c.SystemRoots), "system_root", "system header root directory. can be specified multiple times")
	flagSet.BoolVar(&c.DetectSystemRoots, "detect_system_roots", c.DetectSystemRoots, "use default include search dirs of compilers as system roots")
	flagSet.BoolVar(&c.IsystemAsSystem, "isystem_as_system", c.IsystemAsSystem, "use -isystem dirs and sysroots of compile commands as system roots")
	flagSet.IntVar(&c.Concurrency, "j", c.Concurrency, "max number of concurrent compiler invocations")
	flagSet.DurationVar(&c.Timeout, "timeout", c.Timeout, "timeout of a compiler invocation")
}

// Filter returns the filter of the config.
func (c Config) Filter() Filter {
	return Filter{
		ExcludeSystem: c.ExcludeSystemHeaders,
		HeadersOnly:   c.HeadersOnly,
	}
}

// fileConfig is the yaml representation of Config.
// nil means not specified.
type fileConfig struct {
	ExcludeSystemHeaders *bool    `yaml:"exclude_system_headers"`
	Headers              *bool    `yaml:"headers"`
	SystemRoots          []string `yaml:"system_roots"`
	DetectSystemRoots    *bool    `yaml:"detect_system_roots"`
	IsystemAsSystem      *bool    `yaml:"isystem_as_system"`
	Concurrency          *int     `yaml:"concurrency"`
	Timeout              *string  `yaml:"timeout"`
}

// LoadFile loads yaml config file fname into c.
// Values of flags explicitly set in flagSet take precedence over the
// file. flagSet may be nil.
func (c *Config) LoadFile(fname string, flagSet *flag.FlagSet) error {
	buf, err := os.ReadFile(fname)
	if err != nil {
		return err
	}
	return c.applyFile(buf, flagSet)
}

func (c *Config) applyFile(buf []byte, flagSet *flag.FlagSet) error {
	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(buf))
	dec.KnownFields(true)
	err := dec.Decode(&fc)
	// empty file is io.EOF.
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	set := make(map[string]bool)
	if flagSet != nil {
		flagSet.Visit(func(f *flag.Flag) {
			set[f.Name] = true
		})
	}
	if fc.ExcludeSystemHeaders != nil && !set["exclude_system_headers"] {
		c.ExcludeSystemHeaders = *fc.ExcludeSystemHeaders
	}
	if fc.Headers != nil && !set["headers"] {
		c.HeadersOnly = *fc.Headers
	}
	if len(fc.SystemRoots) > 0 && !set["system_root"] {
		c.SystemRoots = fc.SystemRoots
	}
	if fc.DetectSystemRoots != nil && !set["detect_system_roots"] {
		c.DetectSystemRoots = *fc.DetectSystemRoots
	}
	if fc.IsystemAsSystem != nil && !set["isystem_as_system"] {
		c.IsystemAsSystem = *fc.IsystemAsSystem
	}
	if fc.Concurrency != nil && !set["j"] {
		if *fc.Concurrency <= 0 {
			return fmt.Errorf("wrong concurrency in config: %d", *fc.Concurrency)
		}
		c.Concurrency = *fc.Concurrency
	}
	if fc.Timeout != nil && !set["timeout"] {
		d, err := time.ParseDuration(*fc.Timeout)
		if err != nil {
			return fmt.Errorf("wrong timeout in config: %w", err)
		}
		c.Timeout = d
	}
	return nil
}
