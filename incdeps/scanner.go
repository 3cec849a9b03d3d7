// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package incdeps

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"go.chromium.org/infra/build/incdeps/compiledb"
	"go.chromium.org/infra/build/incdeps/sync/semaphore"
	"go.chromium.org/infra/build/incdeps/ui"
)

// progressInterval is the interval to update progress.
const progressInterval = 500 * time.Millisecond

// Scanner scans header dependencies of compile records.
type Scanner struct {
	cfg     Config
	invoker Invoker
	parser  *Parser
	sema    *semaphore.Semaphore

	started   atomic.Int64
	done      atomic.Int64
	numFailed atomic.Int64
}

// New returns a new scanner with cfg and invoker.
// If invoker is nil, it uses LocalInvoker with cfg.Timeout.
func New(cfg Config, invoker Invoker) *Scanner {
	if invoker == nil {
		invoker = &LocalInvoker{Timeout: cfg.Timeout}
	}
	return &Scanner{
		cfg:     cfg,
		invoker: invoker,
		parser:  NewParser(0),
		sema:    semaphore.New("scan", cfg.Concurrency),
	}
}

// Scan scans records and returns the aggregated headers.
// Failures of records are reported in Result.Failures.
// It returns error wrapping ErrNoUsableRecords if no record is
// successfully scanned, or ctx's error if ctx is canceled.
// No partial result is returned on error.
func (s *Scanner) Scan(ctx context.Context, records []compiledb.Record) (*Result, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty compile database", ErrNoUsableRecords)
	}
	roots, err := SystemRoots(ctx, s.cfg, records)
	if err != nil {
		return nil, err
	}
	log.Infof("system roots: %q", roots)
	classifier := NewClassifier(roots)

	s.started.Store(0)
	s.done.Store(0)
	s.numFailed.Store(0)
	agg := NewAggregator()
	var mu sync.Mutex
	var failures []*RecordError

	stopProgress := s.progress(ctx, len(records))
	defer stopProgress()

	eg, ctx := errgroup.WithContext(ctx)
	// Go blocks while Concurrency records are in flight.
	eg.SetLimit(max(s.cfg.Concurrency, 1))
	for _, rec := range records {
		if ctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			return s.sema.Do(ctx, func(ctx context.Context) error {
				s.started.Add(1)
				defer s.done.Add(1)
				deps, err := s.scanRecord(ctx, rec)
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					rerr := asRecordError(rec, err)
					log.Warnf("skip %s: %v", rec.File, rerr.Err)
					if rerr.Diagnostic != "" {
						log.Debugf("%s: %s", rec.File, rerr.Diagnostic)
					}
					s.numFailed.Add(1)
					mu.Lock()
					failures = append(failures, rerr)
					mu.Unlock()
					return nil
				}
				agg.Add(deps)
				return nil
			})
		})
	}
	err = eg.Wait()
	stopProgress()
	log.Debugf("%s", s.sema)
	if err != nil {
		return nil, err
	}
	ok := len(records) - len(failures)
	if ok == 0 {
		return nil, fmt.Errorf("%w: all %d records failed: %w", ErrNoUsableRecords, len(records), failures[0])
	}
	r := agg.Result(classifier, s.cfg.Filter())
	r.Records = len(records)
	slices.SortFunc(failures, func(x, y *RecordError) int {
		if c := strings.Compare(x.Directory, y.Directory); c != 0 {
			return c
		}
		return strings.Compare(x.File, y.File)
	})
	r.Failures = failures
	log.Infof("scanned %d records: %d headers (total %d), %d failures", r.Records, len(r.Headers), r.Total, len(r.Failures))
	return r, nil
}

func (s *Scanner) scanRecord(ctx context.Context, rec compiledb.Record) ([]HeaderDependency, error) {
	raw, err := s.invoker.Invoke(ctx, rec)
	if err != nil {
		return nil, err
	}
	deps, err := s.parser.Parse(rec, raw)
	if err != nil {
		return nil, err
	}
	log.Debugf("%s: %d headers", rec.File, len(deps))
	return deps, nil
}

func asRecordError(rec compiledb.Record, err error) *RecordError {
	var rerr *RecordError
	if errors.As(err, &rerr) {
		return rerr
	}
	return recordError(rec, err, nil)
}

// progress shows progress of the scan until the returned func is called.
func (s *Scanner) progress(ctx context.Context, total int) func() {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				ui.Default.Progress("")
				return
			case <-ticker.C:
				ui.Default.Progress(fmt.Sprintf("scanning %d/%d running:%d failed:%d",
					s.done.Load(), total, s.started.Load()-s.done.Load(), s.numFailed.Load()))
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			wg.Wait()
		})
	}
}
