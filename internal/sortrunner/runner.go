// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package sortrunner runs the sorters against ingested records, timing each
// run and summarizing its output. It is the only caller of package sorting
// that deals with clocks, logging or telemetry.
package sortrunner

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/cardinalhq/nitronav/internal/idgen"
	"github.com/cardinalhq/nitronav/internal/record"
	"github.com/cardinalhq/nitronav/internal/sorting"
)

// Result is the outcome of one sort run.
type Result struct {
	RunID     string
	Algorithm sorting.Algorithm
	Key       record.SortKey
	// Records holds the sorted copy; the input slice is left as it was.
	Records []record.Record
	// Elapsed covers the sort call only.
	Elapsed time.Duration
	Summary Summary
	// Stats is nil when the runner was built with WithStats(false).
	Stats *Stats
}

// Runner sorts copies of its input and reports timing and summaries.
// A Runner holds no per-run state and may be reused.
type Runner struct {
	now    func() time.Time
	ids    idgen.IDGenerator
	logger *slog.Logger
	verify bool
	stats  bool
}

type Option func(*Runner)

// WithClock replaces time.Now for both run ids and elapsed time.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

func WithIDGenerator(g idgen.IDGenerator) Option {
	return func(r *Runner) { r.ids = g }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithVerify checks every run's output is ordered by its key and is a
// permutation of the input.
func WithVerify(verify bool) Option {
	return func(r *Runner) { r.verify = verify }
}

// WithStats toggles computing Stats for each run. Enabled by default.
func WithStats(stats bool) Option {
	return func(r *Runner) { r.stats = stats }
}

func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		now:    time.Now,
		ids:    idgen.NewULIDGenerator(),
		logger: slog.Default(),
		stats:  true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run sorts a copy of records with alg by key.
// It returns ErrEmptyInput, without sorting, when records is empty.
func (r *Runner) Run(ctx context.Context, records []record.Record, alg sorting.Algorithm, key record.SortKey) (*Result, error) {
	sorter, err := sorting.New(alg, key)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s sort by %s: %w", alg, key, ErrEmptyInput)
	}

	var stats *Stats
	if r.stats {
		if stats, err = ComputeStats(records); err != nil {
			return nil, err
		}
	}
	return r.run(ctx, records, sorter, stats)
}

func (r *Runner) run(ctx context.Context, records []record.Record, sorter sorting.Sorter, stats *Stats) (*Result, error) {
	alg, key := sorter.Algorithm(), sorter.Key()
	attrs := []attribute.KeyValue{
		attribute.String("algorithm", alg.String()),
		attribute.String("key", key.String()),
	}

	ctx, span := tracer.Start(ctx, "sortrunner.Run", trace.WithAttributes(attrs...))
	defer span.End()

	runID := r.ids.Make(r.now())
	span.SetAttributes(attribute.String("run_id", runID), attribute.Int("records", len(records)))

	sorted := slices.Clone(records)

	start := r.now()
	sorter.Sort(sorted)
	elapsed := r.now().Sub(start)

	sortDurationHistogram.Record(ctx, elapsed.Seconds(), otelmetric.WithAttributes(attrs...))
	recordsSortedCounter.Add(ctx, int64(len(sorted)), otelmetric.WithAttributes(attrs...))

	if r.verify {
		if err := verify(records, sorted, sorter); err != nil {
			verifyFailedCounter.Add(ctx, 1, otelmetric.WithAttributes(attrs...))
			span.RecordError(err)
			span.SetStatus(codes.Error, "verification failed")
			return nil, err
		}
	}

	summary, err := Summarize(sorted)
	if err != nil {
		return nil, err
	}

	r.logger.Info("Sort complete",
		slog.String("runID", runID),
		slog.String("algorithm", alg.String()),
		slog.String("key", key.String()),
		slog.Int("records", len(sorted)),
		slog.Duration("elapsed", elapsed))

	return &Result{
		RunID:     runID,
		Algorithm: alg,
		Key:       key,
		Records:   sorted,
		Elapsed:   elapsed,
		Summary:   summary,
		Stats:     stats,
	}, nil
}

func verify(input, sorted []record.Record, sorter sorting.Sorter) error {
	fail := func(format string, args ...any) error {
		return &VerificationError{
			Algorithm: sorter.Algorithm(),
			Key:       sorter.Key(),
			Reason:    fmt.Sprintf(format, args...),
		}
	}
	if len(input) != len(sorted) {
		return fail("record count changed from %d to %d", len(input), len(sorted))
	}
	if !sorting.IsSorted(sorted, sorter.Key()) {
		return fail("output is not in non-decreasing %s order", sorter.Key())
	}
	if record.Fingerprint(input) != record.Fingerprint(sorted) {
		return fail("output is not a permutation of the input")
	}
	return nil
}
