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

package sortrunner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cardinalhq/nitronav/internal/record"
	"github.com/cardinalhq/nitronav/internal/sorting"
)

// Comparison holds one run per algorithm over the same input.
type Comparison struct {
	Key  record.SortKey
	Runs []*Result
}

// Compare runs every algorithm over its own copy of records, in
// sorting.Algorithms order, so each run starts from the caller's ordering.
func (r *Runner) Compare(ctx context.Context, records []record.Record, key record.SortKey) (*Comparison, error) {
	if !key.Valid() {
		return nil, fmt.Errorf("%w: %s", record.ErrUnknownSortKey, key)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("compare by %s: %w", key, ErrEmptyInput)
	}

	var stats *Stats
	if r.stats {
		var err error
		if stats, err = ComputeStats(records); err != nil {
			return nil, err
		}
	}

	cmp := &Comparison{Key: key}
	for _, alg := range sorting.Algorithms {
		sorter, err := sorting.New(alg, key)
		if err != nil {
			return nil, err
		}
		res, err := r.run(ctx, records, sorter, stats)
		if err != nil {
			return nil, fmt.Errorf("%s run: %w", alg, err)
		}
		cmp.Runs = append(cmp.Runs, res)
	}

	fastest := cmp.Fastest()
	r.logger.Info("Comparison complete",
		slog.String("key", key.String()),
		slog.String("fastest", fastest.Algorithm.String()),
		slog.Float64("speedup", cmp.Speedup()))
	return cmp, nil
}

// Fastest returns the run with the smallest elapsed time. Ties go to the
// earlier run.
func (c *Comparison) Fastest() *Result {
	var best *Result
	for _, res := range c.Runs {
		if best == nil || res.Elapsed < best.Elapsed {
			best = res
		}
	}
	return best
}

// Slowest returns the run with the largest elapsed time.
func (c *Comparison) Slowest() *Result {
	var worst *Result
	for _, res := range c.Runs {
		if worst == nil || res.Elapsed > worst.Elapsed {
			worst = res
		}
	}
	return worst
}

// Speedup is the slowest elapsed time divided by the fastest. It is 0 when
// the fastest run took no measurable time.
func (c *Comparison) Speedup() float64 {
	fast, slow := c.Fastest(), c.Slowest()
	if fast == nil || fast.Elapsed <= 0 {
		return 0
	}
	return float64(slow.Elapsed) / float64(fast.Elapsed)
}
