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
	"errors"
	"io"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/nitronav/internal/record"
	"github.com/cardinalhq/nitronav/internal/sorting"
)

// fakeClock advances by deltas[i] on the i-th call and then stays put.
type fakeClock struct {
	t      time.Time
	deltas []time.Duration
	calls  int
}

func (c *fakeClock) now() time.Time {
	if c.calls < len(c.deltas) {
		c.t = c.t.Add(c.deltas[c.calls])
	}
	c.calls++
	return c.t
}

func newTestRunner(clock *fakeClock, opts ...Option) *Runner {
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	if clock != nil {
		base = append(base, WithClock(clock.now))
	}
	return NewRunner(append(base, opts...)...)
}

func scenario() []record.Record {
	return []record.Record{
		record.New("A", 202301, 1.5),
		record.New("B", 202212, 3.2),
		record.New("C", 202301, 0.9),
	}
}

func siteIDs(records []record.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.SiteID()
	}
	return out
}

func TestRunScenario(t *testing.T) {
	tests := []struct {
		name      string
		alg       sorting.Algorithm
		key       record.SortKey
		wantOrder []string
	}{
		{"merge by nitrogen", sorting.Merge, record.ByNitrogen, []string{"C", "A", "B"}},
		{"shell by nitrogen", sorting.Shell, record.ByNitrogen, []string{"C", "A", "B"}},
		{"merge by year", sorting.Merge, record.ByYearMonth, []string{"B", "A", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{
				t:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				deltas: []time.Duration{0, 0, 5 * time.Millisecond},
			}
			r := newTestRunner(clock, WithVerify(true))

			input := scenario()
			res, err := r.Run(context.Background(), input, tt.alg, tt.key)
			require.NoError(t, err)

			assert.Equal(t, scenario(), input, "input must not be reordered")
			assert.Equal(t, tt.wantOrder, siteIDs(res.Records))
			assert.Equal(t, tt.alg, res.Algorithm)
			assert.Equal(t, tt.key, res.Key)
			assert.Equal(t, 5*time.Millisecond, res.Elapsed)
			assert.Len(t, res.RunID, 26)

			assert.Equal(t, 3, res.Summary.Count)
			assert.Equal(t, tt.wantOrder[0], res.Summary.First.SiteID())
			assert.Equal(t, tt.wantOrder[2], res.Summary.Last.SiteID())
		})
	}
}

func TestRunShellByYearEnds(t *testing.T) {
	r := newTestRunner(nil)
	res, err := r.Run(context.Background(), scenario(), sorting.Shell, record.ByYearMonth)
	require.NoError(t, err)

	assert.Equal(t, "B", res.Summary.First.SiteID())
	assert.Equal(t, record.YearMonth(202301), res.Summary.Last.YearMonth())
	assert.ElementsMatch(t, []string{"A", "C"}, siteIDs(res.Records[1:]))
}

func TestRunEmptyInput(t *testing.T) {
	r := newTestRunner(nil)
	for _, alg := range sorting.Algorithms {
		for _, in := range [][]record.Record{nil, {}} {
			res, err := r.Run(context.Background(), in, alg, record.ByNitrogen)
			assert.Nil(t, res)
			require.ErrorIs(t, err, ErrEmptyInput)

			var empty EmptyInputError
			assert.True(t, errors.As(err, &empty))
		}
	}
}

func TestRunSingleRecord(t *testing.T) {
	r := newTestRunner(nil)
	in := []record.Record{record.New("A", 202301, 1.5)}
	res, err := r.Run(context.Background(), in, sorting.Shell, record.ByNitrogen)
	require.NoError(t, err)
	assert.Equal(t, in, res.Records)
	assert.Equal(t, res.Summary.First, res.Summary.Last)
	assert.Equal(t, 1, res.Summary.Count)
}

func TestRunInvalidSelection(t *testing.T) {
	r := newTestRunner(nil)

	_, err := r.Run(context.Background(), scenario(), sorting.Algorithm(0), record.ByNitrogen)
	assert.ErrorIs(t, err, sorting.ErrUnknownAlgorithm)

	_, err = r.Run(context.Background(), scenario(), sorting.Merge, record.SortKey(0))
	assert.ErrorIs(t, err, record.ErrUnknownSortKey)

	_, err = r.Compare(context.Background(), scenario(), record.SortKey(3))
	assert.ErrorIs(t, err, record.ErrUnknownSortKey)
}

func TestRunStats(t *testing.T) {
	r := newTestRunner(nil)
	res, err := r.Run(context.Background(), scenario(), sorting.Merge, record.ByNitrogen)
	require.NoError(t, err)
	require.NotNil(t, res.Stats)

	assert.Equal(t, 3, res.Stats.DistinctSites)
	assert.Equal(t, record.YearMonth(202212), res.Stats.EarliestMonth)
	assert.Equal(t, record.YearMonth(202301), res.Stats.LatestMonth)
	assert.Equal(t, 0.9, res.Stats.NitrogenMin)
	assert.Equal(t, 3.2, res.Stats.NitrogenMax)

	r = newTestRunner(nil, WithStats(false))
	res, err = r.Run(context.Background(), scenario(), sorting.Merge, record.ByNitrogen)
	require.NoError(t, err)
	assert.Nil(t, res.Stats)
}

func TestRunUsesIDGenerator(t *testing.T) {
	r := newTestRunner(nil, WithIDGenerator(staticIDs("run-1")))
	res, err := r.Run(context.Background(), scenario(), sorting.Merge, record.ByNitrogen)
	require.NoError(t, err)
	assert.Equal(t, "run-1", res.RunID)
}

type staticIDs string

func (s staticIDs) Make(time.Time) string { return string(s) }

func TestCompare(t *testing.T) {
	clock := &fakeClock{
		t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		// merge: id, start, end (+3ms); shell: id, start, end (+1ms)
		deltas: []time.Duration{0, 0, 3 * time.Millisecond, 0, 0, time.Millisecond},
	}
	r := newTestRunner(clock, WithVerify(true))

	input := scenario()
	cmp, err := r.Compare(context.Background(), input, record.ByNitrogen)
	require.NoError(t, err)

	assert.Equal(t, scenario(), input)
	require.Len(t, cmp.Runs, 2)
	assert.Equal(t, sorting.Merge, cmp.Runs[0].Algorithm)
	assert.Equal(t, sorting.Shell, cmp.Runs[1].Algorithm)
	assert.NotEqual(t, cmp.Runs[0].RunID, cmp.Runs[1].RunID)

	for _, run := range cmp.Runs {
		assert.Equal(t, []string{"C", "A", "B"}, siteIDs(run.Records))
		assert.Same(t, cmp.Runs[0].Stats, run.Stats)
	}

	assert.Equal(t, 3*time.Millisecond, cmp.Runs[0].Elapsed)
	assert.Equal(t, time.Millisecond, cmp.Runs[1].Elapsed)
	assert.Equal(t, sorting.Shell, cmp.Fastest().Algorithm)
	assert.Equal(t, sorting.Merge, cmp.Slowest().Algorithm)
	assert.InDelta(t, 3.0, cmp.Speedup(), 1e-9)
}

func TestCompareRunsAreIndependent(t *testing.T) {
	input := make([]record.Record, 200)
	for i := range input {
		input[i] = record.New(strconv.Itoa(i), record.YearMonth(202001+i%12), float64((i*37)%101)/10)
	}
	orig := slices.Clone(input)

	r := newTestRunner(nil)
	cmp, err := r.Compare(context.Background(), input, record.ByYearMonth)
	require.NoError(t, err)

	assert.Equal(t, orig, input)
	merge, shell := cmp.Runs[0].Records, cmp.Runs[1].Records
	assert.True(t, sorting.IsSorted(merge, record.ByYearMonth))
	assert.True(t, sorting.IsSorted(shell, record.ByYearMonth))
	assert.Equal(t, record.Fingerprint(orig), record.Fingerprint(merge))
	assert.Equal(t, record.Fingerprint(orig), record.Fingerprint(shell))

	// Stability only holds for merge: equal months keep input order.
	for i := 1; i < len(merge); i++ {
		if merge[i-1].YearMonth() == merge[i].YearMonth() {
			prev, _ := strconv.Atoi(merge[i-1].SiteID())
			cur, _ := strconv.Atoi(merge[i].SiteID())
			require.Less(t, prev, cur)
		}
	}
}

func TestCompareEmpty(t *testing.T) {
	r := newTestRunner(nil)
	cmp, err := r.Compare(context.Background(), nil, record.ByNitrogen)
	assert.Nil(t, cmp)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestSpeedupZeroElapsed(t *testing.T) {
	cmp := &Comparison{Runs: []*Result{{Algorithm: sorting.Merge}, {Algorithm: sorting.Shell}}}
	assert.Equal(t, sorting.Merge, cmp.Fastest().Algorithm)
	assert.Equal(t, 0.0, cmp.Speedup())
	assert.Equal(t, 0.0, (&Comparison{}).Speedup())
}

// reversingSorter produces output in the wrong order.
type reversingSorter struct{}

func (reversingSorter) Sort(records []record.Record) {
	slices.SortFunc(records, func(a, b record.Record) int { return record.ByNitrogen.Compare(b, a) })
}
func (reversingSorter) Algorithm() sorting.Algorithm { return sorting.Merge }
func (reversingSorter) Key() record.SortKey          { return record.ByNitrogen }

// duplicatingSorter sorts, then overwrites one record with its neighbour.
type duplicatingSorter struct{}

func (duplicatingSorter) Sort(records []record.Record) {
	slices.SortFunc(records, record.ByNitrogen.Compare)
	records[1] = records[0]
}
func (duplicatingSorter) Algorithm() sorting.Algorithm { return sorting.Shell }
func (duplicatingSorter) Key() record.SortKey          { return record.ByNitrogen }

func TestVerifyFailures(t *testing.T) {
	r := newTestRunner(nil, WithVerify(true))

	_, err := r.run(context.Background(), scenario(), reversingSorter{}, nil)
	var verr *VerificationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, sorting.Merge, verr.Algorithm)
	assert.Contains(t, verr.Error(), "non-decreasing nitrogen order")

	_, err = r.run(context.Background(), scenario(), duplicatingSorter{}, nil)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "not a permutation")

	r = newTestRunner(nil)
	res, err := r.run(context.Background(), scenario(), duplicatingSorter{}, nil)
	require.NoError(t, err, "verification is off by default")
	assert.Equal(t, 3, res.Summary.Count)
}

func TestSummarize(t *testing.T) {
	_, err := Summarize(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	s, err := Summarize(scenario())
	require.NoError(t, err)
	assert.Equal(t, "A", s.First.SiteID())
	assert.Equal(t, "C", s.Last.SiteID())
	assert.Equal(t, 3, s.Count)
}

func TestComputeStats(t *testing.T) {
	var recs []record.Record
	for i := 1; i <= 100; i++ {
		recs = append(recs, record.New("S"+strconv.Itoa(i%7), record.YearMonth(200001+i%12), float64(i)))
	}

	st, err := ComputeStats(recs)
	require.NoError(t, err)
	assert.Equal(t, 7, st.DistinctSites)
	assert.Equal(t, record.YearMonth(200001), st.EarliestMonth)
	assert.Equal(t, record.YearMonth(200012), st.LatestMonth)
	assert.Equal(t, 1.0, st.NitrogenMin)
	assert.Equal(t, 100.0, st.NitrogenMax)
	assert.InDelta(t, 50.5, st.NitrogenP50, 1.5)
	assert.InDelta(t, 90, st.NitrogenP90, 2)
	assert.InDelta(t, 99, st.NitrogenP99, 2)

	_, err = ComputeStats(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestComputeStatsNonFinite(t *testing.T) {
	recs := []record.Record{
		record.New("A", 202301, math.NaN()),
		record.New("B", 202302, math.Inf(1)),
	}
	st, err := ComputeStats(recs)
	require.NoError(t, err)
	assert.Equal(t, 2, st.DistinctSites)
	assert.True(t, math.IsNaN(st.NitrogenMin))
	assert.True(t, math.IsNaN(st.NitrogenP50))
}
