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
	"fmt"
	"math"

	"github.com/DataDog/sketches-go/ddsketch"
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/cardinalhq/nitronav/internal/record"
)

// Summary describes the ends of a sorted sequence.
type Summary struct {
	// First is the smallest record by the run's key.
	First record.Record
	// Last is the largest record by the run's key.
	Last  record.Record
	Count int
}

// Summarize returns the first and last records of an already sorted slice.
func Summarize(sorted []record.Record) (Summary, error) {
	if len(sorted) == 0 {
		return Summary{}, ErrEmptyInput
	}
	return Summary{
		First: sorted[0],
		Last:  sorted[len(sorted)-1],
		Count: len(sorted),
	}, nil
}

// Stats are descriptive statistics over the records of a run. They do not
// depend on the sort order.
type Stats struct {
	DistinctSites int
	EarliestMonth record.YearMonth
	LatestMonth   record.YearMonth
	NitrogenMin   float64
	NitrogenMax   float64

	// Nitrogen quantiles are approximate, within 1% relative error.
	NitrogenP50 float64
	NitrogenP90 float64
	NitrogenP99 float64
}

const sketchRelativeAccuracy = 0.01

var statQuantiles = []float64{0.5, 0.9, 0.99}

// ComputeStats scans records once. Non-finite nitrogen values are left out
// of the nitrogen figures.
func ComputeStats(records []record.Record) (*Stats, error) {
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	sketch, err := ddsketch.NewDefaultDDSketch(sketchRelativeAccuracy)
	if err != nil {
		return nil, fmt.Errorf("failed to create nitrogen sketch: %w", err)
	}
	sites := mapset.NewThreadUnsafeSet[string]()

	st := &Stats{
		EarliestMonth: records[0].YearMonth(),
		LatestMonth:   records[0].YearMonth(),
		NitrogenMin:   math.Inf(1),
		NitrogenMax:   math.Inf(-1),
	}
	for _, r := range records {
		sites.Add(r.SiteID())
		st.EarliestMonth = min(st.EarliestMonth, r.YearMonth())
		st.LatestMonth = max(st.LatestMonth, r.YearMonth())

		n := r.Nitrogen()
		if math.IsNaN(n) || math.IsInf(n, 0) {
			continue
		}
		st.NitrogenMin = min(st.NitrogenMin, n)
		st.NitrogenMax = max(st.NitrogenMax, n)
		if err := sketch.Add(n); err != nil {
			return nil, fmt.Errorf("failed to add %g to nitrogen sketch: %w", n, err)
		}
	}
	st.DistinctSites = sites.Cardinality()

	if sketch.IsEmpty() {
		st.NitrogenMin, st.NitrogenMax = math.NaN(), math.NaN()
		st.NitrogenP50, st.NitrogenP90, st.NitrogenP99 = math.NaN(), math.NaN(), math.NaN()
		return st, nil
	}

	qs, err := sketch.GetValuesAtQuantiles(statQuantiles)
	if err != nil {
		return nil, fmt.Errorf("failed to read nitrogen quantiles: %w", err)
	}
	st.NitrogenP50, st.NitrogenP90, st.NitrogenP99 = qs[0], qs[1], qs[2]
	return st, nil
}
