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

package report

import (
	"math"

	"github.com/cardinalhq/nitronav/internal/record"
	"github.com/cardinalhq/nitronav/internal/sortrunner"
)

// runDocument is the structured form of a single run.
type runDocument struct {
	RunID          string         `json:"runId" yaml:"runId"`
	Algorithm      string         `json:"algorithm" yaml:"algorithm"`
	Key            string         `json:"key" yaml:"key"`
	Records        int            `json:"records" yaml:"records"`
	Elapsed        string         `json:"elapsed" yaml:"elapsed"`
	ElapsedSeconds float64        `json:"elapsedSeconds" yaml:"elapsedSeconds"`
	Smallest       record.Row     `json:"smallest" yaml:"smallest"`
	Largest        record.Row     `json:"largest" yaml:"largest"`
	Stats          *statsDocument `json:"stats,omitempty" yaml:"stats,omitempty"`
	Preview        []record.Row   `json:"preview,omitempty" yaml:"preview,omitempty"`
}

type comparisonDocument struct {
	Key     string         `json:"key" yaml:"key"`
	Records int            `json:"records" yaml:"records"`
	Fastest string         `json:"fastest" yaml:"fastest"`
	Speedup float64        `json:"speedup" yaml:"speedup"`
	Runs    []runDocument  `json:"runs" yaml:"runs"`
	Stats   *statsDocument `json:"stats,omitempty" yaml:"stats,omitempty"`
	Preview []record.Row   `json:"preview,omitempty" yaml:"preview,omitempty"`
}

// Nitrogen figures are pointers so that NaN, which JSON cannot encode,
// is left out instead.
type statsDocument struct {
	DistinctSites int      `json:"distinctSites" yaml:"distinctSites"`
	EarliestMonth string   `json:"earliestMonth" yaml:"earliestMonth"`
	LatestMonth   string   `json:"latestMonth" yaml:"latestMonth"`
	NitrogenMin   *float64 `json:"nitrogenMin,omitempty" yaml:"nitrogenMin,omitempty"`
	NitrogenMax   *float64 `json:"nitrogenMax,omitempty" yaml:"nitrogenMax,omitempty"`
	NitrogenP50   *float64 `json:"nitrogenP50,omitempty" yaml:"nitrogenP50,omitempty"`
	NitrogenP90   *float64 `json:"nitrogenP90,omitempty" yaml:"nitrogenP90,omitempty"`
	NitrogenP99   *float64 `json:"nitrogenP99,omitempty" yaml:"nitrogenP99,omitempty"`
}

func newRunDocument(res *sortrunner.Result, preview int, withStats bool) runDocument {
	doc := runDocument{
		RunID:          res.RunID,
		Algorithm:      res.Algorithm.String(),
		Key:            res.Key.String(),
		Records:        res.Summary.Count,
		Elapsed:        res.Elapsed.String(),
		ElapsedSeconds: res.Elapsed.Seconds(),
		Smallest:       res.Summary.First.Row(),
		Largest:        res.Summary.Last.Row(),
		Preview:        previewRows(res.Records, preview),
	}
	if withStats {
		doc.Stats = newStatsDocument(res.Stats)
	}
	return doc
}

func newComparisonDocument(cmp *sortrunner.Comparison, preview int) comparisonDocument {
	doc := comparisonDocument{
		Key:     cmp.Key.String(),
		Speedup: cmp.Speedup(),
	}
	if fastest := cmp.Fastest(); fastest != nil {
		doc.Fastest = fastest.Algorithm.String()
	}
	for _, run := range cmp.Runs {
		doc.Runs = append(doc.Runs, newRunDocument(run, 0, false))
	}
	if len(cmp.Runs) > 0 {
		first := cmp.Runs[0]
		doc.Records = first.Summary.Count
		doc.Stats = newStatsDocument(first.Stats)
		doc.Preview = previewRows(first.Records, preview)
	}
	return doc
}

func newStatsDocument(s *sortrunner.Stats) *statsDocument {
	if s == nil {
		return nil
	}
	return &statsDocument{
		DistinctSites: s.DistinctSites,
		EarliestMonth: s.EarliestMonth.String(),
		LatestMonth:   s.LatestMonth.String(),
		NitrogenMin:   finite(s.NitrogenMin),
		NitrogenMax:   finite(s.NitrogenMax),
		NitrogenP50:   finite(s.NitrogenP50),
		NitrogenP90:   finite(s.NitrogenP90),
		NitrogenP99:   finite(s.NitrogenP99),
	}
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func previewRows(records []record.Record, n int) []record.Row {
	n = min(n, len(records))
	if n <= 0 {
		return nil
	}
	return record.Rows(records[:n])
}
