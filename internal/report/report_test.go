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
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/cardinalhq/nitronav/internal/record"
	"github.com/cardinalhq/nitronav/internal/sortrunner"
	"github.com/cardinalhq/nitronav/internal/sorting"
)

func result(alg sorting.Algorithm, runID string, elapsed time.Duration) *sortrunner.Result {
	sorted := []record.Record{
		record.New("C", 202301, 0.9),
		record.New("A", 202301, 1.5),
		record.New("B", 202212, 3.2),
	}
	return &sortrunner.Result{
		RunID:     runID,
		Algorithm: alg,
		Key:       record.ByNitrogen,
		Records:   sorted,
		Elapsed:   elapsed,
		Summary:   sortrunner.Summary{First: sorted[0], Last: sorted[2], Count: 3},
		Stats: &sortrunner.Stats{
			DistinctSites: 3,
			EarliestMonth: 202212,
			LatestMonth:   202301,
			NitrogenMin:   0.9,
			NitrogenMax:   3.2,
			NitrogenP50:   1.5,
			NitrogenP90:   3.2,
			NitrogenP99:   3.2,
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"text", FormatText},
		{"", FormatText},
		{"JSON", FormatJSON},
		{"yml", FormatYAML},
		{"yaml", FormatYAML},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseFormat("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.Equal(t, "Format(0)", Format(0).String())
}

func TestWriteResultText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, FormatText, result(sorting.Merge, "run-1", 1500*time.Microsecond), 2))
	out := buf.String()

	assert.Contains(t, out, "Run ID:")
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "Nitrogen Concentration (mg/L)")
	assert.Contains(t, out, "1.5ms")
	assert.Contains(t, out, "C 2023-01 0.9")
	assert.Contains(t, out, "B 2022-12 3.2")
	assert.Contains(t, out, "2022-12 to 2023-01")
	assert.Contains(t, out, "1.500 / 3.200 / 3.200 mg/L")
	assert.Contains(t, out, "SITE")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "A "), "preview should stop after 2 rows: %q", lines[len(lines)-1])
}

func TestWriteResultNoPreview(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, FormatText, result(sorting.Shell, "run-1", time.Millisecond), 0))
	assert.NotContains(t, buf.String(), "SITE")
}

func TestWriteResultJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, FormatJSON, result(sorting.Merge, "run-1", 2*time.Second), 10))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "run-1", doc["runId"])
	assert.Equal(t, "merge", doc["algorithm"])
	assert.Equal(t, "nitrogen", doc["key"])
	assert.Equal(t, 3.0, doc["records"])
	assert.Equal(t, 2.0, doc["elapsedSeconds"])
	assert.Equal(t, map[string]any{"siteId": "C", "yearMonth": 202301.0, "nitrogen": 0.9}, doc["smallest"])
	assert.Len(t, doc["preview"], 3)

	stats := doc["stats"].(map[string]any)
	assert.Equal(t, 3.0, stats["distinctSites"])
	assert.Equal(t, "2022-12", stats["earliestMonth"])
}

func TestWriteResultJSONNaNStats(t *testing.T) {
	res := result(sorting.Merge, "run-1", time.Millisecond)
	res.Stats.NitrogenP50 = math.NaN()
	res.Stats.NitrogenMin = math.Inf(-1)

	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, FormatJSON, res, 0))
	assert.NotContains(t, buf.String(), "nitrogenP50")
	assert.NotContains(t, buf.String(), "nitrogenMin")
	assert.Contains(t, buf.String(), "nitrogenMax")

	buf.Reset()
	require.NoError(t, WriteResult(&buf, FormatText, res, 0))
	assert.Contains(t, buf.String(), "n/a to 3.200 mg/L")
}

func TestWriteResultYAML(t *testing.T) {
	res := result(sorting.Shell, "run-2", time.Millisecond)
	res.Stats = nil

	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, FormatYAML, res, 1))

	var doc runDocument
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "run-2", doc.RunID)
	assert.Equal(t, "shell", doc.Algorithm)
	assert.Nil(t, doc.Stats)
	assert.Equal(t, []record.Row{{SiteID: "C", YearMonth: 202301, Nitrogen: 0.9}}, doc.Preview)
	assert.Equal(t, record.Row{SiteID: "B", YearMonth: 202212, Nitrogen: 3.2}, doc.Largest)
}

func TestWriteResultUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := WriteResult(&buf, Format(0), result(sorting.Merge, "run-1", time.Millisecond), 0)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func comparison() *sortrunner.Comparison {
	return &sortrunner.Comparison{
		Key: record.ByNitrogen,
		Runs: []*sortrunner.Result{
			result(sorting.Merge, "run-m", 3*time.Millisecond),
			result(sorting.Shell, "run-s", time.Millisecond),
		},
	}
}

func TestWriteComparisonText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteComparison(&buf, FormatText, comparison(), 1))
	out := buf.String()

	assert.Contains(t, out, "ALGORITHM")
	assert.Contains(t, out, "run-m")
	assert.Contains(t, out, "run-s")
	assert.Contains(t, out, "Fastest: shell (3.00x)")
	assert.Contains(t, out, "Distinct sites:")
	assert.Contains(t, out, "SITE")
}

func TestWriteComparisonJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteComparison(&buf, FormatJSON, comparison(), 0))

	var doc comparisonDocument
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "nitrogen", doc.Key)
	assert.Equal(t, 3, doc.Records)
	assert.Equal(t, "shell", doc.Fastest)
	assert.InDelta(t, 3.0, doc.Speedup, 1e-9)
	require.Len(t, doc.Runs, 2)
	assert.Equal(t, "merge", doc.Runs[0].Algorithm)
	assert.Nil(t, doc.Runs[0].Stats)
	assert.Empty(t, doc.Preview)
	require.NotNil(t, doc.Stats)
}
