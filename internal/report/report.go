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
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/cardinalhq/nitronav/internal/record"
	"github.com/cardinalhq/nitronav/internal/sortrunner"
)

// WriteResult renders one run. At most preview sorted rows are included.
func WriteResult(w io.Writer, format Format, res *sortrunner.Result, preview int) error {
	doc := newRunDocument(res, preview, true)
	switch format {
	case FormatJSON:
		return writeJSON(w, doc)
	case FormatYAML:
		return writeYAML(w, doc)
	case FormatText:
		return writeRunText(w, doc)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// WriteComparison renders a run per algorithm and which one was faster.
func WriteComparison(w io.Writer, format Format, cmp *sortrunner.Comparison, preview int) error {
	doc := newComparisonDocument(cmp, preview)
	switch format {
	case FormatJSON:
		return writeJSON(w, doc)
	case FormatYAML:
		return writeYAML(w, doc)
	case FormatText:
		return writeComparisonText(w, doc)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// printer keeps the first write error so table code can stay linear.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func writeRunText(w io.Writer, doc runDocument) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	p := &printer{w: tw}

	p.printf("Run ID:\t%s\n", doc.RunID)
	p.printf("Algorithm:\t%s\n", doc.Algorithm)
	p.printf("Sort key:\t%s\n", keyLabel(doc.Key))
	p.printf("Records:\t%d\n", doc.Records)
	p.printf("Elapsed:\t%s\n", doc.Elapsed)
	p.printf("Smallest:\t%s\n", formatRow(doc.Smallest))
	p.printf("Largest:\t%s\n", formatRow(doc.Largest))
	writeStatsText(p, doc.Stats)
	if p.err != nil {
		return p.err
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return writePreviewText(w, doc.Preview)
}

func writeComparisonText(w io.Writer, doc comparisonDocument) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	p := &printer{w: tw}

	p.printf("Sort key:\t%s\n", keyLabel(doc.Key))
	p.printf("Records:\t%d\n", doc.Records)
	writeStatsText(p, doc.Stats)
	if p.err != nil {
		return p.err
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	p = &printer{w: tw}
	p.printf("\nALGORITHM\tRUN ID\tELAPSED\tSMALLEST\tLARGEST\n")
	for _, run := range doc.Runs {
		p.printf("%s\t%s\t%s\t%s\t%s\n", run.Algorithm, run.RunID, run.Elapsed,
			formatRow(run.Smallest), formatRow(run.Largest))
	}
	if doc.Fastest != "" {
		if doc.Speedup > 0 {
			p.printf("\nFastest: %s (%.2fx)\n", doc.Fastest, doc.Speedup)
		} else {
			p.printf("\nFastest: %s\n", doc.Fastest)
		}
	}
	if p.err != nil {
		return p.err
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return writePreviewText(w, doc.Preview)
}

func writeStatsText(p *printer, s *statsDocument) {
	if s == nil {
		return
	}
	p.printf("Distinct sites:\t%d\n", s.DistinctSites)
	p.printf("Months:\t%s to %s\n", s.EarliestMonth, s.LatestMonth)
	p.printf("Nitrogen range:\t%s to %s mg/L\n", formatFloat(s.NitrogenMin), formatFloat(s.NitrogenMax))
	p.printf("Nitrogen p50/p90/p99:\t%s / %s / %s mg/L\n",
		formatFloat(s.NitrogenP50), formatFloat(s.NitrogenP90), formatFloat(s.NitrogenP99))
}

func writePreviewText(w io.Writer, rows []record.Row) error {
	if len(rows) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	p := &printer{w: tw}
	p.printf("\nSITE\tYEAR/MONTH\tNITROGEN (mg/L)\n")
	for _, row := range rows {
		p.printf("%s\t%s\t%s\n", row.SiteID, record.YearMonth(row.YearMonth), strconv.FormatFloat(row.Nitrogen, 'f', -1, 64))
	}
	if p.err != nil {
		return p.err
	}
	return tw.Flush()
}

func formatRow(row record.Row) string {
	return fmt.Sprintf("%s %s %s", row.SiteID, record.YearMonth(row.YearMonth),
		strconv.FormatFloat(row.Nitrogen, 'f', -1, 64))
}

func formatFloat(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*v, 'f', 3, 64)
}

func keyLabel(name string) string {
	key, err := record.ParseSortKey(name)
	if err != nil {
		return name
	}
	return key.Label()
}
