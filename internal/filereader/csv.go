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

package filereader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/cardinalhq/nitronav/internal/record"
)

// CSVReader reads site, year-month, nitrogen rows from CSV.
type CSVReader struct {
	reader io.ReadCloser
	csv    *csv.Reader
	opts   Options
	errs   *rowErrors

	rowIndex  int
	totalRows int64
	done      bool
	closed    bool
}

var _ Reader = (*CSVReader)(nil)

// NewCSVReader takes ownership of reader and closes it on Close.
func NewCSVReader(reader io.ReadCloser, opts Options) (*CSVReader, error) {
	if reader == nil {
		return nil, errors.New("reader cannot be nil")
	}
	opts = opts.withDefaults()

	cr := csv.NewReader(reader)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	return &CSVReader{
		reader: reader,
		csv:    cr,
		opts:   opts,
		errs:   newRowErrors("CSVReader", opts),
	}, nil
}

func (r *CSVReader) Next(ctx context.Context) ([]record.Record, error) {
	if r.closed {
		return nil, errors.New("reader is closed")
	}
	if r.done {
		if err := r.errs.finish(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}

	batch := make([]record.Record, 0, r.opts.BatchSize)
	for len(batch) < r.opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fields, err := r.csv.Read()
		if errors.Is(err, io.EOF) {
			r.done = true
			break
		}
		r.rowIndex++

		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return nil, fmt.Errorf("failed to read CSV row: %w", err)
			}
			rowsInCounter.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("reader", "CSVReader")))
			if err := r.errs.add(ctx, &MalformedRecordError{Line: perr.Line, Field: "row", Err: perr.Err}); err != nil {
				return nil, err
			}
			continue
		}

		rowsInCounter.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("reader", "CSVReader")))
		line, _ := r.csv.FieldPos(0)

		if r.rowIndex == 1 && isHeader(fields) {
			r.opts.Logger.Debug("Skipping CSV header", slog.String("header", strings.Join(fields, ",")))
			continue
		}

		rec, merr := parseFields(line, fields)
		if merr != nil {
			if err := r.errs.add(ctx, merr); err != nil {
				return nil, err
			}
			continue
		}
		batch = append(batch, rec)
	}

	if len(batch) > 0 {
		r.totalRows += int64(len(batch))
		rowsOutCounter.Add(ctx, int64(len(batch)), otelmetric.WithAttributes(attribute.String("reader", "CSVReader")))
		return batch, nil
	}

	// Only reachable once the input is exhausted.
	if err := r.errs.finish(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// isHeader reports whether a row's numeric columns are both non-numeric.
func isHeader(fields []string) bool {
	if len(fields) != 3 {
		return false
	}
	_, ymErr := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
	_, nErr := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	return ymErr != nil && nErr != nil
}

func (r *CSVReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.csv = nil
	return r.reader.Close()
}

func (r *CSVReader) TotalRowsReturned() int64 {
	return r.totalRows
}
