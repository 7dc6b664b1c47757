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
	"errors"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/cardinalhq/nitronav/internal/record"
)

// ParquetReader reads records from a Parquet file with site_id, year_month
// and nitrogen_mg_l columns.
type ParquetReader struct {
	pf   *parquet.File
	gr   *parquet.GenericReader[record.Row]
	opts Options
	errs *rowErrors
	rows []record.Row

	rowIndex  int
	totalRows int64
	done      bool
	closed    bool
}

var _ Reader = (*ParquetReader)(nil)

// NewParquetReader opens size bytes of r as a Parquet file. The caller
// keeps ownership of r.
func NewParquetReader(r io.ReaderAt, size int64, opts Options) (*ParquetReader, error) {
	opts = opts.withDefaults()

	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	for _, col := range []string{record.ColumnSiteID, record.ColumnYearMonth, record.ColumnNitrogen} {
		if _, ok := pf.Schema().Lookup(col); !ok {
			return nil, fmt.Errorf("parquet file is missing column %q", col)
		}
	}

	return &ParquetReader{
		pf:   pf,
		gr:   parquet.NewGenericReader[record.Row](pf),
		opts: opts,
		errs: newRowErrors("ParquetReader", opts),
		rows: make([]record.Row, opts.BatchSize),
	}, nil
}

func (r *ParquetReader) Next(ctx context.Context) ([]record.Record, error) {
	if r.closed {
		return nil, errors.New("reader is closed")
	}

	for !r.done {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := r.gr.Read(r.rows)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
		if errors.Is(err, io.EOF) {
			r.done = true
		}
		if n == 0 {
			continue
		}
		rowsInCounter.Add(ctx, int64(n), otelmetric.WithAttributes(attribute.String("reader", "ParquetReader")))

		batch := make([]record.Record, 0, n)
		for _, row := range r.rows[:n] {
			r.rowIndex++
			rec, merr := validate(r.rowIndex, row.SiteID, row.YearMonth, row.Nitrogen)
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
			rowsOutCounter.Add(ctx, int64(len(batch)), otelmetric.WithAttributes(attribute.String("reader", "ParquetReader")))
			return batch, nil
		}
	}

	if err := r.errs.finish(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (r *ParquetReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.rows = nil
	return r.gr.Close()
}

func (r *ParquetReader) TotalRowsReturned() int64 {
	return r.totalRows
}
