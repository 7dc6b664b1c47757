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
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/cardinalhq/nitronav/internal/helpers"
	"github.com/cardinalhq/nitronav/internal/record"
)

// Reader returns batches of records until io.EOF.
type Reader interface {
	// Next returns the next batch. In strict mode the call that would return
	// io.EOF returns the collected malformed rows instead, if there were any.
	Next(ctx context.Context) ([]record.Record, error)
	Close() error
	// TotalRowsReturned is the number of records returned by Next so far.
	TotalRowsReturned() int64
}

// Options control how readers treat their input.
type Options struct {
	// Strict fails the read when any row is malformed. Otherwise bad rows are dropped.
	Strict bool
	// MaxErrors stops a strict read early once this many malformed rows are
	// found. Zero or less means no limit.
	MaxErrors int
	BatchSize int
	Logger    *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		Strict:    true,
		MaxErrors: 100,
		BatchSize: 1000,
	}
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = 1000
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// ReadAll drains r. It does not close r.
func ReadAll(ctx context.Context, r Reader) ([]record.Record, error) {
	var out []record.Record
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		batch, err := r.Next(ctx)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
}

// ReadFile reads every record in the file at path, choosing the reader from
// the file extension.
func ReadFile(ctx context.Context, path string, opts Options) ([]record.Record, error) {
	format, err := helpers.DetectFileFormat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	var reader Reader
	switch format {
	case helpers.FormatParquet:
		defer func() {
			_ = f.Close()
		}()
		stat, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		reader, err = NewParquetReader(f, stat.Size(), opts)
		if err != nil {
			return nil, fmt.Errorf("failed to open parquet file %s: %w", path, err)
		}
	case helpers.FormatCSVGzip:
		gz, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to open gzip stream %s: %w", path, err)
		}
		reader, err = NewCSVReader(&gzipReadCloser{Reader: gz, file: f}, opts)
		if err != nil {
			return nil, err
		}
	default:
		reader, err = NewCSVReader(f, opts)
		if err != nil {
			return nil, err
		}
	}
	defer func() {
		_ = reader.Close()
	}()

	records, err := ReadAll(ctx, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	opts.withDefaults().Logger.Info("Read measurement file",
		slog.String("path", path),
		slog.String("format", format.String()),
		slog.Int64("records", reader.TotalRowsReturned()))
	return records, nil
}

// gzipReadCloser closes both the gzip stream and the file beneath it.
type gzipReadCloser struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipReadCloser) Close() error {
	gzErr := g.Reader.Close()
	fErr := g.file.Close()
	if gzErr != nil {
		return gzErr
	}
	return fErr
}

// rowErrors tracks malformed rows for one reader.
type rowErrors struct {
	reader  string
	opts    Options
	errs    *multierror.Error
	count   int
	flushed bool
}

func newRowErrors(reader string, opts Options) *rowErrors {
	return &rowErrors{reader: reader, opts: opts}
}

// add records a malformed row. It returns a non-nil error once a strict
// reader has hit MaxErrors.
func (e *rowErrors) add(ctx context.Context, merr *MalformedRecordError) error {
	e.count++
	rowsDroppedCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("reader", e.reader),
		attribute.String("field", merr.Field),
	))

	if !e.opts.Strict {
		e.opts.Logger.Debug("Dropping malformed row",
			slog.String("reader", e.reader),
			slog.Int("line", merr.Line),
			slog.String("field", merr.Field),
			slog.Any("error", merr.Err))
		return nil
	}

	e.errs = multierror.Append(e.errs, merr)
	if e.opts.MaxErrors > 0 && e.count >= e.opts.MaxErrors {
		e.flushed = true
		return fmt.Errorf("stopped after %d malformed rows: %w", e.count, e.errs.ErrorOrNil())
	}
	return nil
}

// finish returns the strict-mode error once, or nil.
func (e *rowErrors) finish() error {
	if e.flushed {
		return nil
	}
	e.flushed = true
	if e.count > 0 && !e.opts.Strict {
		e.opts.Logger.Warn("Dropped malformed rows",
			slog.String("reader", e.reader),
			slog.Int("dropped", e.count))
	}
	return e.errs.ErrorOrNil()
}

func parseFields(line int, fields []string) (record.Record, *MalformedRecordError) {
	if len(fields) != 3 {
		return record.Record{}, &MalformedRecordError{
			Line:  line,
			Field: "row",
			Value: strings.Join(fields, ","),
			Err:   ErrFieldCount,
		}
	}

	siteID := strings.TrimSpace(fields[0])
	ymText := strings.TrimSpace(fields[1])
	nText := strings.TrimSpace(fields[2])

	ym, err := strconv.ParseInt(ymText, 10, 64)
	if err != nil {
		return record.Record{}, &MalformedRecordError{Line: line, Field: "yearMonth", Value: ymText, Err: err}
	}
	n, err := strconv.ParseFloat(nText, 64)
	if err != nil {
		return record.Record{}, &MalformedRecordError{Line: line, Field: "nitrogen", Value: nText, Err: err}
	}
	return validate(line, siteID, ym, n)
}

func validate(line int, siteID string, ym int64, nitrogen float64) (record.Record, *MalformedRecordError) {
	if siteID == "" {
		return record.Record{}, &MalformedRecordError{Line: line, Field: "siteId", Value: siteID, Err: ErrEmptyField}
	}
	if !record.YearMonth(ym).Valid() {
		return record.Record{}, &MalformedRecordError{
			Line:  line,
			Field: "yearMonth",
			Value: strconv.FormatInt(ym, 10),
			Err:   ErrInvalidMonth,
		}
	}
	if math.IsNaN(nitrogen) || math.IsInf(nitrogen, 0) {
		return record.Record{}, &MalformedRecordError{
			Line:  line,
			Field: "nitrogen",
			Value: strconv.FormatFloat(nitrogen, 'g', -1, 64),
			Err:   ErrNotFinite,
		}
	}
	return record.New(siteID, record.YearMonth(ym), nitrogen), nil
}
