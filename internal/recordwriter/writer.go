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

// Package recordwriter exports sorted records to CSV, gzip compressed CSV
// or Parquet files that filereader can read back.
package recordwriter

import (
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/parquet-go/parquet-go"

	"github.com/cardinalhq/nitronav/internal/helpers"
	"github.com/cardinalhq/nitronav/internal/record"
)

// CSVHeader is the first row of every CSV file written.
var CSVHeader = []string{record.ColumnSiteID, record.ColumnYearMonth, record.ColumnNitrogen}

// WriteFile writes records in order to path, choosing the format from the
// extension. The file is written to a temporary name and renamed into
// place, so a failed write never leaves a partial file at path.
func WriteFile(path string, records []record.Record) error {
	format, err := helpers.DetectFileFormat(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	switch format {
	case helpers.FormatParquet:
		err = WriteParquet(tmp, records)
	case helpers.FormatCSVGzip:
		gz := gzip.NewWriter(tmp)
		if err = WriteCSV(gz, records); err == nil {
			err = gz.Close()
		}
	default:
		err = WriteCSV(tmp, records)
	}
	if err != nil {
		return fmt.Errorf("write %s %s: %w", format, path, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s to %s: %w", tmpName, path, err)
	}
	return nil
}

// WriteCSV writes a header row followed by one row per record.
func WriteCSV(w io.Writer, records []record.Record) error {
	bw := bufio.NewWriter(w)
	cw := csv.NewWriter(bw)

	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	row := make([]string, 3)
	for _, r := range records {
		row[0] = r.SiteID()
		row[1] = strconv.FormatInt(int64(r.YearMonth()), 10)
		row[2] = strconv.FormatFloat(r.Nitrogen(), 'f', -1, 64)
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteParquet writes records as a single Zstd compressed Parquet file.
func WriteParquet(w io.Writer, records []record.Record) error {
	pw := parquet.NewGenericWriter[record.Row](w,
		parquet.Compression(&parquet.Zstd),
		parquet.MaxRowsPerRowGroup(80_000),
	)
	if _, err := pw.Write(record.Rows(records)); err != nil {
		_ = pw.Close()
		return fmt.Errorf("write rows: %w", err)
	}
	return pw.Close()
}
