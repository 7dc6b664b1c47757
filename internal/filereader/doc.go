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

// Package filereader turns measurement files into records for sorting.
//
// # Formats
//
//   - CSV: three columns per row, site id, year-month (YYYYMM) and nitrogen
//     concentration in mg/L. A leading header row is detected and skipped.
//   - Gzip compressed CSV, by a .gz suffix.
//   - Parquet, with columns site_id, year_month and nitrogen_mg_l.
//
// All readers implement Reader and return batches of records until io.EOF.
//
// # Malformed rows
//
// A row that cannot become a valid record produces a MalformedRecordError.
// In strict mode (the default) reading continues so every bad row is found,
// and the final call to Next returns all of them together instead of io.EOF.
// In lenient mode bad rows are counted, logged at debug level and dropped.
//
// Example usage:
//
//	records, err := filereader.ReadFile(ctx, "NTN_data.csv", filereader.DefaultOptions())
//	if err != nil {
//	    return err
//	}
package filereader
