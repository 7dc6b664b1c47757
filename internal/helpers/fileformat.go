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

package helpers

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// FileFormat is the on-disk encoding of a measurement file.
type FileFormat int

const (
	FormatCSV FileFormat = iota + 1
	FormatCSVGzip
	FormatParquet
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// DetectFileFormat picks a format from the file name extension.
// Files without an extension are treated as CSV.
func DetectFileFormat(p string) (FileFormat, error) {
	name := strings.ToLower(path.Base(p))

	switch {
	case strings.HasSuffix(name, ".parquet"):
		return FormatParquet, nil
	case strings.HasSuffix(name, ".csv.gz"), strings.HasSuffix(name, ".gz"):
		return FormatCSVGzip, nil
	case strings.HasSuffix(name, ".csv"), strings.HasSuffix(name, ".txt"), !strings.Contains(name, "."):
		return FormatCSV, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path.Base(p))
	}
}

func (f FileFormat) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatCSVGzip:
		return "csv.gz"
	case FormatParquet:
		return "parquet"
	default:
		return fmt.Sprintf("FileFormat(%d)", int(f))
	}
}
