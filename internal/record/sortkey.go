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

package record

import (
	"cmp"
	"errors"
	"fmt"
	"strings"
)

// SortKey selects the field records are ordered by.
// The zero value is not a valid key.
type SortKey int

const (
	ByYearMonth SortKey = iota + 1
	ByNitrogen
)

// ErrUnknownSortKey is returned when a key name or value is not recognized.
var ErrUnknownSortKey = errors.New("unknown sort key")

// SortKeys lists every valid key in display order.
var SortKeys = []SortKey{ByYearMonth, ByNitrogen}

// ParseSortKey converts a user supplied name into a SortKey.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "year", "yearmonth", "year-month", "year/month", "year_month":
		return ByYearMonth, nil
	case "nitrogen", "nitrogen-concentration", "nitrogen_concentration":
		return ByNitrogen, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSortKey, s)
	}
}

func (k SortKey) Valid() bool {
	return k == ByYearMonth || k == ByNitrogen
}

func (k SortKey) String() string {
	switch k {
	case ByYearMonth:
		return "year"
	case ByNitrogen:
		return "nitrogen"
	default:
		return fmt.Sprintf("SortKey(%d)", int(k))
	}
}

// Label is the human readable column name for the key.
func (k SortKey) Label() string {
	switch k {
	case ByYearMonth:
		return "Year/Month"
	case ByNitrogen:
		return "Nitrogen Concentration (mg/L)"
	default:
		return k.String()
	}
}

// Compare returns -1, 0 or +1 depending on whether a orders before, equal to,
// or after b on this key. It panics for an invalid key; callers validate keys
// when they build a sorter.
func (k SortKey) Compare(a, b Record) int {
	switch k {
	case ByYearMonth:
		return cmp.Compare(a.yearMonth, b.yearMonth)
	case ByNitrogen:
		return cmp.Compare(a.nitrogen, b.nitrogen)
	default:
		panic(fmt.Sprintf("record: compare with invalid %s", k))
	}
}

// Value returns the key field of r as a float64 for display and statistics.
func (k SortKey) Value(r Record) float64 {
	if k == ByYearMonth {
		return float64(r.yearMonth)
	}
	return r.nitrogen
}
