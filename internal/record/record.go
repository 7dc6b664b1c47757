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

// Package record defines the nitrogen deposition measurement shared by the
// readers, sorters and writers, along with the keys records are ordered by.
package record

import (
	"fmt"
	"time"
)

// Record is one measurement taken at a collection site.
// Fields are only set by New, so a Record never changes once built;
// sorting moves Records around, it does not touch their contents.
type Record struct {
	siteID    string
	yearMonth YearMonth
	nitrogen  float64
}

// New builds a Record. No validation is performed here; readers are
// expected to reject malformed input before constructing records.
func New(siteID string, yearMonth YearMonth, nitrogen float64) Record {
	return Record{
		siteID:    siteID,
		yearMonth: yearMonth,
		nitrogen:  nitrogen,
	}
}

// SiteID returns the collection site identifier.
func (r Record) SiteID() string { return r.siteID }

// YearMonth returns the YYYYMM period of the measurement.
func (r Record) YearMonth() YearMonth { return r.yearMonth }

// Nitrogen returns the nitrogen concentration in mg/L.
func (r Record) Nitrogen() float64 { return r.nitrogen }

func (r Record) String() string {
	return fmt.Sprintf("%s@%d=%g", r.siteID, int(r.yearMonth), r.nitrogen)
}

// YearMonth is a period encoded as YYYYMM, e.g. 202301 for January 2023.
type YearMonth int

// NewYearMonth encodes year and month as YYYYMM.
func NewYearMonth(year int, month time.Month) YearMonth {
	return YearMonth(year*100 + int(month))
}

func (ym YearMonth) Year() int { return int(ym) / 100 }

func (ym YearMonth) Month() time.Month { return time.Month(int(ym) % 100) }

// Valid reports whether ym has a positive year and a month in 1..12.
func (ym YearMonth) Valid() bool {
	m := ym.Month()
	return ym.Year() >= 1 && m >= time.January && m <= time.December
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year(), int(ym.Month()))
}
