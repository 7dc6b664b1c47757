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

// Row is the flat, serializable shape of a Record used for Parquet files
// and structured reports.
type Row struct {
	SiteID    string  `parquet:"site_id" json:"siteId" yaml:"siteId"`
	YearMonth int64   `parquet:"year_month" json:"yearMonth" yaml:"yearMonth"`
	Nitrogen  float64 `parquet:"nitrogen_mg_l" json:"nitrogen" yaml:"nitrogen"`
}

// Column names shared by every file format.
const (
	ColumnSiteID    = "site_id"
	ColumnYearMonth = "year_month"
	ColumnNitrogen  = "nitrogen_mg_l"
)

func (r Record) Row() Row {
	return Row{
		SiteID:    r.siteID,
		YearMonth: int64(r.yearMonth),
		Nitrogen:  r.nitrogen,
	}
}

// Record converts the row back without validation.
func (r Row) Record() Record {
	return New(r.SiteID, YearMonth(r.YearMonth), r.Nitrogen)
}

// Rows converts records in order.
func Rows(records []Record) []Row {
	out := make([]Row, len(records))
	for i, r := range records {
		out[i] = r.Row()
	}
	return out
}
