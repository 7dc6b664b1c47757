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

package sorting

import (
	"github.com/cardinalhq/nitronav/internal/record"
)

// MergeSorter is a top-down recursive merge sort.
//
// Memory Impact: each merge copies its two halves into temporary buffers
// sized to the sub-range being merged.
// Stability: stable. On equal keys the left half wins.
type MergeSorter struct {
	key record.SortKey
}

var _ Sorter = (*MergeSorter)(nil)

func NewMergeSorter(key record.SortKey) (*MergeSorter, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	return &MergeSorter{key: key}, nil
}

func (s *MergeSorter) Algorithm() Algorithm { return Merge }
func (s *MergeSorter) Key() record.SortKey  { return s.key }

// Sort orders records in place.
func (s *MergeSorter) Sort(records []record.Record) {
	s.sortRange(records, 0, len(records)-1)
}

// sortRange sorts the inclusive range [start, end].
func (s *MergeSorter) sortRange(records []record.Record, start, end int) {
	if start >= end {
		return
	}
	middle := start + (end-start)/2
	s.sortRange(records, start, middle)
	s.sortRange(records, middle+1, end)
	s.merge(records, start, middle, end)
}

// merge combines the sorted ranges [start, middle] and [middle+1, end].
func (s *MergeSorter) merge(records []record.Record, start, middle, end int) {
	left := make([]record.Record, middle-start+1)
	copy(left, records[start:middle+1])
	right := make([]record.Record, end-middle)
	copy(right, records[middle+1:end+1])

	i, j, k := 0, 0, start
	for i < len(left) && j < len(right) {
		// <= keeps equal keys in input order.
		if s.key.Compare(left[i], right[j]) <= 0 {
			records[k] = left[i]
			i++
		} else {
			records[k] = right[j]
			j++
		}
		k++
	}

	for i < len(left) {
		records[k] = left[i]
		i++
		k++
	}
	for j < len(right) {
		records[k] = right[j]
		j++
		k++
	}
}
