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

// ShellSorter is a diminishing-gap insertion sort using Knuth's
// 1, 4, 13, 40, 121, ... gap sequence.
//
// Memory Impact: none beyond a single record held per insertion.
// Stability: not stable. Long-gap moves can reorder equal keys.
type ShellSorter struct {
	key record.SortKey
}

var _ Sorter = (*ShellSorter)(nil)

func NewShellSorter(key record.SortKey) (*ShellSorter, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	return &ShellSorter{key: key}, nil
}

func (s *ShellSorter) Algorithm() Algorithm { return Shell }
func (s *ShellSorter) Key() record.SortKey  { return s.key }

// Sort orders records in place.
func (s *ShellSorter) Sort(records []record.Record) {
	n := len(records)
	for gap := startingGap(n); gap > 0; gap /= 3 {
		for i := gap; i < n; i++ {
			temp := records[i]
			j := i
			for j >= gap && s.key.Compare(records[j-gap], temp) > 0 {
				records[j] = records[j-gap]
				j -= gap
			}
			// Must run once per i, not once per gap.
			records[j] = temp
		}
	}
}

// startingGap returns the largest Knuth gap used for n elements.
func startingGap(n int) int {
	gap := 1
	for gap <= n/3 {
		gap = gap*3 + 1
	}
	return gap
}
