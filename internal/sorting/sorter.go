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

// Package sorting implements merge sort and shell sort over measurement
// records, keyed on year-month or nitrogen concentration.
//
// Both sorters reorder the slice they are given in place. Callers that need
// the original order afterwards must pass a copy.
//
//	s, err := sorting.New(sorting.Merge, record.ByNitrogen)
//	if err != nil {
//	    return err
//	}
//	s.Sort(records)
package sorting

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cardinalhq/nitronav/internal/record"
)

// Sorter reorders records in place into non-decreasing order of its key.
type Sorter interface {
	Sort(records []record.Record)
	Algorithm() Algorithm
	Key() record.SortKey
}

// Algorithm selects a sorting implementation. The zero value is invalid.
type Algorithm int

const (
	Merge Algorithm = iota + 1
	Shell
)

// ErrUnknownAlgorithm is returned for unrecognized algorithm names or values.
var ErrUnknownAlgorithm = errors.New("unknown sorting algorithm")

// Algorithms lists every valid algorithm in display order.
var Algorithms = []Algorithm{Merge, Shell}

// ParseAlgorithm converts a user supplied name into an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "merge", "merge-sort", "mergesort", "merge sort":
		return Merge, nil
	case "shell", "shell-sort", "shellsort", "shell sort":
		return Shell, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
	}
}

func (a Algorithm) Valid() bool {
	return a == Merge || a == Shell
}

func (a Algorithm) String() string {
	switch a {
	case Merge:
		return "merge"
	case Shell:
		return "shell"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// New returns the sorter for alg ordering by key.
func New(alg Algorithm, key record.SortKey) (Sorter, error) {
	switch alg {
	case Merge:
		return NewMergeSorter(key)
	case Shell:
		return NewShellSorter(key)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, alg)
	}
}

func checkKey(key record.SortKey) error {
	if !key.Valid() {
		return fmt.Errorf("%w: %s", record.ErrUnknownSortKey, key)
	}
	return nil
}

// IsSorted reports whether records are in non-decreasing order of key.
func IsSorted(records []record.Record, key record.SortKey) bool {
	for i := 1; i < len(records); i++ {
		if key.Compare(records[i-1], records[i]) > 0 {
			return false
		}
	}
	return true
}
