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

package sortrunner

import (
	"fmt"

	"github.com/cardinalhq/nitronav/internal/record"
	"github.com/cardinalhq/nitronav/internal/sorting"
)

// EmptyInputError is returned when a run or summary is requested for zero
// records. Sorting an empty slice is fine; summarizing one is not.
type EmptyInputError struct{}

func (e EmptyInputError) Error() string {
	return "no records to summarize"
}

// ErrEmptyInput is the sentinel for EmptyInputError.
var ErrEmptyInput = EmptyInputError{}

// VerificationError reports a sort whose output failed the post-run checks.
type VerificationError struct {
	Algorithm sorting.Algorithm
	Key       record.SortKey
	Reason    string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("%s sort by %s failed verification: %s", e.Algorithm, e.Key, e.Reason)
}
