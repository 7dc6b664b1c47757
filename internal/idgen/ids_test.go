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

package idgen

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSonyFlakeGenerator_NextID(t *testing.T) {
	gen, err := NewFlakeGenerator()
	require.NoError(t, err, "failed to create SonyFlakeGenerator")

	id := gen.NextID()
	id2 := gen.NextID()
	assert.Greater(t, id2, id, "NextID() did not return increasing id")
	assert.Positive(t, InstanceID())
}

func TestULIDGenerator_Make(t *testing.T) {
	gen := NewULIDGenerator()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	a := gen.Make(now)
	b := gen.Make(now)
	assert.Len(t, a, 26)
	assert.Less(t, a, b, "ids made in the same millisecond must still increase")

	parsed, err := ulid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, now, ulid.Time(parsed.Time()).UTC())
}
