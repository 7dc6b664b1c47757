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
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Hash returns the xxhash64 digest of the record's fields.
func (r Record) Hash() uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(r.siteID)
	var buf [17]byte
	buf[0] = 0 // separates the site id from the numeric fields
	binary.LittleEndian.PutUint64(buf[1:9], uint64(r.yearMonth))
	binary.LittleEndian.PutUint64(buf[9:17], math.Float64bits(r.nitrogen))
	_, _ = h.Write(buf[:])
	return h.Sum64()
}

// Fingerprint digests records as a multiset: any permutation of the same
// records yields the same value.
func Fingerprint(records []Record) uint64 {
	var sum uint64
	for _, r := range records {
		sum += r.Hash()
	}
	return sum
}
