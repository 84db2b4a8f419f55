// Copyright 2024 Soradb, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package memory

import (
	"math/bits"
)

// Cost units. All units are exact binary fractions and the sort cost uses
// an integral log factor, so plan costs add without rounding and equal
// plans compare exactly equal, keeping tie-breaks deterministic.
const (
	costScanInitFactor   = 512.0
	costScanRowUnit      = 1.0
	costIndexScanRowUnit = 0.5
	costFilterColRowUnit = 0.25
	costProjectRowUnit   = 0.125
	costSortRowUnit      = 0.5
)

// ceilLog2 returns ceil(log2(n)) for n >= 2, and 1 for n <= 1 so a sort of
// a single row still has positive cost.
func ceilLog2(n uint64) uint64 {
	if n <= 2 {
		return 1
	}
	return uint64(bits.Len64(n - 1))
}
