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
	"github.com/spf13/cast"
)

// Datum is a constant catalog value: a histogram bound, a column default.
// Datums are compared numerically for histogram arithmetic.
type Datum struct {
	v interface{}
}

// NewDatum wraps a value.
func NewDatum(v interface{}) Datum {
	return Datum{v: v}
}

// Value returns the wrapped value.
func (d Datum) Value() interface{} {
	return d.v
}

// Float64 coerces the datum to a float64 for histogram arithmetic.
func (d Datum) Float64() (float64, error) {
	return cast.ToFloat64E(d.v)
}

// Compare orders two datums numerically: -1, 0 or 1. Non-numeric datums
// compare as equal; histograms over such columns estimate nothing.
func (d Datum) Compare(other Datum) int {
	a, err1 := d.Float64()
	b, err2 := other.Float64()
	if err1 != nil || err2 != nil {
		return 0
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
