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

package sql

import (
	"fmt"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// ColumnId identifies a column within an optimization. Ids are assigned by
// the caller; the core only compares them.
type ColumnId uint32

// ColSet is a set of column ids backed by a bitset.
type ColSet struct {
	set *bitset.BitSet
}

// NewColSet returns a set containing the given columns.
func NewColSet(cols ...ColumnId) ColSet {
	s := ColSet{set: bitset.New(0)}
	for _, c := range cols {
		s.Add(c)
	}
	return s
}

func (s *ColSet) init() {
	if s.set == nil {
		s.set = bitset.New(0)
	}
}

// Add adds a column to the set.
func (s *ColSet) Add(col ColumnId) {
	s.init()
	s.set.Set(uint(col))
}

// Remove removes a column from the set.
func (s *ColSet) Remove(col ColumnId) {
	s.init()
	s.set.Clear(uint(col))
}

// Contains reports whether col is in the set.
func (s ColSet) Contains(col ColumnId) bool {
	if s.set == nil {
		return false
	}
	return s.set.Test(uint(col))
}

// Union adds every column of other to the set.
func (s *ColSet) Union(other ColSet) {
	s.init()
	if other.set != nil {
		s.set.InPlaceUnion(other.set)
	}
}

// SubsetOf reports whether every column of s is in other.
func (s ColSet) SubsetOf(other ColSet) bool {
	if s.set == nil || s.set.None() {
		return true
	}
	if other.set == nil {
		return false
	}
	return other.set.IsSuperSet(s.set)
}

// Intersects reports whether the sets share a column.
func (s ColSet) Intersects(other ColSet) bool {
	if s.set == nil || other.set == nil {
		return false
	}
	return s.set.IntersectionCardinality(other.set) > 0
}

// Len returns the number of columns in the set.
func (s ColSet) Len() int {
	if s.set == nil {
		return 0
	}
	return int(s.set.Count())
}

// Empty reports whether the set has no columns.
func (s ColSet) Empty() bool {
	return s.Len() == 0
}

// ForEach calls f for each column in ascending order.
func (s ColSet) ForEach(f func(ColumnId)) {
	if s.set == nil {
		return
	}
	for i, ok := s.set.NextSet(0); ok; i, ok = s.set.NextSet(i + 1) {
		f(ColumnId(i))
	}
}

func (s ColSet) String() string {
	var b strings.Builder
	b.WriteByte('(')
	sep := ""
	s.ForEach(func(c ColumnId) {
		fmt.Fprintf(&b, "%s%d", sep, c)
		sep = ","
	})
	b.WriteByte(')')
	return b.String()
}
