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
	"github.com/soradb/cascades/sql"
)

// nullPredicateSelectivity is the fraction of rows assumed to survive one
// predicate conjunct. It is applied to every conjunct whatever its kind;
// column statistics are not consulted.
const nullPredicateSelectivity = 0.1

// Statistics is the group statistics record of this catalog.
type Statistics struct {
	rowCount uint64
}

// NewStatistics builds a statistics record.
func NewStatistics(rowCount uint64) *Statistics {
	return &Statistics{rowCount: rowCount}
}

// RowCount implements sql.Statistics.
func (s *Statistics) RowCount() uint64 {
	return s.rowCount
}

// deriveScanStats reads a relation's base statistics through the metadata
// accessor.
func deriveScanStats(md *sql.MdAccessor, table TableDesc) (*Statistics, error) {
	relMd, err := table.Relation(md)
	if err != nil {
		return nil, err
	}
	raw, err := md.RetrieveMetadata(relMd.StatsId())
	if err != nil {
		return nil, err
	}
	stats, ok := raw.(*RelationStats)
	if !ok {
		return nil, sql.ErrMetadataNotFound.New(relMd.StatsId())
	}
	return NewStatistics(stats.RowCount()), nil
}

// applySelectivity reduces a row count by the default per-conjunct
// selectivity, once per predicate conjunct.
func applySelectivity(rows uint64, conjuncts int) uint64 {
	out := float64(rows)
	for i := 0; i < conjuncts; i++ {
		out *= nullPredicateSelectivity
	}
	return uint64(out)
}
