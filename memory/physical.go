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
	"fmt"

	"github.com/soradb/cascades/sql"
)

// passThrough builds the requirement alternatives of a streaming unary
// operator: ask the child for the requested properties, or for nothing and
// let delivery checking sort it out.
func passThrough(requested *sql.PhysicalProps) [][]*sql.PhysicalProps {
	if requested.IsEmpty() {
		return [][]*sql.PhysicalProps{{sql.EmptyProps()}}
	}
	return [][]*sql.PhysicalProps{{requested}, {sql.EmptyProps()}}
}

// PhysicalScan is a full table scan.
type PhysicalScan struct {
	Table      TableDesc
	OutputCols []*ColumnVar
}

// NewPhysicalScan builds a table scan.
func NewPhysicalScan(table TableDesc, outputCols []*ColumnVar) *PhysicalScan {
	return &PhysicalScan{Table: table, OutputCols: outputCols}
}

func (s *PhysicalScan) Name() string { return "physicalscan" }
func (s *PhysicalScan) OperatorId() sql.OperatorId { return PhysicalScanId }
func (s *PhysicalScan) Arity() int { return 0 }

func (s *PhysicalScan) Equal(other sql.Operator) bool {
	o, ok := other.(*PhysicalScan)
	return ok && s.Table == o.Table && columnVarsEqual(s.OutputCols, o.OutputCols)
}

func (s *PhysicalScan) DeriveOutputProperties(childProps []*sql.PhysicalProps) *sql.PhysicalProps {
	return sql.EmptyProps()
}

func (s *PhysicalScan) RequiredProperties(requested *sql.PhysicalProps) [][]*sql.PhysicalProps {
	return [][]*sql.PhysicalProps{{}}
}

func (s *PhysicalScan) ComputeCost(childStats []sql.Statistics, stats sql.Statistics) sql.Cost {
	return sql.Cost(costScanInitFactor + float64(stats.RowCount())*costScanRowUnit)
}

// PhysicalFilter evaluates a predicate over every input row.
type PhysicalFilter struct {
	Predicate sql.ScalarExpr
}

// NewPhysicalFilter builds a filter execution operator.
func NewPhysicalFilter(predicate sql.ScalarExpr) *PhysicalFilter {
	if !predicate.IsBoolean() {
		panic("filter over a non-boolean predicate")
	}
	return &PhysicalFilter{Predicate: predicate}
}

func (f *PhysicalFilter) Name() string { return "physicalfilter" }
func (f *PhysicalFilter) OperatorId() sql.OperatorId { return PhysicalFilterId }
func (f *PhysicalFilter) Arity() int { return 1 }

func (f *PhysicalFilter) Equal(other sql.Operator) bool {
	o, ok := other.(*PhysicalFilter)
	return ok && f.Predicate.Equal(o.Predicate)
}

// DeriveOutputProperties passes the child's delivery through: filtering
// preserves the input's order.
func (f *PhysicalFilter) DeriveOutputProperties(childProps []*sql.PhysicalProps) *sql.PhysicalProps {
	return childProps[0]
}

func (f *PhysicalFilter) RequiredProperties(requested *sql.PhysicalProps) [][]*sql.PhysicalProps {
	return passThrough(requested)
}

func (f *PhysicalFilter) ComputeCost(childStats []sql.Statistics, stats sql.Statistics) sql.Cost {
	var cols sql.ColSet
	f.Predicate.UsedColumns(&cols)
	return sql.Cost(float64(stats.RowCount()) * float64(cols.Len()) * costFilterColRowUnit)
}

// PhysicalProject computes the projection list for every input row.
type PhysicalProject struct {
	Projections []sql.ScalarExpr
}

// NewPhysicalProject builds a projection execution operator.
func NewPhysicalProject(projections []sql.ScalarExpr) *PhysicalProject {
	return &PhysicalProject{Projections: projections}
}

func (p *PhysicalProject) Name() string { return "physicalproject" }
func (p *PhysicalProject) OperatorId() sql.OperatorId { return PhysicalProjectId }
func (p *PhysicalProject) Arity() int { return 1 }

func (p *PhysicalProject) Equal(other sql.Operator) bool {
	o, ok := other.(*PhysicalProject)
	if !ok || len(p.Projections) != len(o.Projections) {
		return false
	}
	for i, e := range p.Projections {
		if !e.Equal(o.Projections[i]) {
			return false
		}
	}
	return true
}

// DeriveOutputProperties passes the child's delivery through: projection
// streams rows in input order.
func (p *PhysicalProject) DeriveOutputProperties(childProps []*sql.PhysicalProps) *sql.PhysicalProps {
	return childProps[0]
}

func (p *PhysicalProject) RequiredProperties(requested *sql.PhysicalProps) [][]*sql.PhysicalProps {
	return passThrough(requested)
}

func (p *PhysicalProject) ComputeCost(childStats []sql.Statistics, stats sql.Statistics) sql.Cost {
	return sql.Cost(float64(stats.RowCount()) * costProjectRowUnit)
}

// PhysicalSort materializes its input and emits it in key order. Sorts
// enter plans as enforcers of order requirements.
type PhysicalSort struct {
	Orderings []Ordering
}

// NewPhysicalSort builds a sort over the given keys.
func NewPhysicalSort(orderings ...Ordering) *PhysicalSort {
	return &PhysicalSort{Orderings: orderings}
}

func (s *PhysicalSort) Name() string { return "physicalsort" }
func (s *PhysicalSort) OperatorId() sql.OperatorId { return PhysicalSortId }
func (s *PhysicalSort) Arity() int { return 1 }

func (s *PhysicalSort) Equal(other sql.Operator) bool {
	o, ok := other.(*PhysicalSort)
	if !ok || len(s.Orderings) != len(o.Orderings) {
		return false
	}
	for i, ord := range s.Orderings {
		if o.Orderings[i] != ord {
			return false
		}
	}
	return true
}

func (s *PhysicalSort) DeriveOutputProperties(childProps []*sql.PhysicalProps) *sql.PhysicalProps {
	return SortedBy(s.Orderings...)
}

func (s *PhysicalSort) RequiredProperties(requested *sql.PhysicalProps) [][]*sql.PhysicalProps {
	return [][]*sql.PhysicalProps{{sql.EmptyProps()}}
}

func (s *PhysicalSort) ComputeCost(childStats []sql.Statistics, stats sql.Statistics) sql.Cost {
	rows := stats.RowCount()
	return sql.Cost(float64(rows) * float64(ceilLog2(rows)) * costSortRowUnit)
}

func (s *PhysicalSort) String() string {
	return fmt.Sprintf("physicalsort: %s", NewOrderProp(s.Orderings...).Fingerprint())
}

// PhysicalIndexScan reads a relation through a btree index, delivering the
// index's key order.
type PhysicalIndexScan struct {
	Index      IndexDesc
	Table      TableDesc
	OutputCols []*ColumnVar
	Predicate  []sql.ScalarExpr
}

// NewPhysicalIndexScan builds an index scan execution operator.
func NewPhysicalIndexScan(index IndexDesc, table TableDesc, outputCols []*ColumnVar, predicate []sql.ScalarExpr) *PhysicalIndexScan {
	return &PhysicalIndexScan{
		Index:      index,
		Table:      table,
		OutputCols: outputCols,
		Predicate:  predicate,
	}
}

func (s *PhysicalIndexScan) Name() string { return "physicalindexscan" }
func (s *PhysicalIndexScan) OperatorId() sql.OperatorId { return PhysicalIndexScanId }
func (s *PhysicalIndexScan) Arity() int { return 0 }

func (s *PhysicalIndexScan) Equal(other sql.Operator) bool {
	o, ok := other.(*PhysicalIndexScan)
	if !ok || !s.Index.equal(o.Index) || s.Table != o.Table || !columnVarsEqual(s.OutputCols, o.OutputCols) {
		return false
	}
	return scalarsEqual(s.Predicate, o.Predicate)
}

// DeriveOutputProperties delivers the btree key order, ascending with
// NULLs first.
func (s *PhysicalIndexScan) DeriveOutputProperties(childProps []*sql.PhysicalProps) *sql.PhysicalProps {
	orderings := make([]Ordering, len(s.Index.KeyColumns))
	for i, col := range s.Index.KeyColumns {
		orderings[i] = Ordering{Col: col, Ascending: true, NullsFirst: true}
	}
	return SortedBy(orderings...)
}

func (s *PhysicalIndexScan) RequiredProperties(requested *sql.PhysicalProps) [][]*sql.PhysicalProps {
	return [][]*sql.PhysicalProps{{}}
}

func (s *PhysicalIndexScan) ComputeCost(childStats []sql.Statistics, stats sql.Statistics) sql.Cost {
	return sql.Cost(float64(stats.RowCount()) * costIndexScanRowUnit)
}

func (s *PhysicalIndexScan) String() string {
	return fmt.Sprintf("physicalindexscan: %s", s.Index.Name)
}
