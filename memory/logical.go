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

// Operator ids of this catalog.
const (
	LogicalScanId sql.OperatorId = iota
	LogicalFilterId
	LogicalProjectId
	LogicalIndexScanId
	PhysicalScanId
	PhysicalFilterId
	PhysicalProjectId
	PhysicalSortId
	PhysicalIndexScanId
)

// TableDesc names a relation by its metadata id.
type TableDesc struct {
	MdId sql.MdId
}

// NewTableDesc references a relation.
func NewTableDesc(mdid sql.MdId) TableDesc {
	return TableDesc{MdId: mdid}
}

// Relation resolves the relation's metadata.
func (t TableDesc) Relation(md *sql.MdAccessor) (*RelationMetadata, error) {
	raw, err := md.RetrieveMetadata(t.MdId)
	if err != nil {
		return nil, err
	}
	rel, ok := raw.(*RelationMetadata)
	if !ok {
		return nil, sql.ErrMetadataNotFound.New(t.MdId)
	}
	return rel, nil
}

// IndexDesc is an index resolved from its metadata, carried on index scan
// operators.
type IndexDesc struct {
	MdId         sql.MdId
	Name         string
	IndexType    IndexType
	KeyColumns   []sql.ColumnId
	IncludedCols []sql.ColumnId
}

// NewIndexDesc builds an index descriptor from index metadata.
func NewIndexDesc(md *IndexMd) IndexDesc {
	return IndexDesc{
		MdId:         md.MdId(),
		Name:         md.Name(),
		IndexType:    md.IndexType(),
		KeyColumns:   md.KeyColumns(),
		IncludedCols: md.IncludedColumns(),
	}
}

// KeySet returns the key columns as a set.
func (i IndexDesc) KeySet() sql.ColSet {
	return sql.NewColSet(i.KeyColumns...)
}

// StoredSet returns every column the index stores.
func (i IndexDesc) StoredSet() sql.ColSet {
	s := sql.NewColSet(i.KeyColumns...)
	for _, c := range i.IncludedCols {
		s.Add(c)
	}
	return s
}

func (i IndexDesc) equal(other IndexDesc) bool {
	if i.MdId != other.MdId || i.Name != other.Name || i.IndexType != other.IndexType {
		return false
	}
	return columnIdsEqual(i.KeyColumns, other.KeyColumns) && columnIdsEqual(i.IncludedCols, other.IncludedCols)
}

func columnIdsEqual(a, b []sql.ColumnId) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func columnVarsEqual(a, b []*ColumnVar) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Id != b[i].Id {
			return false
		}
	}
	return true
}

func columnVarSet(cols []*ColumnVar) sql.ColSet {
	var s sql.ColSet
	for _, c := range cols {
		c.UsedColumns(&s)
	}
	return s
}

// LogicalScan reads a relation in full.
type LogicalScan struct {
	Table      TableDesc
	OutputCols []*ColumnVar
}

// NewLogicalScan builds a scan of the relation producing the given columns.
func NewLogicalScan(table TableDesc, outputCols []*ColumnVar) *LogicalScan {
	return &LogicalScan{Table: table, OutputCols: outputCols}
}

func (s *LogicalScan) Name() string { return "logicalscan" }
func (s *LogicalScan) OperatorId() sql.OperatorId { return LogicalScanId }
func (s *LogicalScan) Arity() int { return 0 }

func (s *LogicalScan) Equal(other sql.Operator) bool {
	o, ok := other.(*LogicalScan)
	return ok && s.Table == o.Table && columnVarsEqual(s.OutputCols, o.OutputCols)
}

func (s *LogicalScan) DeriveStatistics(md *sql.MdAccessor, childStats []sql.Statistics) (sql.Statistics, error) {
	return deriveScanStats(md, s.Table)
}

func (s *LogicalScan) DeriveOutputColumns(childCols []sql.ColSet) sql.ColSet {
	return columnVarSet(s.OutputCols)
}

// LogicalFilter keeps the rows of its input satisfying a predicate.
type LogicalFilter struct {
	Predicate sql.ScalarExpr
}

// NewLogicalFilter builds a filter over a boolean predicate.
func NewLogicalFilter(predicate sql.ScalarExpr) *LogicalFilter {
	if !predicate.IsBoolean() {
		panic("filter over a non-boolean predicate")
	}
	return &LogicalFilter{Predicate: predicate}
}

func (f *LogicalFilter) Name() string { return "logicalfilter" }
func (f *LogicalFilter) OperatorId() sql.OperatorId { return LogicalFilterId }
func (f *LogicalFilter) Arity() int { return 1 }

func (f *LogicalFilter) Equal(other sql.Operator) bool {
	o, ok := other.(*LogicalFilter)
	return ok && f.Predicate.Equal(o.Predicate)
}

func (f *LogicalFilter) DeriveStatistics(md *sql.MdAccessor, childStats []sql.Statistics) (sql.Statistics, error) {
	conjuncts := SplitConjuncts(f.Predicate)
	return NewStatistics(applySelectivity(childStats[0].RowCount(), len(conjuncts))), nil
}

func (f *LogicalFilter) DeriveOutputColumns(childCols []sql.ColSet) sql.ColSet {
	return childCols[0]
}

// LogicalProject narrows its input to a list of projections.
type LogicalProject struct {
	Projections []sql.ScalarExpr
}

// NewLogicalProject builds a projection.
func NewLogicalProject(projections []sql.ScalarExpr) *LogicalProject {
	return &LogicalProject{Projections: projections}
}

func (p *LogicalProject) Name() string { return "logicalproject" }
func (p *LogicalProject) OperatorId() sql.OperatorId { return LogicalProjectId }
func (p *LogicalProject) Arity() int { return 1 }

func (p *LogicalProject) Equal(other sql.Operator) bool {
	o, ok := other.(*LogicalProject)
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

func (p *LogicalProject) DeriveStatistics(md *sql.MdAccessor, childStats []sql.Statistics) (sql.Statistics, error) {
	return NewStatistics(childStats[0].RowCount()), nil
}

func (p *LogicalProject) DeriveOutputColumns(childCols []sql.ColSet) sql.ColSet {
	var s sql.ColSet
	for _, e := range p.Projections {
		e.UsedColumns(&s)
	}
	return s
}

// LogicalIndexScan reads a relation through an index, applying the part of
// a predicate the index keys cover.
type LogicalIndexScan struct {
	Index      IndexDesc
	Table      TableDesc
	OutputCols []*ColumnVar
	Predicate  []sql.ScalarExpr
}

// NewLogicalIndexScan builds an index scan from resolved index metadata.
func NewLogicalIndexScan(index IndexDesc, table TableDesc, outputCols []*ColumnVar, predicate []sql.ScalarExpr) *LogicalIndexScan {
	return &LogicalIndexScan{
		Index:      index,
		Table:      table,
		OutputCols: outputCols,
		Predicate:  predicate,
	}
}

func (s *LogicalIndexScan) Name() string { return "logicalindexscan" }
func (s *LogicalIndexScan) OperatorId() sql.OperatorId { return LogicalIndexScanId }
func (s *LogicalIndexScan) Arity() int { return 0 }

func (s *LogicalIndexScan) Equal(other sql.Operator) bool {
	o, ok := other.(*LogicalIndexScan)
	if !ok || !s.Index.equal(o.Index) || s.Table != o.Table || !columnVarsEqual(s.OutputCols, o.OutputCols) {
		return false
	}
	return scalarsEqual(s.Predicate, o.Predicate)
}

func (s *LogicalIndexScan) DeriveStatistics(md *sql.MdAccessor, childStats []sql.Statistics) (sql.Statistics, error) {
	base, err := deriveScanStats(md, s.Table)
	if err != nil {
		return nil, err
	}
	return NewStatistics(applySelectivity(base.RowCount(), len(s.Predicate))), nil
}

func (s *LogicalIndexScan) DeriveOutputColumns(childCols []sql.ColSet) sql.ColSet {
	return columnVarSet(s.OutputCols)
}

func (s *LogicalIndexScan) String() string {
	return fmt.Sprintf("logicalindexscan: %s", s.Index.Name)
}

func scalarsEqual(a, b []sql.ScalarExpr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
