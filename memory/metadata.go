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

// Provider is an in-memory metadata provider backing sql.MdAccessor.
type Provider struct {
	objects map[sql.MdId]sql.Metadata
}

// NewProvider returns an empty provider.
func NewProvider() *Provider {
	return &Provider{objects: make(map[sql.MdId]sql.Metadata)}
}

// Add registers a metadata object under its own id.
func (p *Provider) Add(md sql.Metadata) {
	p.objects[md.MdId()] = md
}

// RetrieveMetadata implements sql.MdProvider.
func (p *Provider) RetrieveMetadata(id sql.MdId) (sql.Metadata, error) {
	md, ok := p.objects[id]
	if !ok {
		return nil, sql.ErrMetadataNotFound.New(id)
	}
	return md, nil
}

// RelationStats carries table-level statistics.
type RelationStats struct {
	mdid        sql.MdId
	name        string
	rowCount    uint64
	isEmpty     bool
	colStatsIds []sql.MdId
}

// NewRelationStats builds table statistics metadata.
func NewRelationStats(mdid sql.MdId, name string, rowCount uint64, colStatsIds []sql.MdId) *RelationStats {
	return &RelationStats{
		mdid:        mdid,
		name:        name,
		rowCount:    rowCount,
		isEmpty:     rowCount == 0,
		colStatsIds: colStatsIds,
	}
}

func (s *RelationStats) MdId() sql.MdId { return s.mdid }

// Name returns the relation name.
func (s *RelationStats) Name() string { return s.name }

// RowCount returns the relation's row count.
func (s *RelationStats) RowCount() uint64 { return s.rowCount }

// IsEmpty reports whether the relation holds no rows.
func (s *RelationStats) IsEmpty() bool { return s.isEmpty }

// ColStatsIds returns the ids of the per-column statistics records.
func (s *RelationStats) ColStatsIds() []sql.MdId { return s.colStatsIds }

// ColumnMetadata describes one column of a relation.
type ColumnMetadata struct {
	Name       string
	Attno      sql.ColumnId
	Nullable   bool
	Width      uint32
	DefaultVal Datum
}

// NewColumnMetadata builds a column descriptor.
func NewColumnMetadata(name string, attno sql.ColumnId, nullable bool, width uint32, defaultVal Datum) ColumnMetadata {
	return ColumnMetadata{
		Name:       name,
		Attno:      attno,
		Nullable:   nullable,
		Width:      width,
		DefaultVal: defaultVal,
	}
}

// IndexInfo points at an index's metadata record from its relation.
type IndexInfo struct {
	mdid sql.MdId
}

// NewIndexInfo references index metadata by id.
func NewIndexInfo(mdid sql.MdId) IndexInfo {
	return IndexInfo{mdid: mdid}
}

// MdId returns the id of the index metadata record.
func (i IndexInfo) MdId() sql.MdId { return i.mdid }

// RelationMetadata describes a relation: columns, statistics linkage and
// indexes.
type RelationMetadata struct {
	mdid    sql.MdId
	name    string
	columns []ColumnMetadata
	statsId sql.MdId
	indexes []IndexInfo
}

// NewRelationMetadata builds a relation descriptor.
func NewRelationMetadata(mdid sql.MdId, name string, columns []ColumnMetadata, statsId sql.MdId, indexes []IndexInfo) *RelationMetadata {
	return &RelationMetadata{
		mdid:    mdid,
		name:    name,
		columns: columns,
		statsId: statsId,
		indexes: indexes,
	}
}

func (r *RelationMetadata) MdId() sql.MdId { return r.mdid }

// Name returns the relation name.
func (r *RelationMetadata) Name() string { return r.name }

// Columns returns the relation's column descriptors.
func (r *RelationMetadata) Columns() []ColumnMetadata { return r.columns }

// StatsId returns the id of the relation's statistics record.
func (r *RelationMetadata) StatsId() sql.MdId { return r.statsId }

// Indexes returns the relation's index references.
func (r *RelationMetadata) Indexes() []IndexInfo { return r.indexes }

// IndexType enumerates index access structures.
type IndexType uint8

const (
	// Btree indexes deliver their key order.
	Btree IndexType = iota
)

// IndexMd describes an index: its key columns and the columns it stores.
type IndexMd struct {
	mdid         sql.MdId
	name         string
	indexType    IndexType
	keyColumns   []sql.ColumnId
	includedCols []sql.ColumnId
}

// NewIndexMd builds an index descriptor.
func NewIndexMd(mdid sql.MdId, name string, keyColumns, includedCols []sql.ColumnId) *IndexMd {
	return &IndexMd{
		mdid:         mdid,
		name:         name,
		indexType:    Btree,
		keyColumns:   keyColumns,
		includedCols: includedCols,
	}
}

func (i *IndexMd) MdId() sql.MdId { return i.mdid }

// Name returns the index name.
func (i *IndexMd) Name() string { return i.name }

// IndexType returns the index access structure.
func (i *IndexMd) IndexType() IndexType { return i.indexType }

// KeyColumns returns the ordered key columns.
func (i *IndexMd) KeyColumns() []sql.ColumnId { return i.keyColumns }

// IncludedColumns returns the columns stored in the index.
func (i *IndexMd) IncludedColumns() []sql.ColumnId { return i.includedCols }

// Bucket is one histogram bucket: a value range with a row count and a
// distinct count.
type Bucket struct {
	Lower    Datum
	Upper    Datum
	NumRows  uint64
	Distinct uint64
}

// NewBucket builds a histogram bucket.
func NewBucket(lower, upper Datum, numRows, distinct uint64) Bucket {
	return Bucket{Lower: lower, Upper: upper, NumRows: numRows, Distinct: distinct}
}

// Histogram is an equi-depth value distribution over one column.
type Histogram struct {
	buckets []Bucket
}

// NewHistogram builds a histogram from its buckets.
func NewHistogram(buckets []Bucket) *Histogram {
	return &Histogram{buckets: buckets}
}

// Buckets returns the histogram's buckets.
func (h *Histogram) Buckets() []Bucket { return h.buckets }

// EstimateRows estimates how many rows fall inside [lower, upper]. Buckets
// partially covered by the range contribute a linear fraction of their
// rows.
func (h *Histogram) EstimateRows(lower, upper Datum) uint64 {
	if h == nil || lower.Compare(upper) > 0 {
		return 0
	}
	var rows float64
	for _, b := range h.buckets {
		rows += b.overlapRows(lower, upper)
	}
	return uint64(rows)
}

func (b Bucket) overlapRows(lower, upper Datum) float64 {
	bl, err1 := b.Lower.Float64()
	bu, err2 := b.Upper.Float64()
	lo, err3 := lower.Float64()
	hi, err4 := upper.Float64()
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return 0
	}
	if hi < bl || lo > bu {
		return 0
	}
	if bu == bl {
		return float64(b.NumRows)
	}
	from := max64(lo, bl)
	to := min64(hi, bu)
	return float64(b.NumRows) * (to - from) / (bu - bl)
}

func max64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// ColumnStats carries per-column statistics.
type ColumnStats struct {
	mdid      sql.MdId
	colId     sql.ColumnId
	name      string
	min       Datum
	max       Datum
	nullCount uint64
	histogram *Histogram
}

// NewColumnStats builds a column statistics record.
func NewColumnStats(mdid sql.MdId, colId sql.ColumnId, name string, min, max Datum, nullCount uint64, histogram *Histogram) *ColumnStats {
	return &ColumnStats{
		mdid:      mdid,
		colId:     colId,
		name:      name,
		min:       min,
		max:       max,
		nullCount: nullCount,
		histogram: histogram,
	}
}

func (c *ColumnStats) MdId() sql.MdId { return c.mdid }

// ColId returns the column the record describes.
func (c *ColumnStats) ColId() sql.ColumnId { return c.colId }

// Name returns the column name.
func (c *ColumnStats) Name() string { return c.name }

// Min returns the smallest observed value.
func (c *ColumnStats) Min() Datum { return c.min }

// Max returns the largest observed value.
func (c *ColumnStats) Max() Datum { return c.max }

// NullCount returns the number of NULL values.
func (c *ColumnStats) NullCount() uint64 { return c.nullCount }

// Histogram returns the column's value distribution, or nil.
func (c *ColumnStats) Histogram() *Histogram { return c.histogram }
