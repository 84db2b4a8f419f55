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
	"github.com/soradb/cascades/sql/memo"
	"github.com/soradb/cascades/sql/rule"
)

// Rule ids of this catalog.
const (
	IndexScanFromFilterId rule.Id = iota
	ImplementScanId
	ImplementFilterId
	ImplementProjectId
	ImplementIndexScanId
)

// NewRuleSet assembles the catalog's rules in registration order:
// exploration first, then implementation.
func NewRuleSet() *rule.Set {
	return rule.NewSet(
		&indexScanFromFilter{},
		&implementScan{},
		&implementFilter{},
		&implementProject{},
		&implementIndexScan{},
	)
}

// indexScanFromFilter rewrites Filter(Scan) into an index scan when one of
// the relation's indexes covers part of the predicate. Conjuncts the index
// keys cover move into the index scan; the rest stay behind in a residual
// filter over a fresh index scan group.
type indexScanFromFilter struct{}

func (r *indexScanFromFilter) Id() rule.Id { return IndexScanFromFilterId }
func (r *indexScanFromFilter) Kind() rule.Kind { return rule.Exploration }

func (r *indexScanFromFilter) Pattern() *memo.Pattern {
	return memo.NewPattern(LogicalFilterId, memo.NewPattern(LogicalScanId))
}

func (r *indexScanFromFilter) Transform(b *memo.Binding, ctx *rule.Context) ([]*memo.Expr, error) {
	filter := b.Expr.Operator().(*LogicalFilter)
	scan := b.Children[0].Expr.Operator().(*LogicalScan)

	relMd, err := scan.Table.Relation(ctx.MdAccessor)
	if err != nil {
		return nil, err
	}
	conjuncts := SplitConjuncts(filter.Predicate)
	outputSet := columnVarSet(scan.OutputCols)

	var out []*memo.Expr
	for _, info := range relMd.Indexes() {
		raw, err := ctx.MdAccessor.RetrieveMetadata(info.MdId())
		if err != nil {
			return nil, err
		}
		indexMd, ok := raw.(*IndexMd)
		if !ok {
			return nil, sql.ErrMetadataNotFound.New(info.MdId())
		}
		index := NewIndexDesc(indexMd)
		if !outputSet.SubsetOf(index.StoredSet()) {
			continue
		}

		keySet := index.KeySet()
		var covered, residual []sql.ScalarExpr
		for _, c := range conjuncts {
			var used sql.ColSet
			c.UsedColumns(&used)
			if used.SubsetOf(keySet) {
				covered = append(covered, c)
			} else {
				residual = append(residual, c)
			}
		}
		if len(covered) == 0 {
			continue
		}

		indexScan := NewLogicalIndexScan(index, scan.Table, scan.OutputCols, covered)
		if len(residual) == 0 {
			out = append(out, memo.NewExpr(indexScan))
			continue
		}
		indexGrp := ctx.Memo.NewExprGroup(memo.NewExpr(indexScan))
		out = append(out, memo.NewExpr(NewLogicalFilter(JoinConjuncts(residual)), indexGrp))
	}
	return out, nil
}

// implementScan implements LogicalScan as a full table scan.
type implementScan struct{}

func (r *implementScan) Id() rule.Id { return ImplementScanId }
func (r *implementScan) Kind() rule.Kind { return rule.Implementation }

func (r *implementScan) Pattern() *memo.Pattern {
	return memo.NewPattern(LogicalScanId)
}

func (r *implementScan) Transform(b *memo.Binding, ctx *rule.Context) ([]*memo.Expr, error) {
	scan := b.Expr.Operator().(*LogicalScan)
	return []*memo.Expr{memo.NewExpr(NewPhysicalScan(scan.Table, scan.OutputCols))}, nil
}

// implementFilter implements LogicalFilter over the same input group.
type implementFilter struct{}

func (r *implementFilter) Id() rule.Id { return ImplementFilterId }
func (r *implementFilter) Kind() rule.Kind { return rule.Implementation }

func (r *implementFilter) Pattern() *memo.Pattern {
	return memo.NewPattern(LogicalFilterId, memo.Any())
}

func (r *implementFilter) Transform(b *memo.Binding, ctx *rule.Context) ([]*memo.Expr, error) {
	filter := b.Expr.Operator().(*LogicalFilter)
	return []*memo.Expr{memo.NewExpr(NewPhysicalFilter(filter.Predicate), b.Expr.Children()[0])}, nil
}

// implementProject implements LogicalProject over the same input group.
type implementProject struct{}

func (r *implementProject) Id() rule.Id { return ImplementProjectId }
func (r *implementProject) Kind() rule.Kind { return rule.Implementation }

func (r *implementProject) Pattern() *memo.Pattern {
	return memo.NewPattern(LogicalProjectId, memo.Any())
}

func (r *implementProject) Transform(b *memo.Binding, ctx *rule.Context) ([]*memo.Expr, error) {
	project := b.Expr.Operator().(*LogicalProject)
	return []*memo.Expr{memo.NewExpr(NewPhysicalProject(project.Projections), b.Expr.Children()[0])}, nil
}

// implementIndexScan implements LogicalIndexScan as a btree index scan.
type implementIndexScan struct{}

func (r *implementIndexScan) Id() rule.Id { return ImplementIndexScanId }
func (r *implementIndexScan) Kind() rule.Kind { return rule.Implementation }

func (r *implementIndexScan) Pattern() *memo.Pattern {
	return memo.NewPattern(LogicalIndexScanId)
}

func (r *implementIndexScan) Transform(b *memo.Binding, ctx *rule.Context) ([]*memo.Expr, error) {
	scan := b.Expr.Operator().(*LogicalIndexScan)
	return []*memo.Expr{memo.NewExpr(NewPhysicalIndexScan(scan.Index, scan.Table, scan.OutputCols, scan.Predicate))}, nil
}
