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

package cascades_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	cascades "github.com/soradb/cascades"
	"github.com/soradb/cascades/memory"
	"github.com/soradb/cascades/sql"
	"github.com/soradb/cascades/sql/rule"
)

// The fixture schema: table t1(c1..c6) with 9011 rows and a btree index
// IDX_1 over key {c1} storing {c1,c2,c3}. Column ids are zero-based: c1 is
// column 0.
const (
	relStatsMdId sql.MdId = 1
	relMdId      sql.MdId = 2
	colStatsMdId sql.MdId = 3
	indexMdId    sql.MdId = 4
)

func testMdAccessor() *sql.MdAccessor {
	provider := memory.NewProvider()

	provider.Add(memory.NewRelationStats(relStatsMdId, "t1", 9011, []sql.MdId{colStatsMdId}))
	provider.Add(memory.NewIndexMd(indexMdId, "IDX_1", []sql.ColumnId{0}, []sql.ColumnId{0, 1, 2}))

	columns := []memory.ColumnMetadata{
		memory.NewColumnMetadata("c1", 0, true, 4, memory.NewDatum(int32(0))),
		memory.NewColumnMetadata("c2", 1, true, 4, memory.NewDatum(int32(0))),
		memory.NewColumnMetadata("c3", 2, false, 4, memory.NewDatum(int32(0))),
		memory.NewColumnMetadata("c4", 3, false, 4, memory.NewDatum(int32(0))),
		memory.NewColumnMetadata("c5", 4, false, 4, memory.NewDatum(int32(0))),
		memory.NewColumnMetadata("c6", 5, false, 4, memory.NewDatum(int32(0))),
	}
	provider.Add(memory.NewRelationMetadata(relMdId, "t1", columns, relStatsMdId, []memory.IndexInfo{
		memory.NewIndexInfo(indexMdId),
	}))

	histogram := memory.NewHistogram([]memory.Bucket{
		memory.NewBucket(memory.NewDatum(0), memory.NewDatum(1), 1, 2),
		memory.NewBucket(memory.NewDatum(1), memory.NewDatum(3), 3, 3),
	})
	provider.Add(memory.NewColumnStats(colStatsMdId, 0, "c1", memory.NewDatum(0), memory.NewDatum(1), 0, histogram))

	return sql.NewMdAccessor(provider)
}

func scanCols() []*memory.ColumnVar {
	return []*memory.ColumnVar{
		memory.NewColumnVar(0),
		memory.NewColumnVar(1),
		memory.NewColumnVar(2),
	}
}

func projections() []sql.ScalarExpr {
	return []sql.ScalarExpr{
		memory.NewColumnVar(1),
		memory.NewColumnVar(2),
	}
}

func isNullPredicate(cols ...sql.ColumnId) sql.ScalarExpr {
	conjuncts := make([]sql.ScalarExpr, len(cols))
	for i, c := range cols {
		conjuncts[i] = memory.NewIsNull(memory.NewColumnVar(c))
	}
	return memory.JoinConjuncts(conjuncts)
}

// scanFilterProject builds π(c2,c3)(σ(pred)(t1)).
func scanFilterProject(predCols ...sql.ColumnId) *sql.LogicalPlan {
	scan := sql.NewLogicalPlan(memory.NewLogicalScan(memory.NewTableDesc(relMdId), scanCols()), nil, nil)
	filter := sql.NewLogicalPlan(memory.NewLogicalFilter(isNullPredicate(predCols...)), []*sql.LogicalPlan{scan}, nil)
	return sql.NewLogicalPlan(memory.NewLogicalProject(projections()), []*sql.LogicalPlan{filter}, nil)
}

func orderedBy(col sql.ColumnId) *sql.PhysicalProps {
	return memory.SortedBy(memory.Ordering{Col: col, Ascending: true, NullsFirst: true})
}

func idx1Desc() memory.IndexDesc {
	return memory.NewIndexDesc(memory.NewIndexMd(indexMdId, "IDX_1", []sql.ColumnId{0}, []sql.ColumnId{0, 1, 2}))
}

func physIndexScan(predCols ...sql.ColumnId) *sql.PhysicalPlan {
	pred := make([]sql.ScalarExpr, len(predCols))
	for i, c := range predCols {
		pred[i] = memory.NewIsNull(memory.NewColumnVar(c))
	}
	op := memory.NewPhysicalIndexScan(idx1Desc(), memory.NewTableDesc(relMdId), scanCols(), pred)
	return sql.NewPhysicalPlan(op, nil)
}

func physScan() *sql.PhysicalPlan {
	return sql.NewPhysicalPlan(memory.NewPhysicalScan(memory.NewTableDesc(relMdId), scanCols()), nil)
}

func physFilter(input *sql.PhysicalPlan, predCols ...sql.ColumnId) *sql.PhysicalPlan {
	return sql.NewPhysicalPlan(memory.NewPhysicalFilter(isNullPredicate(predCols...)), []*sql.PhysicalPlan{input})
}

func physProject(input *sql.PhysicalPlan) *sql.PhysicalPlan {
	return sql.NewPhysicalPlan(memory.NewPhysicalProject(projections()), []*sql.PhysicalPlan{input})
}

func physSort(input *sql.PhysicalPlan, col sql.ColumnId) *sql.PhysicalPlan {
	op := memory.NewPhysicalSort(memory.Ordering{Col: col, Ascending: true, NullsFirst: true})
	return sql.NewPhysicalPlan(op, []*sql.PhysicalPlan{input})
}

func TestOptimizeIndexScans(t *testing.T) {
	tests := []struct {
		name     string
		plan     *sql.LogicalPlan
		required *sql.PhysicalProps
		expected *sql.PhysicalPlan
	}{
		{
			// select c2, c3 from t1 where c1 is null order by c1: the index
			// covers both the filter and the order.
			name:     "index covers filter and order",
			plan:     scanFilterProject(0),
			required: orderedBy(0),
			expected: physProject(physIndexScan(0)),
		},
		{
			// select c2, c3 from t1 where c2 is null order by c1: the index
			// covers nothing; sort enforced at the root.
			name:     "index cannot satisfy filter",
			plan:     scanFilterProject(1),
			required: orderedBy(0),
			expected: physSort(physProject(physFilter(physScan(), 1)), 0),
		},
		{
			// select c2, c3 from t1 where c1 is null and c2 is null order by
			// c1: the index covers half the filter and the order.
			name:     "index partially covers filter",
			plan:     scanFilterProject(0, 1),
			required: orderedBy(0),
			expected: physProject(physFilter(physIndexScan(0), 1)),
		},
		{
			// select c2, c3 from t1 where c1 is null order by c2: the index
			// covers the filter but not the order; the sort lands directly
			// over the index scan.
			name:     "index covers filter, order differs",
			plan:     scanFilterProject(0),
			required: orderedBy(1),
			expected: physProject(physSort(physIndexScan(0), 1)),
		},
		{
			// select c2, c3 from t1 where c1 is null and c2 is null order by
			// c2: partial cover with an alternate sort key; sorting the
			// filtered rows at the root is cheapest.
			name:     "partial cover with alternate sort key",
			plan:     scanFilterProject(0, 1),
			required: orderedBy(1),
			expected: physSort(physProject(physFilter(physIndexScan(0), 1)), 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := cascades.NewDefault()
			plan, err := o.Optimize(sql.NewEmptyContext(), tt.plan, tt.required, testMdAccessor(), memory.NewRuleSet())
			require.NoError(t, err)
			require.Equal(t, tt.expected.String(), plan.String())
			require.True(t, tt.expected.Equal(plan), "plan operators differ:\n%s", plan)
			assertArities(t, plan)
		})
	}
}

// assertArities checks that every node of the output plan has as many
// children as its operator declares.
func assertArities(t *testing.T, plan *sql.PhysicalPlan) {
	t.Helper()
	require.Equal(t, plan.Operator().Arity(), len(plan.Inputs()))
	for _, in := range plan.Inputs() {
		assertArities(t, in)
	}
}

func TestOptimizeDeterministic(t *testing.T) {
	o := cascades.NewDefault()
	var prev *sql.PhysicalPlan
	for i := 0; i < 3; i++ {
		plan, err := o.Optimize(sql.NewEmptyContext(), scanFilterProject(0, 1), orderedBy(1), testMdAccessor(), memory.NewRuleSet())
		require.NoError(t, err)
		if prev != nil {
			require.True(t, prev.Equal(plan), "optimization is not deterministic:\n%s\nvs\n%s", prev, plan)
		}
		prev = plan
	}
}

func TestOptimizeEmptyRuleSet(t *testing.T) {
	o := cascades.NewDefault()
	_, err := o.Optimize(sql.NewEmptyContext(), scanFilterProject(0), orderedBy(0), testMdAccessor(), rule.NewSet())
	require.Error(t, err)
	require.True(t, sql.ErrNoPlan.Is(err))
}

func TestOptimizeNoRequirement(t *testing.T) {
	o := cascades.NewDefault()
	plan, err := o.Optimize(sql.NewEmptyContext(), scanFilterProject(0), nil, testMdAccessor(), memory.NewRuleSet())
	require.NoError(t, err)
	require.True(t, physProject(physIndexScan(0)).Equal(plan), "unexpected plan:\n%s", plan)
}

func TestOptimizeMalformedPlan(t *testing.T) {
	o := cascades.NewDefault()
	// A filter with no input violates the operator's declared arity.
	malformed := sql.NewLogicalPlan(memory.NewLogicalFilter(isNullPredicate(0)), nil, nil)
	_, err := o.Optimize(sql.NewEmptyContext(), malformed, nil, testMdAccessor(), memory.NewRuleSet())
	require.Error(t, err)
	require.True(t, sql.ErrMalformedPlan.Is(err))
}
