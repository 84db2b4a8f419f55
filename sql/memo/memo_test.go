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

package memo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soradb/cascades/memory"
	"github.com/soradb/cascades/sql"
	"github.com/soradb/cascades/sql/memo"
)

const (
	relStatsMdId sql.MdId = 1
	relMdId      sql.MdId = 2
)

func testMdAccessor() *sql.MdAccessor {
	provider := memory.NewProvider()
	provider.Add(memory.NewRelationStats(relStatsMdId, "t1", 9011, nil))
	provider.Add(memory.NewRelationMetadata(relMdId, "t1", nil, relStatsMdId, nil))
	return sql.NewMdAccessor(provider)
}

func scanNode() *sql.LogicalPlan {
	cols := []*memory.ColumnVar{
		memory.NewColumnVar(0),
		memory.NewColumnVar(1),
		memory.NewColumnVar(2),
	}
	return sql.NewLogicalPlan(memory.NewLogicalScan(memory.NewTableDesc(relMdId), cols), nil, nil)
}

func filterNode(input *sql.LogicalPlan, col sql.ColumnId) *sql.LogicalPlan {
	pred := memory.NewIsNull(memory.NewColumnVar(col))
	return sql.NewLogicalPlan(memory.NewLogicalFilter(pred), []*sql.LogicalPlan{input}, nil)
}

func projectNode(input *sql.LogicalPlan) *sql.LogicalPlan {
	projections := []sql.ScalarExpr{
		memory.NewColumnVar(1),
		memory.NewColumnVar(2),
	}
	return sql.NewLogicalPlan(memory.NewLogicalProject(projections), []*sql.LogicalPlan{input}, nil)
}

func TestMemoInit(t *testing.T) {
	m := memo.NewMemo(testMdAccessor())
	root, err := m.Init(projectNode(filterNode(scanNode(), 0)))
	require.NoError(t, err)
	require.Equal(t, m.Root(), root)
	require.Len(t, m.Groups(), 3)

	require.Equal(t, `memo:
├── G1: (logicalscan)
├── G2: (logicalfilter 1)
└── G3: (logicalproject 2)
`, m.String())

	groups := m.Groups()
	require.Equal(t, "(0,1,2)", groups[0].RelProps().OutputCols.String())
	require.Equal(t, "(0,1,2)", groups[1].RelProps().OutputCols.String())
	require.Equal(t, "(1,2)", groups[2].RelProps().OutputCols.String())
}

func TestMemoInitArityMismatch(t *testing.T) {
	m := memo.NewMemo(testMdAccessor())
	pred := memory.NewIsNull(memory.NewColumnVar(0))
	malformed := sql.NewLogicalPlan(memory.NewLogicalFilter(pred), nil, nil)
	_, err := m.Init(malformed)
	require.Error(t, err)
	require.True(t, sql.ErrMalformedPlan.Is(err))
}

func TestInsertExprDedup(t *testing.T) {
	m := memo.NewMemo(testMdAccessor())
	root, err := m.Init(filterNode(scanNode(), 0))
	require.NoError(t, err)
	scanGrp := m.Groups()[0]

	phys := memory.NewPhysicalFilter(memory.NewIsNull(memory.NewColumnVar(0)))
	e1, added, err := m.InsertExpr(memo.NewExpr(phys, scanGrp), root)
	require.NoError(t, err)
	require.True(t, added)

	e2, added, err := m.InsertExpr(memo.NewExpr(phys, scanGrp), root)
	require.NoError(t, err)
	require.False(t, added)
	require.Equal(t, e1, e2)
	require.Len(t, root.Physical(), 1)
}

func TestInsertExprCrossGroupDuplicate(t *testing.T) {
	m := memo.NewMemo(testMdAccessor())
	root, err := m.Init(filterNode(scanNode(), 0))
	require.NoError(t, err)
	scanGrp := m.Groups()[0]

	// The scan's founding expression already lives in G1; submitting an
	// equal expression to the filter group would duplicate it across
	// groups.
	cols := []*memory.ColumnVar{
		memory.NewColumnVar(0),
		memory.NewColumnVar(1),
		memory.NewColumnVar(2),
	}
	dup := memory.NewLogicalScan(memory.NewTableDesc(relMdId), cols)
	_, _, err = m.InsertExpr(memo.NewExpr(dup), root)
	require.Error(t, err)
	require.True(t, sql.ErrInvariantViolation.Is(err))
	require.Len(t, scanGrp.Logical(), 1)
}

func TestNewExprGroupReuse(t *testing.T) {
	m := memo.NewMemo(testMdAccessor())
	_, err := m.Init(scanNode())
	require.NoError(t, err)

	cols := []*memory.ColumnVar{memory.NewColumnVar(0)}
	e := memo.NewExpr(memory.NewLogicalScan(memory.NewTableDesc(relMdId), cols))
	g1 := m.NewExprGroup(e)
	g2 := m.NewExprGroup(e)
	require.Equal(t, g1, g2)
	require.Len(t, m.Groups(), 2)
}

func TestGroupStats(t *testing.T) {
	m := memo.NewMemo(testMdAccessor())
	_, err := m.Init(filterNode(filterNode(scanNode(), 0), 1))
	require.NoError(t, err)
	groups := m.Groups()

	scanStats, err := m.GroupStats(groups[0])
	require.NoError(t, err)
	require.Equal(t, uint64(9011), scanStats.RowCount())

	innerStats, err := m.GroupStats(groups[1])
	require.NoError(t, err)
	require.Equal(t, uint64(901), innerStats.RowCount())

	outerStats, err := m.GroupStats(groups[2])
	require.NoError(t, err)
	require.Equal(t, uint64(90), outerStats.RowCount())

	// Statistics are derived once and memoized.
	again, err := m.GroupStats(groups[2])
	require.NoError(t, err)
	require.Same(t, outerStats, again)
}

func TestUpdateWinner(t *testing.T) {
	m := memo.NewMemo(testMdAccessor())
	root, err := m.Init(filterNode(scanNode(), 0))
	require.NoError(t, err)
	scanGrp := m.Groups()[0]

	pred := memory.NewIsNull(memory.NewColumnVar(0))
	early, _, err := m.InsertExpr(memo.NewExpr(memory.NewPhysicalFilter(pred), scanGrp), root)
	require.NoError(t, err)
	late, _, err := m.InsertExpr(memo.NewExpr(memory.NewPhysicalFilter(memory.NewIsNull(memory.NewColumnVar(1))), scanGrp), root)
	require.NoError(t, err)

	required := sql.EmptyProps()
	delivered := sql.EmptyProps()
	inputs := []*sql.PhysicalProps{sql.EmptyProps()}

	require.True(t, root.UpdateWinner(required, late, delivered, inputs, 10))
	require.Equal(t, late, root.Winner(required).Expr)

	// A higher cost never replaces the winner.
	require.False(t, root.UpdateWinner(required, early, delivered, inputs, 12))
	require.Equal(t, late, root.Winner(required).Expr)

	// An equal cost replaces the winner only for an earlier-inserted
	// expression.
	require.True(t, root.UpdateWinner(required, early, delivered, inputs, 10))
	require.Equal(t, early, root.Winner(required).Expr)
	require.False(t, root.UpdateWinner(required, late, delivered, inputs, 10))
	require.Equal(t, early, root.Winner(required).Expr)

	// A strictly lower cost always replaces the winner.
	require.True(t, root.UpdateWinner(required, late, delivered, inputs, 5))
	require.Equal(t, late, root.Winner(required).Expr)
	require.Equal(t, sql.Cost(5), root.Winner(required).Cost)
}

func TestExtractBestPlanNoPlan(t *testing.T) {
	m := memo.NewMemo(testMdAccessor())
	_, err := m.Init(filterNode(scanNode(), 0))
	require.NoError(t, err)
	_, err = m.ExtractBestPlan(sql.EmptyProps())
	require.Error(t, err)
	require.True(t, sql.ErrNoPlan.Is(err))
}

func TestExtractBestPlanMissingChildEntry(t *testing.T) {
	m := memo.NewMemo(testMdAccessor())
	root, err := m.Init(filterNode(scanNode(), 0))
	require.NoError(t, err)
	scanGrp := m.Groups()[0]

	pred := memory.NewIsNull(memory.NewColumnVar(0))
	pf, _, err := m.InsertExpr(memo.NewExpr(memory.NewPhysicalFilter(pred), scanGrp), root)
	require.NoError(t, err)

	// The winner references a child requirement the child never optimized.
	required := sql.EmptyProps()
	childReq := memory.SortedBy(memory.Ordering{Col: 0, Ascending: true, NullsFirst: true})
	require.True(t, root.UpdateWinner(required, pf, sql.EmptyProps(), []*sql.PhysicalProps{childReq}, 1))

	_, err = m.ExtractBestPlan(required)
	require.Error(t, err)
	require.True(t, sql.ErrInvariantViolation.Is(err))
}
