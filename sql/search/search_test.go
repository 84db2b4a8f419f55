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

package search_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soradb/cascades/memory"
	"github.com/soradb/cascades/sql"
	"github.com/soradb/cascades/sql/memo"
	"github.com/soradb/cascades/sql/rule"
	"github.com/soradb/cascades/sql/search"
)

const (
	relStatsMdId sql.MdId = 1
	relMdId      sql.MdId = 2
	indexMdId    sql.MdId = 4
)

func testMdAccessor() *sql.MdAccessor {
	provider := memory.NewProvider()
	provider.Add(memory.NewRelationStats(relStatsMdId, "t1", 9011, nil))
	provider.Add(memory.NewIndexMd(indexMdId, "IDX_1", []sql.ColumnId{0}, []sql.ColumnId{0, 1, 2}))
	provider.Add(memory.NewRelationMetadata(relMdId, "t1", nil, relStatsMdId, []memory.IndexInfo{
		memory.NewIndexInfo(indexMdId),
	}))
	return sql.NewMdAccessor(provider)
}

func testPlan(predCols ...sql.ColumnId) *sql.LogicalPlan {
	cols := []*memory.ColumnVar{
		memory.NewColumnVar(0),
		memory.NewColumnVar(1),
		memory.NewColumnVar(2),
	}
	conjuncts := make([]sql.ScalarExpr, len(predCols))
	for i, c := range predCols {
		conjuncts[i] = memory.NewIsNull(memory.NewColumnVar(c))
	}
	scan := sql.NewLogicalPlan(memory.NewLogicalScan(memory.NewTableDesc(relMdId), cols), nil, nil)
	filter := sql.NewLogicalPlan(memory.NewLogicalFilter(memory.JoinConjuncts(conjuncts)), []*sql.LogicalPlan{scan}, nil)
	projections := []sql.ScalarExpr{memory.NewColumnVar(1), memory.NewColumnVar(2)}
	return sql.NewLogicalPlan(memory.NewLogicalProject(projections), []*sql.LogicalPlan{filter}, nil)
}

func runSearch(t *testing.T, plan *sql.LogicalPlan, required *sql.PhysicalProps, rules *rule.Set) (*memo.Memo, *search.Context) {
	t.Helper()
	m := memo.NewMemo(testMdAccessor())
	root, err := m.Init(plan)
	require.NoError(t, err)
	ctx := search.NewContext(sql.NewEmptyContext(), m, rules)
	ctx.Tasks.Push(search.NewOptimizeGroupTask(root, required))
	require.NoError(t, ctx.Tasks.Run(ctx))
	return m, ctx
}

// TestWinnersSound checks that every best-plan entry delivers what it
// promises and records the cost of the subtree it references: the local
// cost of the winning expression plus its children's winner costs.
func TestWinnersSound(t *testing.T) {
	required := memory.SortedBy(memory.Ordering{Col: 1, Ascending: true, NullsFirst: true})
	m, _ := runSearch(t, testPlan(0, 1), required, memory.NewRuleSet())

	rootWinner := m.Root().Winner(required)
	require.NotNil(t, rootWinner)
	require.True(t, rootWinner.Delivered.Satisfies(required))

	for _, g := range m.Groups() {
		for _, w := range g.Winners() {
			require.True(t, w.Delivered.Satisfies(w.Required),
				"group %d winner %s does not deliver %s", g.Id(), w.Expr, w.Required)

			stats, err := m.GroupStats(g)
			require.NoError(t, err)
			childStats := make([]sql.Statistics, len(w.Expr.Children()))
			for i, c := range w.Expr.Children() {
				childStats[i], err = m.GroupStats(c)
				require.NoError(t, err)
			}
			total := w.Expr.Physical().ComputeCost(childStats, stats)
			for i, c := range w.Expr.Children() {
				cw := c.Winner(w.InputReqs[i])
				require.NotNil(t, cw, "winner input requirement missing from child table")
				total = total.Add(cw.Cost)
			}
			require.Equal(t, w.Cost, total,
				"group %d winner %s cost mismatch", g.Id(), w.Expr)
		}
	}
}

// TestEnforcerPlacement checks that enforcers only enter source groups and
// the root group; streaming intermediates pass requirements through.
func TestEnforcerPlacement(t *testing.T) {
	required := memory.SortedBy(memory.Ordering{Col: 1, Ascending: true, NullsFirst: true})
	m, _ := runSearch(t, testPlan(0, 1), required, memory.NewRuleSet())

	for _, g := range m.Groups() {
		if g == m.Root() || g.HasLeafPhysical() {
			continue
		}
		for _, e := range g.Physical() {
			require.False(t, e.IsEnforcer(),
				"group %d is neither a source nor the root but hosts enforcer %s", g.Id(), e)
		}
	}
}

// countingRule wraps a rule and counts transform invocations per
// expression.
type countingRule struct {
	rule.Rule
	calls map[*memo.GroupExpr]int
}

func (r *countingRule) Transform(b *memo.Binding, ctx *rule.Context) ([]*memo.Expr, error) {
	r.calls[b.Expr]++
	return r.Rule.Transform(b, ctx)
}

// TestRuleAppliedOncePerExpression checks the firing bound: a rule is
// applied at most once to a given expression, no matter how many
// requirements visit the group.
func TestRuleAppliedOncePerExpression(t *testing.T) {
	var counters []*countingRule
	var rules []rule.Rule
	for _, r := range memory.NewRuleSet().Rules() {
		c := &countingRule{Rule: r, calls: make(map[*memo.GroupExpr]int)}
		counters = append(counters, c)
		rules = append(rules, c)
	}

	required := memory.SortedBy(memory.Ordering{Col: 1, Ascending: true, NullsFirst: true})
	runSearch(t, testPlan(0, 1), required, rule.NewSet(rules...))

	for _, c := range counters {
		for e, n := range c.calls {
			require.LessOrEqual(t, n, 1, "rule %d fired %d times on %s", c.Id(), n, e)
		}
	}
}

// TestSearchWithoutRules leaves every group without a physical winner.
func TestSearchWithoutRules(t *testing.T) {
	m, _ := runSearch(t, testPlan(0), sql.EmptyProps(), rule.NewSet())
	for _, g := range m.Groups() {
		require.Empty(t, g.Winners())
	}
}
