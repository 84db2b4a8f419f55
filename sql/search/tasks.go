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

package search

import (
	"fmt"

	"github.com/soradb/cascades/sql"
	"github.com/soradb/cascades/sql/memo"
	"github.com/soradb/cascades/sql/rule"
)

// OptimizeGroupTask finds the best plan for a (group, required properties)
// pair. It schedules OptimizeExpression for every logical expression and an
// EnforceAndCost follow-up that runs after all of them complete.
type OptimizeGroupTask struct {
	grp      *memo.Group
	required *sql.PhysicalProps
}

// NewOptimizeGroupTask creates the task that seeds a (group, requirement)
// search.
func NewOptimizeGroupTask(grp *memo.Group, required *sql.PhysicalProps) *OptimizeGroupTask {
	return &OptimizeGroupTask{grp: grp, required: required}
}

func (t *OptimizeGroupTask) Perform(ctx *Context) error {
	if t.grp.Optimized(t.required) {
		return nil
	}
	t.grp.MarkOptimized(t.required)

	// EnforceAndCost goes first so it pops after every OptimizeExpression
	// and the work they spawn.
	ctx.Tasks.Push(&enforceAndCostTask{grp: t.grp, required: t.required})
	logical := t.grp.Logical()
	for i := len(logical) - 1; i >= 0; i-- {
		ctx.Tasks.Push(&optimizeExprTask{expr: logical[i], required: t.required})
	}
	return nil
}

func (t *OptimizeGroupTask) String() string {
	return fmt.Sprintf("OptimizeGroup(G%d, %s)", t.grp.Id(), t.required)
}

// optimizeExprTask applies the applicable rules to one logical expression
// and requests an unconstrained physical winner for each child group, so
// children are implemented before the current group is costed.
type optimizeExprTask struct {
	expr     *memo.GroupExpr
	required *sql.PhysicalProps
}

func (t *optimizeExprTask) Perform(ctx *Context) error {
	children := t.expr.Children()
	for i := len(children) - 1; i >= 0; i-- {
		ctx.Tasks.Push(NewOptimizeGroupTask(children[i], sql.EmptyProps()))
	}
	rules := ctx.Rules.Matching(t.expr)
	for i := len(rules) - 1; i >= 0; i-- {
		r := rules[i]
		if t.expr.Fired(uint(r.Id())) {
			continue
		}
		ctx.Tasks.Push(&applyRuleTask{expr: t.expr, rule: r, required: t.required})
	}
	return nil
}

func (t *optimizeExprTask) String() string {
	return fmt.Sprintf("OptimizeExpression(G%d:%s, %s)", t.expr.Group().Id(), t.expr, t.required)
}

// applyRuleTask enumerates the rule's bindings against one expression, runs
// the transform on each, and submits the produced expressions back to the
// expression's group. New logical expressions are scheduled for further
// optimization; new physical expressions are picked up by EnforceAndCost.
type applyRuleTask struct {
	expr     *memo.GroupExpr
	rule     rule.Rule
	required *sql.PhysicalProps
}

func (t *applyRuleTask) Perform(ctx *Context) error {
	if t.expr.Fired(uint(t.rule.Id())) {
		return nil
	}
	t.expr.MarkFired(uint(t.rule.Id()))

	var added []*memo.GroupExpr
	for _, b := range memo.Bind(t.expr, t.rule.Pattern()) {
		exprs, err := t.rule.Transform(b, ctx.RuleContext())
		if err != nil {
			return err
		}
		for _, out := range exprs {
			ge, isNew, err := ctx.Memo.InsertExpr(out, t.expr.Group())
			if err != nil {
				return err
			}
			if isNew && ge.IsLogical() {
				added = append(added, ge)
			}
		}
	}
	for i := len(added) - 1; i >= 0; i-- {
		ctx.Tasks.Push(&optimizeExprTask{expr: added[i], required: t.required})
	}
	return nil
}

func (t *applyRuleTask) String() string {
	return fmt.Sprintf("ApplyRule(G%d:%s, rule %d)", t.expr.Group().Id(), t.expr, t.rule.Id())
}

// enforceAndCostTask schedules the costing of every physical alternative of
// a group under a requirement, and property enforcement where the group is
// eligible to host enforcers.
//
// Enforcers are placed where data is produced (groups holding a leaf
// physical expression) and at the root, where the caller's requirement is
// imposed; streaming intermediates pass requirements through instead of
// hosting sorts. The enforcer's input is the same group optimized for the
// requirement minus the enforced component.
type enforceAndCostTask struct {
	grp      *memo.Group
	required *sql.PhysicalProps
}

func (t *enforceAndCostTask) Perform(ctx *Context) error {
	var pending []*optimizeInputsTask
	for _, p := range t.grp.Physical() {
		if p.IsEnforcer() {
			continue
		}
		for _, alt := range p.Physical().RequiredProperties(t.required) {
			pending = append(pending, &optimizeInputsTask{expr: p, required: t.required, alt: alt})
		}
	}
	if !t.required.IsEmpty() && (t.grp.HasLeafPhysical() || t.grp == ctx.Memo.Root()) {
		for _, c := range t.required.Properties() {
			enf := ctx.Memo.InsertEnforcer(c.EnforcerOperator(), t.grp)
			pending = append(pending, &optimizeInputsTask{
				expr:     enf,
				required: t.required,
				alt:      []*sql.PhysicalProps{t.required.Without(c)},
			})
		}
	}
	// Alternatives run in insertion order, enforcers last, so equal-cost
	// winners resolve to the earliest-inserted expression.
	for i := len(pending) - 1; i >= 0; i-- {
		ctx.Tasks.Push(pending[i])
	}
	return nil
}

func (t *enforceAndCostTask) String() string {
	return fmt.Sprintf("EnforceAndCost(G%d, %s)", t.grp.Id(), t.required)
}

// optimizeInputsTask costs one physical alternative: it resolves a winner
// for every child under the alternative's requirement vector, accumulating
// the partial cost as children bind, and abandons the alternative as soon
// as the partial cost exceeds the current winner. When every child has a
// winner and the delivered properties satisfy the requirement, the
// candidate competes in the group's best-plan table.
type optimizeInputsTask struct {
	expr     *memo.GroupExpr
	required *sql.PhysicalProps
	alt      []*sql.PhysicalProps

	started  bool
	childIdx int
	cost     sql.Cost
}

func (t *optimizeInputsTask) Perform(ctx *Context) error {
	grp := t.expr.Group()
	children := t.expr.Children()
	if !t.started {
		if len(t.alt) != len(children) {
			return sql.ErrInvariantViolation.New(
				fmt.Sprintf("%s produced a requirement vector of length %d for arity %d",
					t.expr.Operator().Name(), len(t.alt), len(children)))
		}
		stats, err := ctx.Memo.GroupStats(grp)
		if err != nil {
			return err
		}
		childStats := make([]sql.Statistics, len(children))
		for i, c := range children {
			if childStats[i], err = ctx.Memo.GroupStats(c); err != nil {
				return err
			}
		}
		t.cost = t.expr.Physical().ComputeCost(childStats, stats)
		t.started = true
	}

	for t.childIdx < len(children) {
		if w := grp.Winner(t.required); w != nil && w.Cost.Less(t.cost) {
			return nil
		}
		child := children[t.childIdx]
		creq := t.alt[t.childIdx]
		if w := child.Winner(creq); w != nil {
			t.cost = t.cost.Add(w.Cost)
			t.childIdx++
			continue
		}
		if child.Optimized(creq) {
			// The child was searched and has no plan under this
			// requirement; the alternative is dead.
			return nil
		}
		ctx.Tasks.Push(t)
		ctx.Tasks.Push(NewOptimizeGroupTask(child, creq))
		return nil
	}

	if w := grp.Winner(t.required); w != nil && w.Cost.Less(t.cost) {
		return nil
	}
	childDelivered := make([]*sql.PhysicalProps, len(children))
	for i, c := range children {
		childDelivered[i] = c.Winner(t.alt[i]).Delivered
	}
	delivered := t.expr.Physical().DeriveOutputProperties(childDelivered)
	if !delivered.Satisfies(t.required) {
		return nil
	}
	grp.UpdateWinner(t.required, t.expr, delivered, t.alt, t.cost)
	return nil
}

func (t *optimizeInputsTask) String() string {
	return fmt.Sprintf("OptimizeInputs(G%d:%s, %s)", t.expr.Group().Id(), t.expr, t.required)
}
