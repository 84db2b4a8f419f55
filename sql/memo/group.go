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

package memo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bits-and-blooms/bitset"

	"github.com/soradb/cascades/sql"
)

// GroupId is a stable handle to a group within one memo.
type GroupId uint16

// RelProps is the logical property record shared by every expression of a
// group, derived once from the group's founding expression.
type RelProps struct {
	// OutputCols are the columns the group's result produces.
	OutputCols sql.ColSet
}

// GroupExpr is one alternative within a group: an operator over child group
// handles. Expressions are interned memo-wide; a given (operator, children)
// pair exists at most once.
type GroupExpr struct {
	op       sql.Operator
	children []*Group
	group    *Group

	// ord is the expression's insertion index within its group's logical or
	// physical list, used for deterministic cost tie-breaks.
	ord int

	// enforcer marks property-enforcing expressions so the costing loop
	// does not re-enforce them.
	enforcer bool

	// fired tracks the rules already applied to this expression.
	fired *bitset.BitSet
}

// Operator returns the expression's operator.
func (e *GroupExpr) Operator() sql.Operator {
	return e.op
}

// Logical returns the operator as a LogicalOperator. It panics on physical
// expressions.
func (e *GroupExpr) Logical() sql.LogicalOperator {
	return e.op.(sql.LogicalOperator)
}

// Physical returns the operator as a PhysicalOperator. It panics on logical
// expressions.
func (e *GroupExpr) Physical() sql.PhysicalOperator {
	return e.op.(sql.PhysicalOperator)
}

// IsLogical reports whether the expression's operator is logical.
func (e *GroupExpr) IsLogical() bool {
	_, ok := e.op.(sql.LogicalOperator)
	return ok
}

// IsEnforcer reports whether the expression was inserted to enforce a
// property rather than produced by a rule.
func (e *GroupExpr) IsEnforcer() bool {
	return e.enforcer
}

// Group returns the group the expression belongs to.
func (e *GroupExpr) Group() *Group {
	return e.group
}

// Children returns the expression's child groups.
func (e *GroupExpr) Children() []*Group {
	return e.children
}

// Ord returns the expression's insertion index within its group's list.
func (e *GroupExpr) Ord() int {
	return e.ord
}

// Fired reports whether the rule has already been applied to this
// expression.
func (e *GroupExpr) Fired(rule uint) bool {
	return e.fired.Test(rule)
}

// MarkFired records that the rule has been applied to this expression.
func (e *GroupExpr) MarkFired(rule uint) {
	e.fired.Set(rule)
}

func (e *GroupExpr) String() string {
	name := e.op.Name()
	if s, ok := e.op.(fmt.Stringer); ok {
		name = s.String()
	}
	if len(e.children) == 0 {
		return fmt.Sprintf("(%s)", name)
	}
	ids := make([]string, len(e.children))
	for i, c := range e.children {
		ids[i] = fmt.Sprintf("%d", c.Id())
	}
	return fmt.Sprintf("(%s %s)", name, strings.Join(ids, " "))
}

// Winner is one best-plan table entry: the lowest-cost physical expression
// observed for a requirement, along with the properties it delivers and the
// requirements it imposed on its inputs.
type Winner struct {
	Expr      *GroupExpr
	Required  *sql.PhysicalProps
	Delivered *sql.PhysicalProps
	InputReqs []*sql.PhysicalProps
	Cost      sql.Cost
}

// Group is an equivalence class of expressions producing the same logical
// result. Groups own their expressions; expressions reference other groups
// only through handles.
type Group struct {
	id       GroupId
	logical  []*GroupExpr
	physical []*GroupExpr

	relProps *RelProps
	stats    sql.Statistics

	// requiredProps holds per-node requirements recorded on the logical
	// plan at ingestion.
	requiredProps []*sql.PhysicalProps

	// winners is the best-plan table, keyed by requirement fingerprint.
	winners map[string]*Winner

	// optimized records the requirements this group has been scheduled
	// for, including searches that found no plan.
	optimized map[string]bool
}

func newGroup(id GroupId, relProps *RelProps) *Group {
	return &Group{
		id:        id,
		relProps:  relProps,
		winners:   make(map[string]*Winner),
		optimized: make(map[string]bool),
	}
}

// Id returns the group's handle.
func (g *Group) Id() GroupId {
	return g.id
}

// RelProps returns the group's logical property record.
func (g *Group) RelProps() *RelProps {
	return g.relProps
}

// Logical returns the group's logical expressions in insertion order.
func (g *Group) Logical() []*GroupExpr {
	return g.logical
}

// Physical returns the group's physical expressions in insertion order.
func (g *Group) Physical() []*GroupExpr {
	return g.physical
}

// RequiredProperties returns the requirements recorded on the group at
// plan ingestion.
func (g *Group) RequiredProperties() []*sql.PhysicalProps {
	return g.requiredProps
}

// HasLeafPhysical reports whether the group holds a zero-arity physical
// expression, i.e. produces data rather than streaming it through.
func (g *Group) HasLeafPhysical() bool {
	for _, e := range g.physical {
		if !e.enforcer && len(e.children) == 0 {
			return true
		}
	}
	return false
}

func (g *Group) insert(e *GroupExpr) {
	e.group = g
	if e.IsLogical() {
		e.ord = len(g.logical)
		g.logical = append(g.logical, e)
	} else {
		e.ord = len(g.physical)
		g.physical = append(g.physical, e)
	}
}

// Winner returns the best-plan entry for the requirement, or nil.
func (g *Group) Winner(required *sql.PhysicalProps) *Winner {
	return g.winners[required.Fingerprint()]
}

// UpdateWinner installs a candidate into the best-plan table if it strictly
// improves the current entry, or matches its cost with an earlier-inserted
// expression. It reports whether the entry changed.
func (g *Group) UpdateWinner(required *sql.PhysicalProps, e *GroupExpr, delivered *sql.PhysicalProps, inputReqs []*sql.PhysicalProps, cost sql.Cost) bool {
	fp := required.Fingerprint()
	cur := g.winners[fp]
	if cur != nil && !cost.Less(cur.Cost) {
		if cost != cur.Cost || e.ord >= cur.Expr.ord {
			return false
		}
	}
	g.winners[fp] = &Winner{
		Expr:      e,
		Required:  required,
		Delivered: delivered,
		InputReqs: inputReqs,
		Cost:      cost,
	}
	return true
}

// Winners returns every best-plan entry recorded so far, ordered by
// requirement fingerprint.
func (g *Group) Winners() []*Winner {
	fps := make([]string, 0, len(g.winners))
	for fp := range g.winners {
		fps = append(fps, fp)
	}
	sort.Strings(fps)
	out := make([]*Winner, len(fps))
	for i, fp := range fps {
		out[i] = g.winners[fp]
	}
	return out
}

// Optimized reports whether OptimizeGroup has already run for the
// requirement.
func (g *Group) Optimized(required *sql.PhysicalProps) bool {
	return g.optimized[required.Fingerprint()]
}

// MarkOptimized records that OptimizeGroup has run for the requirement.
func (g *Group) MarkOptimized(required *sql.PhysicalProps) {
	g.optimized[required.Fingerprint()] = true
}

func (g *Group) String() string {
	exprs := make([]string, 0, len(g.logical)+len(g.physical))
	for _, e := range g.logical {
		exprs = append(exprs, e.String())
	}
	for _, e := range g.physical {
		exprs = append(exprs, e.String())
	}
	return strings.Join(exprs, " ")
}
