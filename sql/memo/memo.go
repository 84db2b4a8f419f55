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
	"strings"

	"github.com/bits-and-blooms/bitset"
	"github.com/mitchellh/hashstructure"

	"github.com/soradb/cascades/sql"
)

// Expr is an expression candidate before interning: an operator over
// existing group handles. Rule transforms return Exprs; the memo turns them
// into GroupExprs.
type Expr struct {
	Op       sql.Operator
	Children []*Group
}

// NewExpr builds an expression candidate.
func NewExpr(op sql.Operator, children ...*Group) *Expr {
	return &Expr{Op: op, Children: children}
}

// Memo is a forest of equivalence groups sharing sub-expressions. It owns
// the groups, the memo-wide expression dedup index, and the per-group
// best-plan tables reached through the groups.
type Memo struct {
	groups []*Group
	root   *Group

	// interned maps an expression key to its unique GroupExpr. No duplicate
	// (operator, children) pair exists anywhere in the memo.
	interned map[string]*GroupExpr

	md *sql.MdAccessor
}

// NewMemo creates an empty memo reading metadata through md.
func NewMemo(md *sql.MdAccessor) *Memo {
	return &Memo{
		interned: make(map[string]*GroupExpr),
		md:       md,
	}
}

// Root returns the group of the initial plan's root, set by Init.
func (m *Memo) Root() *Group {
	return m.root
}

// MdAccessor returns the metadata accessor of this invocation.
func (m *Memo) MdAccessor() *sql.MdAccessor {
	return m.md
}

// Groups returns all groups in insertion order.
func (m *Memo) Groups() []*Group {
	return m.groups
}

// Init ingests a logical plan with a post-order traversal: children's
// groups are created first, then each node either joins the group of an
// existing equivalent expression or founds a new group. The root group is
// recorded. Arity mismatches are rejected here.
func (m *Memo) Init(plan *sql.LogicalPlan) (*Group, error) {
	root, err := m.copyIn(plan)
	if err != nil {
		return nil, err
	}
	m.root = root
	return root, nil
}

func (m *Memo) copyIn(plan *sql.LogicalPlan) (*Group, error) {
	op := plan.Operator()
	if len(plan.Inputs()) != op.Arity() {
		return nil, sql.ErrMalformedPlan.New(op.Name(), op.Arity(), len(plan.Inputs()))
	}
	children := make([]*Group, len(plan.Inputs()))
	for i, in := range plan.Inputs() {
		child, err := m.copyIn(in)
		if err != nil {
			return nil, err
		}
		children[i] = child
	}
	if existing, ok := m.interned[exprKey(op, children)]; ok {
		existing.group.requiredProps = append(existing.group.requiredProps, plan.RequiredProperties()...)
		return existing.group, nil
	}
	grp := m.newGroupFor(op, children)
	grp.requiredProps = plan.RequiredProperties()
	m.intern(newGroupExpr(op, children), grp)
	return grp, nil
}

// NewExprGroup creates a fresh group founded by the expression, or returns
// the group that already owns an equivalent expression. Rule transforms use
// this to materialize new child groups.
func (m *Memo) NewExprGroup(e *Expr) *Group {
	if existing, ok := m.interned[exprKey(e.Op, e.Children)]; ok {
		return existing.group
	}
	lop, ok := e.Op.(sql.LogicalOperator)
	if !ok {
		panic("fresh groups are founded by logical expressions")
	}
	grp := m.newGroupFor(lop, e.Children)
	m.intern(newGroupExpr(e.Op, e.Children), grp)
	return grp
}

// InsertExpr adds a rule-produced expression to the target group. If an
// equivalent expression already exists in the target it is returned with
// added=false. An equivalent expression in a different group means two
// groups turned out logically equivalent, which the construction rules of
// this memo forbid; it aborts the invocation.
func (m *Memo) InsertExpr(e *Expr, target *Group) (*GroupExpr, bool, error) {
	if len(e.Children) != e.Op.Arity() {
		return nil, false, sql.ErrMalformedPlan.New(e.Op.Name(), e.Op.Arity(), len(e.Children))
	}
	if existing, ok := m.interned[exprKey(e.Op, e.Children)]; ok {
		if existing.group != target {
			return nil, false, sql.ErrInvariantViolation.New(
				fmt.Sprintf("expression %s duplicated across groups %d and %d", existing, existing.group.id, target.id))
		}
		return existing, false, nil
	}
	ge := newGroupExpr(e.Op, e.Children)
	m.intern(ge, target)
	return ge, true, nil
}

// InsertEnforcer adds a property-enforcing physical expression whose sole
// input is the group itself. Enforcers join the group's physical list but
// are marked so the costing loop does not enforce them again.
func (m *Memo) InsertEnforcer(op sql.PhysicalOperator, g *Group) *GroupExpr {
	children := []*Group{g}
	if existing, ok := m.interned[exprKey(op, children)]; ok {
		return existing
	}
	ge := newGroupExpr(op, children)
	ge.enforcer = true
	m.intern(ge, g)
	return ge
}

// GroupStats returns the group's statistics, deriving and memoizing them on
// first demand from the group's first logical expression.
func (m *Memo) GroupStats(g *Group) (sql.Statistics, error) {
	if g.stats != nil {
		return g.stats, nil
	}
	if len(g.logical) == 0 {
		return nil, sql.ErrInvariantViolation.New(fmt.Sprintf("group %d has no logical expression to derive statistics from", g.id))
	}
	e := g.logical[0]
	childStats := make([]sql.Statistics, len(e.children))
	for i, c := range e.children {
		stats, err := m.GroupStats(c)
		if err != nil {
			return nil, err
		}
		childStats[i] = stats
	}
	stats, err := e.Logical().DeriveStatistics(m.md, childStats)
	if err != nil {
		return nil, err
	}
	g.stats = stats
	return stats, nil
}

func (m *Memo) newGroupFor(op sql.LogicalOperator, children []*Group) *Group {
	childCols := make([]sql.ColSet, len(children))
	for i, c := range children {
		childCols[i] = c.relProps.OutputCols
	}
	props := &RelProps{OutputCols: op.DeriveOutputColumns(childCols)}
	grp := newGroup(GroupId(len(m.groups)+1), props)
	m.groups = append(m.groups, grp)
	return grp
}

func (m *Memo) intern(e *GroupExpr, g *Group) {
	g.insert(e)
	m.interned[exprKey(e.op, e.children)] = e
}

func newGroupExpr(op sql.Operator, children []*Group) *GroupExpr {
	return &GroupExpr{
		op:       op,
		children: children,
		fired:    bitset.New(0),
	}
}

// exprKey identifies an expression by its operator's structural hash and
// its child group ids. Key hits are conservative: operator payloads hash
// via reflection, and equal keys imply equal expressions because the hash
// covers every parameter.
func exprKey(op sql.Operator, children []*Group) string {
	h, err := hashstructure.Hash(op, nil)
	if err != nil {
		// Operators are plain value objects; a hash failure is a
		// programming error in the catalog.
		panic(err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d:%d", op.OperatorId(), h)
	for _, c := range children {
		fmt.Fprintf(&b, ":%d", c.id)
	}
	return b.String()
}

// String renders the memo as one line per group, in group id order.
func (m *Memo) String() string {
	var b strings.Builder
	b.WriteString("memo:\n")
	beg := "├──"
	for i, g := range m.groups {
		if i == len(m.groups)-1 {
			beg = "└──"
		}
		fmt.Fprintf(&b, "%s G%d: %s\n", beg, g.id, g)
	}
	return b.String()
}
