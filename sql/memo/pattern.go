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
	"github.com/soradb/cascades/sql"
)

// AnyOperator is the wildcard operator id in rule patterns.
const AnyOperator sql.OperatorId = -1

// Pattern is a tree of operator ids a rule matches against. A child with
// the wildcard id matches any expression without descending into it; a
// pattern node with no children leaves the candidate's children
// unconstrained.
type Pattern struct {
	Op       sql.OperatorId
	Children []*Pattern
}

// NewPattern builds a pattern node.
func NewPattern(op sql.OperatorId, children ...*Pattern) *Pattern {
	return &Pattern{Op: op, Children: children}
}

// Any returns the wildcard pattern.
func Any() *Pattern {
	return &Pattern{Op: AnyOperator}
}

// Binding is a concrete expression tree produced by matching a pattern
// against the memo. Wildcard positions carry a nil child binding; the
// expression's child group remains reachable through Expr.Children.
type Binding struct {
	Expr     *GroupExpr
	Children []*Binding
}

// Bind enumerates every binding of the pattern rooted at the candidate
// expression, in pattern-tree traversal order: for each non-wildcard
// pattern child, each logical expression of the corresponding child group
// is tried in insertion order, and the results combine as a cross product.
func Bind(e *GroupExpr, p *Pattern) []*Binding {
	if p.Op != AnyOperator && e.op.OperatorId() != p.Op {
		return nil
	}
	if len(p.Children) == 0 {
		return []*Binding{{Expr: e}}
	}
	if len(p.Children) != len(e.children) {
		return nil
	}

	// childBinds[i] holds the alternatives for pattern child i.
	childBinds := make([][]*Binding, len(p.Children))
	for i, cp := range p.Children {
		if cp.Op == AnyOperator {
			childBinds[i] = []*Binding{nil}
			continue
		}
		var alts []*Binding
		for _, ce := range e.children[i].Logical() {
			alts = append(alts, Bind(ce, cp)...)
		}
		if len(alts) == 0 {
			return nil
		}
		childBinds[i] = alts
	}

	out := []*Binding{{Expr: e, Children: make([]*Binding, len(p.Children))}}
	for i, alts := range childBinds {
		next := make([]*Binding, 0, len(out)*len(alts))
		for _, partial := range out {
			for _, alt := range alts {
				children := make([]*Binding, len(p.Children))
				copy(children, partial.Children)
				children[i] = alt
				next = append(next, &Binding{Expr: e, Children: children})
			}
		}
		out = next
	}
	return out
}
