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

package rule

import (
	"github.com/soradb/cascades/sql"
	"github.com/soradb/cascades/sql/memo"
)

// Kind distinguishes exploration rules (logical to logical) from
// implementation rules (logical to physical).
type Kind uint8

const (
	// Exploration rules add logical alternatives to a group.
	Exploration Kind = iota
	// Implementation rules add physical alternatives to a group.
	Implementation
)

// Id identifies a rule within a rule set. Ids index the per-expression
// fired bitsets and must be unique and small.
type Id uint

// Context is handed to rule transforms. Transforms may create new child
// groups through the memo and may consult metadata and statistics, but they
// never mutate winners or scheduling state.
type Context struct {
	Memo       *memo.Memo
	MdAccessor *sql.MdAccessor
}

// Rule is a pattern-plus-transform. A transform that returns no expressions
// is not an error; the binding simply yielded nothing.
type Rule interface {
	// Id returns the rule's identity within its set.
	Id() Id

	// Kind reports whether the rule explores or implements.
	Kind() Kind

	// Pattern returns the tree of operator ids the rule matches.
	Pattern() *memo.Pattern

	// Transform produces new expressions for the binding's root group.
	Transform(b *memo.Binding, ctx *Context) ([]*memo.Expr, error)
}

// Set is an ordered rule collection. Iteration order is registration order,
// which fixes rule application order and hence the search's determinism.
type Set struct {
	rules []Rule
}

// NewSet builds a rule set preserving registration order.
func NewSet(rules ...Rule) *Set {
	return &Set{rules: rules}
}

// Rules returns the rules in registration order.
func (s *Set) Rules() []Rule {
	if s == nil {
		return nil
	}
	return s.rules
}

// Matching returns the rules whose pattern root matches the expression's
// operator, in registration order.
func (s *Set) Matching(e *memo.GroupExpr) []Rule {
	var out []Rule
	for _, r := range s.Rules() {
		p := r.Pattern()
		if p.Op == memo.AnyOperator || p.Op == e.Operator().OperatorId() {
			out = append(out, r)
		}
	}
	return out
}
