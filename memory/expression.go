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
	"fmt"
	"strings"

	"github.com/soradb/cascades/sql"
)

// ColumnVar references a column by id.
type ColumnVar struct {
	Id sql.ColumnId
}

// NewColumnVar returns a reference to column id.
func NewColumnVar(id sql.ColumnId) *ColumnVar {
	return &ColumnVar{Id: id}
}

func (c *ColumnVar) IsBoolean() bool {
	return false
}

func (c *ColumnVar) UsedColumns(cols *sql.ColSet) {
	cols.Add(c.Id)
}

func (c *ColumnVar) Equal(other sql.ScalarExpr) bool {
	o, ok := other.(*ColumnVar)
	return ok && c.Id == o.Id
}

func (c *ColumnVar) String() string {
	return fmt.Sprintf("col(%d)", c.Id)
}

// IsNull tests a column expression for NULL.
type IsNull struct {
	Child sql.ScalarExpr
}

// NewIsNull wraps child in an IS NULL predicate.
func NewIsNull(child sql.ScalarExpr) *IsNull {
	return &IsNull{Child: child}
}

func (n *IsNull) IsBoolean() bool {
	return true
}

func (n *IsNull) UsedColumns(cols *sql.ColSet) {
	n.Child.UsedColumns(cols)
}

func (n *IsNull) Equal(other sql.ScalarExpr) bool {
	o, ok := other.(*IsNull)
	return ok && n.Child.Equal(o.Child)
}

func (n *IsNull) String() string {
	return fmt.Sprintf("isnull(%s)", n.Child)
}

// And is a conjunction of boolean expressions.
type And struct {
	Children []sql.ScalarExpr
}

// NewAnd conjoins the given predicates.
func NewAnd(children ...sql.ScalarExpr) *And {
	for _, c := range children {
		if !c.IsBoolean() {
			panic("and over a non-boolean expression")
		}
	}
	return &And{Children: children}
}

func (a *And) IsBoolean() bool {
	return true
}

func (a *And) UsedColumns(cols *sql.ColSet) {
	for _, c := range a.Children {
		c.UsedColumns(cols)
	}
}

func (a *And) Equal(other sql.ScalarExpr) bool {
	o, ok := other.(*And)
	if !ok || len(a.Children) != len(o.Children) {
		return false
	}
	for i, c := range a.Children {
		if !c.Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

func (a *And) String() string {
	parts := make([]string, len(a.Children))
	for i, c := range a.Children {
		parts[i] = c.String()
	}
	return fmt.Sprintf("and(%s)", strings.Join(parts, ", "))
}

// SplitConjuncts flattens nested conjunctions into a predicate list.
func SplitConjuncts(e sql.ScalarExpr) []sql.ScalarExpr {
	if and, ok := e.(*And); ok {
		var out []sql.ScalarExpr
		for _, c := range and.Children {
			out = append(out, SplitConjuncts(c)...)
		}
		return out
	}
	return []sql.ScalarExpr{e}
}

// JoinConjuncts rebuilds a predicate from a conjunct list, avoiding a
// needless And around a single conjunct.
func JoinConjuncts(conjuncts []sql.ScalarExpr) sql.ScalarExpr {
	if len(conjuncts) == 1 {
		return conjuncts[0]
	}
	return NewAnd(conjuncts...)
}
