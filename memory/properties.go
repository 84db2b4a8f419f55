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

// Ordering is one sort key: a column, a direction, and NULL placement.
type Ordering struct {
	Col        sql.ColumnId
	Ascending  bool
	NullsFirst bool
}

func (o Ordering) String() string {
	dir := "-"
	if o.Ascending {
		dir = "+"
	}
	nulls := "nl"
	if o.NullsFirst {
		nulls = "nf"
	}
	return fmt.Sprintf("%d%s%s", o.Col, dir, nulls)
}

// OrderProp is the sort-order property component. A delivered order
// satisfies a required order when the requirement is a prefix of the
// delivery.
type OrderProp struct {
	orderings []Ordering
}

// NewOrderProp builds an order component over the given keys.
func NewOrderProp(orderings ...Ordering) *OrderProp {
	return &OrderProp{orderings: orderings}
}

// SortedBy returns a one-component property set requiring the given order.
func SortedBy(orderings ...Ordering) *sql.PhysicalProps {
	return sql.NewPhysicalProps(NewOrderProp(orderings...))
}

// Orderings returns the component's sort keys.
func (p *OrderProp) Orderings() []Ordering {
	return p.orderings
}

// Satisfies implements sql.Property.
func (p *OrderProp) Satisfies(required sql.Property) bool {
	req, ok := required.(*OrderProp)
	if !ok || len(req.orderings) > len(p.orderings) {
		return false
	}
	for i, o := range req.orderings {
		if p.orderings[i] != o {
			return false
		}
	}
	return true
}

// Equal implements sql.Property.
func (p *OrderProp) Equal(other sql.Property) bool {
	o, ok := other.(*OrderProp)
	if !ok || len(o.orderings) != len(p.orderings) {
		return false
	}
	for i, ord := range p.orderings {
		if o.orderings[i] != ord {
			return false
		}
	}
	return true
}

// Fingerprint implements sql.Property.
func (p *OrderProp) Fingerprint() string {
	parts := make([]string, len(p.orderings))
	for i, o := range p.orderings {
		parts[i] = o.String()
	}
	return "order(" + strings.Join(parts, ",") + ")"
}

// EnforcerOperator implements sql.Property: sort orders are enforced by a
// physical sort over the same keys.
func (p *OrderProp) EnforcerOperator() sql.PhysicalOperator {
	return NewPhysicalSort(p.orderings...)
}
