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

package sql

import (
	"fmt"
	"strings"
)

// LogicalPlan is the boundary tree the caller hands to the optimizer. Each
// node may carry required physical properties to be recorded on the node's
// group when the plan is ingested.
type LogicalPlan struct {
	op            LogicalOperator
	inputs        []*LogicalPlan
	requiredProps []*PhysicalProps
}

// NewLogicalPlan builds a logical plan node.
func NewLogicalPlan(op LogicalOperator, inputs []*LogicalPlan, required []*PhysicalProps) *LogicalPlan {
	return &LogicalPlan{op: op, inputs: inputs, requiredProps: required}
}

// Operator returns the node's operator.
func (p *LogicalPlan) Operator() LogicalOperator {
	return p.op
}

// Inputs returns the node's children.
func (p *LogicalPlan) Inputs() []*LogicalPlan {
	return p.inputs
}

// RequiredProperties returns the per-node property requirements recorded on
// the node, if any.
func (p *LogicalPlan) RequiredProperties() []*PhysicalProps {
	return p.requiredProps
}

// PhysicalPlan is the boundary tree returned by the optimizer: the winning
// physical operator per node with fully materialized children.
type PhysicalPlan struct {
	op     PhysicalOperator
	inputs []*PhysicalPlan
}

// NewPhysicalPlan builds a physical plan node.
func NewPhysicalPlan(op PhysicalOperator, inputs []*PhysicalPlan) *PhysicalPlan {
	return &PhysicalPlan{op: op, inputs: inputs}
}

// Operator returns the node's operator.
func (p *PhysicalPlan) Operator() PhysicalOperator {
	return p.op
}

// Inputs returns the node's children.
func (p *PhysicalPlan) Inputs() []*PhysicalPlan {
	return p.inputs
}

// Equal reports structural equality of two physical plans.
func (p *PhysicalPlan) Equal(other *PhysicalPlan) bool {
	if other == nil || !p.op.Equal(other.op) || len(p.inputs) != len(other.inputs) {
		return false
	}
	for i, in := range p.inputs {
		if !in.Equal(other.inputs[i]) {
			return false
		}
	}
	return true
}

// String renders the plan as an indented tree, one node per line.
func (p *PhysicalPlan) String() string {
	var b strings.Builder
	p.format(&b, 0)
	return b.String()
}

func (p *PhysicalPlan) format(b *strings.Builder, depth int) {
	fmt.Fprintf(b, "%s%s\n", strings.Repeat("  ", depth), p.op.Name())
	for _, in := range p.inputs {
		in.format(b, depth+1)
	}
}
