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

// OperatorId identifies an operator type. Ids are declared by the operator
// catalog; the core compares them when matching rule patterns.
type OperatorId int16

// Operator is the common surface of logical and physical operators.
// Operators are immutable value objects: two operators are equal iff their
// id and parameters are equal.
type Operator interface {
	// Name returns a short lowercase name used in memo dumps and logs.
	Name() string

	// OperatorId returns the operator's type identity.
	OperatorId() OperatorId

	// Arity returns the fixed number of children the operator takes.
	Arity() int

	// Equal reports whether other is the same operator with equal
	// parameters. Implementations must check the dynamic type.
	Equal(other Operator) bool
}

// LogicalOperator describes a relational computation independent of any
// execution strategy.
type LogicalOperator interface {
	Operator

	// DeriveStatistics estimates the operator's output from its children's
	// statistics, consulting the metadata accessor as needed.
	DeriveStatistics(md *MdAccessor, childStats []Statistics) (Statistics, error)

	// DeriveOutputColumns returns the columns the operator produces given
	// its children's output columns.
	DeriveOutputColumns(childCols []ColSet) ColSet
}

// PhysicalOperator describes one execution strategy for a logical
// computation.
type PhysicalOperator interface {
	Operator

	// DeriveOutputProperties returns the properties the operator delivers
	// given the properties its children deliver.
	DeriveOutputProperties(childProps []*PhysicalProps) *PhysicalProps

	// RequiredProperties returns the alternative ways the operator can
	// satisfy the requested properties. Each alternative is a vector of
	// requirements, one per child. An operator that cannot contribute to
	// the request still returns at least one alternative (typically the
	// empty requirement per child); delivery is checked afterwards.
	RequiredProperties(requested *PhysicalProps) [][]*PhysicalProps

	// ComputeCost returns the operator's local cost given its children's
	// statistics and the operator's own output statistics. Children's
	// winner costs are added by the search, not here.
	ComputeCost(childStats []Statistics, stats Statistics) Cost
}
