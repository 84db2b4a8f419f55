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

import "fmt"

// ScalarExpr is a scalar expression carried as an operator parameter
// (predicates, projections, sort keys). The core never evaluates scalars;
// it only compares them and collects the columns they reference.
type ScalarExpr interface {
	fmt.Stringer

	// IsBoolean reports whether the expression produces a boolean, i.e. can
	// serve as a predicate.
	IsBoolean() bool

	// UsedColumns adds every column the expression references to cols.
	UsedColumns(cols *ColSet)

	// Equal reports structural equality with another scalar. Implementations
	// must check the dynamic type.
	Equal(other ScalarExpr) bool
}
