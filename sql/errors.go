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
	"gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrMalformedPlan is returned when a logical plan node's child count
	// does not match its operator's declared arity.
	ErrMalformedPlan = errors.NewKind("operator %s has arity %d, plan node has %d children")

	// ErrNoPlan is returned when no physical plan satisfies the required
	// properties after the search completes.
	ErrNoPlan = errors.NewKind("no physical plan satisfies the required properties")

	// ErrInvariantViolation indicates a programming error in a rule or the
	// property algebra. The optimize call is aborted.
	ErrInvariantViolation = errors.NewKind("invariant violation: %s")

	// ErrMetadataNotFound is returned by a metadata provider when an id has
	// no object behind it.
	ErrMetadataNotFound = errors.NewKind("metadata id %d not found")
)
