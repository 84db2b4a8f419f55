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

// Cost is a scalar estimate of the work a physical operator performs. Costs
// are totally ordered and additive: a plan's cost is the operator's local
// cost plus the sum of its children's winner costs. Cost models should stick
// to values that are exact in binary floating point so that equal plans
// compare equal and ties resolve deterministically.
type Cost float64

// Add returns c plus other.
func (c Cost) Add(other Cost) Cost {
	return c + other
}

// Less reports whether c orders strictly before other.
func (c Cost) Less(other Cost) bool {
	return c < other
}
