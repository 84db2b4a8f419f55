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

// Statistics describes the estimated output of a group. Statistics are
// derived once per group from one of its logical expressions and memoized;
// operators receive their children's statistics when deriving their own and
// when computing costs.
type Statistics interface {
	// RowCount returns the estimated number of output rows.
	RowCount() uint64
}
