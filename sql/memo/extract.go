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
	"fmt"

	"github.com/soradb/cascades/sql"
)

// ExtractBestPlan materializes the lowest-cost physical plan recorded for
// the root group under the required properties. It walks the best-plan
// tables top-down, extracting each input under the requirement the winner
// recorded for it. A missing entry at the root means the search found no
// plan; a missing entry below the root is a bookkeeping bug in a rule or
// the property algebra.
func (m *Memo) ExtractBestPlan(required *sql.PhysicalProps) (*sql.PhysicalPlan, error) {
	w := m.root.Winner(required)
	if w == nil {
		return nil, sql.ErrNoPlan.New()
	}
	return m.extract(w)
}

func (m *Memo) extract(w *Winner) (*sql.PhysicalPlan, error) {
	inputs := make([]*sql.PhysicalPlan, len(w.Expr.Children()))
	for i, child := range w.Expr.Children() {
		cw := child.Winner(w.InputReqs[i])
		if cw == nil {
			return nil, sql.ErrInvariantViolation.New(
				fmt.Sprintf("winner for group %d references requirement %s absent from group %d",
					w.Expr.Group().Id(), w.InputReqs[i], child.Id()))
		}
		in, err := m.extract(cw)
		if err != nil {
			return nil, err
		}
		inputs[i] = in
	}
	return sql.NewPhysicalPlan(w.Expr.Physical(), inputs), nil
}
