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

package search

import (
	"fmt"
)

// Task is one unit of search work. Tasks push follow-up tasks through the
// context; a task that must wait for other work re-pushes itself beneath
// the tasks it depends on.
type Task interface {
	fmt.Stringer
	Perform(ctx *Context) error
}

// Runner drives the search from a last-in-first-out task stack until it
// empties. Execution order is deterministic given the input plan, the rule
// set, and the tie-break policy.
type Runner struct {
	stack []Task
}

// NewRunner returns an empty runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Push schedules a task. Pushes reverse execution order: the last task
// pushed runs first.
func (r *Runner) Push(t Task) {
	r.stack = append(r.stack, t)
}

// Run pops and performs tasks until the stack empties or a task fails. A
// failure aborts the search; the memo is discarded by the caller.
func (r *Runner) Run(ctx *Context) error {
	for len(r.stack) > 0 {
		t := r.stack[len(r.stack)-1]
		r.stack = r.stack[:len(r.stack)-1]
		ctx.Logger().Tracef("search: %s", t)
		if err := t.Perform(ctx); err != nil {
			return err
		}
	}
	return nil
}
