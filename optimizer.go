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

// Package cascades is a cost-based query optimizer core in the
// Cascades/Columbia style. Given a logical plan and a set of required
// physical properties, it searches the space of equivalent physical plans
// with a memoizing, rule-driven, top-down search and returns the
// lowest-cost plan that satisfies the requirement. The operator catalog,
// scalar expressions, rules and metadata are supplied by the caller; the
// memory package holds the reference catalog the tests run against.
package cascades

import (
	"github.com/pkg/errors"

	"github.com/soradb/cascades/sql"
	"github.com/soradb/cascades/sql/memo"
	"github.com/soradb/cascades/sql/rule"
	"github.com/soradb/cascades/sql/search"
)

// Options configures an Optimizer.
type Options struct {
	// TraceMemo logs the memo contents at debug level after the search
	// completes.
	TraceMemo bool
}

// Optimizer is the public entry point. An Optimizer is stateless across
// invocations; each Optimize call owns its memo and scheduler exclusively
// and discards them on return.
type Optimizer struct {
	opts Options
}

// New creates an Optimizer with the given options.
func New(opts Options) *Optimizer {
	return &Optimizer{opts: opts}
}

// NewDefault creates an Optimizer with default options.
func NewDefault() *Optimizer {
	return New(Options{})
}

// Optimize searches for the lowest-cost physical plan equivalent to the
// logical plan that delivers the required physical properties. It returns
// ErrNoPlan when the rule set yields no physical implementation satisfying
// the requirement. The invocation is single-threaded and deterministic:
// the same plan, rule set and metadata produce the same physical plan.
func (o *Optimizer) Optimize(
	ctx *sql.Context,
	plan *sql.LogicalPlan,
	required *sql.PhysicalProps,
	md *sql.MdAccessor,
	rules *rule.Set,
) (*sql.PhysicalPlan, error) {
	span, ctx := ctx.Span("cascades.Optimize")
	defer span.Finish()

	if required == nil {
		required = sql.EmptyProps()
	}

	m := memo.NewMemo(md)
	root, err := m.Init(plan)
	if err != nil {
		return nil, err
	}

	sctx := search.NewContext(ctx, m, rules)
	sctx.Tasks.Push(search.NewOptimizeGroupTask(root, required))
	if err := sctx.Tasks.Run(sctx); err != nil {
		return nil, errors.Wrap(err, "running search")
	}

	if o.opts.TraceMemo {
		ctx.Logger().Debugf("search complete over %d groups\n%s", len(m.Groups()), m)
	}
	return m.ExtractBestPlan(required)
}
