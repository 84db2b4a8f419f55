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
	"github.com/soradb/cascades/sql"
	"github.com/soradb/cascades/sql/memo"
	"github.com/soradb/cascades/sql/rule"
)

// Context owns the state of one search: the memo being populated, the rule
// set, and the task stack. One Context belongs to exactly one invocation.
type Context struct {
	*sql.Context

	Memo  *memo.Memo
	Rules *rule.Set
	Tasks *Runner

	ruleCtx *rule.Context
}

// NewContext assembles a search context over a memo and rule set.
func NewContext(ctx *sql.Context, m *memo.Memo, rules *rule.Set) *Context {
	return &Context{
		Context: ctx,
		Memo:    m,
		Rules:   rules,
		Tasks:   NewRunner(),
		ruleCtx: &rule.Context{
			Memo:       m,
			MdAccessor: m.MdAccessor(),
		},
	}
}

// RuleContext returns the context handed to rule transforms.
func (ctx *Context) RuleContext() *rule.Context {
	return ctx.ruleCtx
}
