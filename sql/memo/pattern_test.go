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

package memo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soradb/cascades/memory"
	"github.com/soradb/cascades/sql/memo"
)

func TestBindWildcardChild(t *testing.T) {
	m := memo.NewMemo(testMdAccessor())
	root, err := m.Init(filterNode(scanNode(), 0))
	require.NoError(t, err)
	filterExpr := root.Logical()[0]

	p := memo.NewPattern(memory.LogicalFilterId, memo.Any())
	binds := memo.Bind(filterExpr, p)
	require.Len(t, binds, 1)
	require.Equal(t, filterExpr, binds[0].Expr)
	require.Nil(t, binds[0].Children[0])
}

func TestBindCrossProduct(t *testing.T) {
	m := memo.NewMemo(testMdAccessor())
	root, err := m.Init(filterNode(scanNode(), 0))
	require.NoError(t, err)
	filterExpr := root.Logical()[0]
	scanGrp := m.Groups()[0]

	// A second scan alternative in the child group doubles the bindings.
	other := memory.NewLogicalScan(memory.NewTableDesc(relMdId), []*memory.ColumnVar{memory.NewColumnVar(0)})
	otherExpr, added, err := m.InsertExpr(memo.NewExpr(other), scanGrp)
	require.NoError(t, err)
	require.True(t, added)

	p := memo.NewPattern(memory.LogicalFilterId, memo.NewPattern(memory.LogicalScanId))
	binds := memo.Bind(filterExpr, p)
	require.Len(t, binds, 2)
	require.Equal(t, scanGrp.Logical()[0], binds[0].Children[0].Expr)
	require.Equal(t, otherExpr, binds[1].Children[0].Expr)
}

func TestBindOperatorMismatch(t *testing.T) {
	m := memo.NewMemo(testMdAccessor())
	root, err := m.Init(filterNode(scanNode(), 0))
	require.NoError(t, err)
	filterExpr := root.Logical()[0]

	p := memo.NewPattern(memory.LogicalFilterId, memo.NewPattern(memory.LogicalIndexScanId))
	require.Empty(t, memo.Bind(filterExpr, p))
	require.Empty(t, memo.Bind(filterExpr, memo.NewPattern(memory.LogicalProjectId, memo.Any())))
}
