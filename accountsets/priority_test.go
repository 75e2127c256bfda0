// Copyright 2024 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

package accountsets

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/erigon-bootstrap/common"
)

func TestPriorityIndexInsertGetErase(t *testing.T) {
	p := newPriorityIndex()
	acc := common.AccountFromUint64(1)

	require.False(t, p.Contains(acc))
	p.Insert(PriorityEntry{Account: acc, Priority: PriorityInitial})
	require.True(t, p.Contains(acc))

	entry, ok := p.Get(acc)
	require.True(t, ok)
	require.Equal(t, PriorityInitial, entry.Priority)

	require.True(t, p.Erase(acc))
	require.False(t, p.Contains(acc))
	require.False(t, p.Erase(acc))
}

func TestPriorityIndexModifyPreservesOrdering(t *testing.T) {
	p := newPriorityIndex()
	a1 := common.AccountFromUint64(1)
	a2 := common.AccountFromUint64(2)
	a3 := common.AccountFromUint64(3)

	p.Insert(PriorityEntry{Account: a1, Priority: 1})
	p.Insert(PriorityEntry{Account: a2, Priority: 1})
	p.Insert(PriorityEntry{Account: a3, Priority: 1})

	require.True(t, p.Modify(a2, func(e *PriorityEntry) { e.Priority = 10 }))

	var order []common.Account
	p.AscendByPriority(func(e PriorityEntry) bool {
		order = append(order, e.Account)
		return true
	})
	require.Equal(t, []common.Account{a2, a1, a3}, order, "highest priority first, ties broken by insertion order")
}

func TestPriorityIndexPopFrontIsInsertionOrder(t *testing.T) {
	p := newPriorityIndex()
	a1 := common.AccountFromUint64(1)
	a2 := common.AccountFromUint64(2)

	p.Insert(PriorityEntry{Account: a1, Priority: 1})
	p.Insert(PriorityEntry{Account: a2, Priority: 100})

	front, ok := p.PopFront()
	require.True(t, ok)
	require.Equal(t, a1, front.Account, "PopFront evicts oldest insertion, not lowest priority")
	require.Equal(t, 1, p.Len())
}

func TestPriorityIndexSnapshotIsDeepCopy(t *testing.T) {
	p := newPriorityIndex()
	acc := common.AccountFromUint64(1)
	p.Insert(PriorityEntry{Account: acc, Priority: 2})

	snap := p.Snapshot()
	snap[0].Priority = 999

	entry, ok := p.Get(acc)
	require.True(t, ok)
	require.Equal(t, 2.0, entry.Priority, "mutating a snapshot must not affect the live index")
}
