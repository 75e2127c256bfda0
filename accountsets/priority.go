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
	"container/list"

	"github.com/google/btree"

	"github.com/erigontech/erigon-bootstrap/common"
)

// priorityNode is the payload stored in both the insertion-order list
// and the priority-ordered btree; the two indices point at the same
// logical entry so a mutation (priority_up/priority_down/timestamp_set)
// only has to update one struct.
type priorityNode struct {
	entry PriorityEntry
}

// priorityLess orders two nodes by (priority desc, seq asc), giving
// next_priority (§4.4) a descending-priority walk with insertion-order
// tie-breaking, per spec.md's fixed answer to Open Question 1.
func priorityLess(a, b *priorityNode) bool {
	if a.entry.Priority != b.entry.Priority {
		return a.entry.Priority > b.entry.Priority
	}
	return a.entry.seq < b.entry.seq
}

// priorityIndex is C1: the priority container. It supports unique
// lookup by account, insertion-order iteration (for overflow eviction),
// and a priority-ordered view (for the sampler).
type priorityIndex struct {
	byAccount map[common.Account]*list.Element // -> insertion list element
	insertion *list.List                       // list.Element.Value is *priorityNode
	byScore   *btree.BTreeG[*priorityNode]
	nextSeq   uint64
}

func newPriorityIndex() *priorityIndex {
	return &priorityIndex{
		byAccount: make(map[common.Account]*list.Element),
		insertion: list.New(),
		byScore:   btree.NewG(32, priorityLess),
	}
}

func (p *priorityIndex) Len() int { return len(p.byAccount) }

func (p *priorityIndex) Contains(a common.Account) bool {
	_, ok := p.byAccount[a]
	return ok
}

// Get returns the entry for a and whether it was present.
func (p *priorityIndex) Get(a common.Account) (PriorityEntry, bool) {
	el, ok := p.byAccount[a]
	if !ok {
		return PriorityEntry{}, false
	}
	return el.Value.(*priorityNode).entry, true
}

// Insert adds a brand-new entry. The caller must have already checked
// that a is not present.
func (p *priorityIndex) Insert(entry PriorityEntry) {
	entry.seq = p.nextSeq
	p.nextSeq++
	node := &priorityNode{entry: entry}
	el := p.insertion.PushBack(node)
	p.byAccount[entry.Account] = el
	p.byScore.ReplaceOrInsert(node)
}

// Modify replaces the stored entry's mutable fields (priority,
// timestamp) in place, preserving its insertion position and seq. The
// node is always pulled out of the priority-ordered btree before fn
// runs and reinserted after: mutating its priority in place without
// doing so would corrupt the btree's internal ordering invariant.
func (p *priorityIndex) Modify(a common.Account, fn func(*PriorityEntry)) bool {
	el, ok := p.byAccount[a]
	if !ok {
		return false
	}
	node := el.Value.(*priorityNode)
	p.byScore.Delete(node)
	fn(&node.entry)
	p.byScore.ReplaceOrInsert(node)
	return true
}

// Erase removes a's entry, if any, and reports whether it removed one.
func (p *priorityIndex) Erase(a common.Account) bool {
	el, ok := p.byAccount[a]
	if !ok {
		return false
	}
	node := el.Value.(*priorityNode)
	p.byScore.Delete(node)
	p.insertion.Remove(el)
	delete(p.byAccount, a)
	return true
}

// PopFront evicts and returns the oldest-inserted entry (§4.3 trim).
func (p *priorityIndex) PopFront() (PriorityEntry, bool) {
	front := p.insertion.Front()
	if front == nil {
		return PriorityEntry{}, false
	}
	node := front.Value.(*priorityNode)
	p.insertion.Remove(front)
	p.byScore.Delete(node)
	delete(p.byAccount, node.entry.Account)
	return node.entry, true
}

// AscendByPriority walks entries in (priority desc, insertion asc)
// order, stopping when visit returns false.
func (p *priorityIndex) AscendByPriority(visit func(PriorityEntry) bool) {
	p.byScore.Ascend(func(node *priorityNode) bool {
		return visit(node.entry)
	})
}

// Snapshot returns a deep copy of every entry, in insertion order
// (§6.3's info() contract).
func (p *priorityIndex) Snapshot() []PriorityEntry {
	out := make([]PriorityEntry, 0, p.insertion.Len())
	for el := p.insertion.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*priorityNode).entry)
	}
	return out
}
