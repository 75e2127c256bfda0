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

	"github.com/erigontech/erigon-bootstrap/common"
)

// blockingIndex is C2: the blocking container. Primary key is the
// blocked account (unique); two auxiliary multimaps index by
// dependency hash and by dependency account (including the zero,
// "unknown" bucket), mirroring the boost multi-index's tag_dependency
// and tag_dependency_account tags (Design Notes §9).
type blockingIndex struct {
	byAccount map[common.Account]*list.Element // -> insertion list element
	insertion *list.List                       // list.Element.Value is *BlockingEntry

	byDependency        map[common.Hash]map[common.Account]struct{}
	byDependencyAccount map[common.Account]map[common.Account]struct{}

	nextSeq uint64
}

func newBlockingIndex() *blockingIndex {
	return &blockingIndex{
		byAccount:           make(map[common.Account]*list.Element),
		insertion:           list.New(),
		byDependency:        make(map[common.Hash]map[common.Account]struct{}),
		byDependencyAccount: make(map[common.Account]map[common.Account]struct{}),
	}
}

func (b *blockingIndex) Len() int { return len(b.byAccount) }

func (b *blockingIndex) Contains(a common.Account) bool {
	_, ok := b.byAccount[a]
	return ok
}

func (b *blockingIndex) Get(a common.Account) (BlockingEntry, bool) {
	el, ok := b.byAccount[a]
	if !ok {
		return BlockingEntry{}, false
	}
	return *el.Value.(*BlockingEntry), true
}

func (b *blockingIndex) addToAux(entry *BlockingEntry) {
	dep := b.byDependency[entry.Dependency]
	if dep == nil {
		dep = make(map[common.Account]struct{})
		b.byDependency[entry.Dependency] = dep
	}
	dep[entry.Account] = struct{}{}

	depAcc := b.byDependencyAccount[entry.DependencyAccount]
	if depAcc == nil {
		depAcc = make(map[common.Account]struct{})
		b.byDependencyAccount[entry.DependencyAccount] = depAcc
	}
	depAcc[entry.Account] = struct{}{}
}

func (b *blockingIndex) removeFromAux(entry *BlockingEntry) {
	if dep, ok := b.byDependency[entry.Dependency]; ok {
		delete(dep, entry.Account)
		if len(dep) == 0 {
			delete(b.byDependency, entry.Dependency)
		}
	}
	if depAcc, ok := b.byDependencyAccount[entry.DependencyAccount]; ok {
		delete(depAcc, entry.Account)
		if len(depAcc) == 0 {
			delete(b.byDependencyAccount, entry.DependencyAccount)
		}
	}
}

// Insert adds a brand-new blocking entry. The caller must have already
// checked that entry.Account is not present.
func (b *blockingIndex) Insert(entry BlockingEntry) {
	entry.seq = b.nextSeq
	b.nextSeq++
	stored := entry
	el := b.insertion.PushBack(&stored)
	b.byAccount[entry.Account] = el
	b.addToAux(&stored)
}

// ModifyDependencyAccount rewrites the dependency account of every
// blocking entry whose dependency equals hash, skipping rows that
// already carry depAccount. Returns the number of rows changed and
// whether the hash's equal-range was empty to begin with — a
// non-empty range where every row already matched depAccount is not
// the same outcome as no row matching hash at all, and callers must
// be able to tell the two apart.
func (b *blockingIndex) ModifyDependencyAccount(hash common.Hash, depAccount common.Account, changed func(common.Account)) (count int, bucketEmpty bool) {
	accounts, ok := b.byDependency[hash]
	if !ok || len(accounts) == 0 {
		return 0, true
	}
	// Copy the account set first: we're about to mutate the very
	// byDependencyAccount buckets we'd otherwise be ranging over.
	targets := make([]common.Account, 0, len(accounts))
	for a := range accounts {
		targets = append(targets, a)
	}
	for _, a := range targets {
		el := b.byAccount[a]
		entry := el.Value.(*BlockingEntry)
		if entry.DependencyAccount == depAccount {
			continue
		}
		// dependency hash is unchanged, only the aux dependency-account
		// bucket moves.
		if old, ok := b.byDependencyAccount[entry.DependencyAccount]; ok {
			delete(old, entry.Account)
			if len(old) == 0 {
				delete(b.byDependencyAccount, entry.DependencyAccount)
			}
		}
		entry.DependencyAccount = depAccount
		newBucket := b.byDependencyAccount[depAccount]
		if newBucket == nil {
			newBucket = make(map[common.Account]struct{})
			b.byDependencyAccount[depAccount] = newBucket
		}
		newBucket[entry.Account] = struct{}{}
		count++
		changed(a)
	}
	return count, false
}

// Erase removes a's entry, if any, and reports whether it removed one.
func (b *blockingIndex) Erase(a common.Account) bool {
	el, ok := b.byAccount[a]
	if !ok {
		return false
	}
	entry := el.Value.(*BlockingEntry)
	b.removeFromAux(entry)
	b.insertion.Remove(el)
	delete(b.byAccount, a)
	return true
}

// PopFront evicts and returns the oldest-inserted entry (§4.3 trim).
func (b *blockingIndex) PopFront() (BlockingEntry, bool) {
	front := b.insertion.Front()
	if front == nil {
		return BlockingEntry{}, false
	}
	entry := front.Value.(*BlockingEntry)
	b.removeFromAux(entry)
	b.insertion.Remove(front)
	delete(b.byAccount, entry.Account)
	return *entry, true
}

// AscendUnknown walks, in insertion order, every blocking entry whose
// dependency account is still unknown (the zero bucket) — §4.4's
// next_blocking source set.
func (b *blockingIndex) AscendUnknown(visit func(BlockingEntry) bool) {
	for el := b.insertion.Front(); el != nil; el = el.Next() {
		entry := el.Value.(*BlockingEntry)
		if !entry.DependencyAccount.IsZero() {
			continue
		}
		if !visit(*entry) {
			return
		}
	}
}

// AscendKnown walks, in insertion order, every blocking entry whose
// dependency account has been resolved (non-zero) — §4.2's
// sync_dependencies source set. Ordering by overall insertion order
// (rather than per-bucket order) keeps this deterministic and matches
// the boost multi-index's single compound-key walk closely enough:
// sync_dependencies has no documented ordering requirement beyond
// visiting every resolved row once.
func (b *blockingIndex) AscendKnown(visit func(BlockingEntry) bool) {
	for el := b.insertion.Front(); el != nil; el = el.Next() {
		entry := el.Value.(*BlockingEntry)
		if entry.DependencyAccount.IsZero() {
			continue
		}
		if !visit(*entry) {
			return
		}
	}
}

// CountDependencyAccount returns the number of blocking entries whose
// dependency account equals a (used for container_info's
// blocking_unknown, queried with a = zero account).
func (b *blockingIndex) CountDependencyAccount(a common.Account) int {
	return len(b.byDependencyAccount[a])
}

// Snapshot returns a deep copy of every entry, in insertion order.
func (b *blockingIndex) Snapshot() []BlockingEntry {
	out := make([]BlockingEntry, 0, b.insertion.Len())
	for el := b.insertion.Front(); el != nil; el = el.Next() {
		out = append(out, *el.Value.(*BlockingEntry))
	}
	return out
}
