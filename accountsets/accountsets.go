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

// Package accountsets implements the bootstrap account prioritization
// core: a bounded priority set of accounts worth pulling blocks for, a
// bounded blocking set of accounts stalled on an unresolved dependency,
// and the engine that moves accounts between the two.
package accountsets

import (
	"github.com/benbjohnson/clock"
	"github.com/sasha-s/go-deadlock"

	"github.com/erigontech/erigon-bootstrap/common"
	"github.com/erigontech/erigon-bootstrap/metrics"
)

// AccountSets is C3: the account-set engine. Every exported method
// takes the engine's single exclusive lock for its entire duration —
// no method call suspends or releases the lock mid-operation, so
// trim_overflow and dependency_update's bounded internal loops never
// interleave with another caller's mutation.
type AccountSets struct {
	mu deadlock.Mutex

	priorities *priorityIndex
	blocking   *blockingIndex

	config Config
	clock  clock.Clock
	sink   metrics.Sink
}

// New builds an engine with the given bounds/cooldown, metrics sink,
// and clock. Pass clock.New() in production and a clock.NewMock() in
// tests that need to simulate cooldown expiry (scenario S7) without a
// real sleep.
func New(cfg Config, sink metrics.Sink, clk clock.Clock) *AccountSets {
	return &AccountSets{
		priorities: newPriorityIndex(),
		blocking:   newBlockingIndex(),
		config:     cfg,
		clock:      clk,
		sink:       sink,
	}
}

func (a *AccountSets) inc(name string) { a.sink.Inc(name) }

// PriorityUp is priority_up (§4.1): boosts a's priority, inserting it
// at priority_initial if absent. No-op on the zero account. Bumps
// prioritize_failed, without mutation, if a is currently blocked.
func (a *AccountSets) PriorityUp(acc common.Account) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if acc.IsZero() {
		return
	}
	if a.blocking.Contains(acc) {
		a.inc(metrics.PrioritizeFailed)
		return
	}
	if a.priorities.Contains(acc) {
		a.priorities.Modify(acc, func(e *PriorityEntry) {
			e.Priority = minFloat(e.Priority+PriorityIncrease, PriorityMax)
		})
		a.inc(metrics.Prioritize)
		return
	}
	a.priorities.Insert(PriorityEntry{Account: acc, Priority: PriorityInitial})
	a.inc(metrics.Prioritize)
	a.inc(metrics.PriorityInsert)
	a.trimOverflow()
}

// PriorityDown is priority_down (§4.1): decays a's priority
// geometrically, erasing it once the result would not exceed
// priority_cutoff. No-op on the zero account; bumps
// deprioritize_failed if a is not currently prioritized.
func (a *AccountSets) PriorityDown(acc common.Account) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if acc.IsZero() {
		return
	}
	entry, ok := a.priorities.Get(acc)
	if !ok {
		a.inc(metrics.DeprioritizeFailed)
		return
	}
	next := entry.Priority / PriorityDivide
	if next <= PriorityCutoff {
		a.priorities.Erase(acc)
		a.inc(metrics.PriorityEraseByThreshold)
		return
	}
	a.priorities.Modify(acc, func(e *PriorityEntry) {
		e.Priority = next
	})
	a.inc(metrics.Deprioritize)
}

// PrioritySet is priority_set (§4.1): like priority_up's no-op
// branches for the zero account and blocked accounts, but for an
// absent, unblocked account it inserts fresh at priority_initial
// without boosting an existing entry.
func (a *AccountSets) PrioritySet(acc common.Account) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if acc.IsZero() {
		return
	}
	if a.blocking.Contains(acc) {
		a.inc(metrics.PrioritizeFailed)
		return
	}
	if a.priorities.Contains(acc) {
		return
	}
	a.priorities.Insert(PriorityEntry{Account: acc, Priority: PriorityInitial})
	a.inc(metrics.PriorityInsert)
	a.trimOverflow()
}

// Block is block (§4.2) (precondition: acc is not the zero account —
// violating this is a caller bug, not a runtime error mode, per §7).
// It captures acc's current priority entry (or the zero-account
// sentinel if it had none), erases it from priorities, and inserts a
// fresh blocking entry awaiting dependency resolution. acc already
// being blocked is a no-op: the state machine (§4.2) only transitions
// into Blocked from Absent or Prioritized, and blocking.Insert's own
// unique-account contract (mirroring the source's unique-keyed
// tag_account index, whose insert silently fails on a duplicate key)
// requires the caller to rule this case out first.
func (a *AccountSets) Block(acc common.Account, dependency common.Hash) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.blocking.Contains(acc) {
		return
	}

	original, hadPriority := a.priorities.Get(acc)
	if !hadPriority {
		original = zeroPriorityEntry()
	} else {
		a.priorities.Erase(acc)
		a.inc(metrics.PriorityEraseByBlock)
	}
	a.blocking.Insert(BlockingEntry{
		Account:    acc,
		Original:   original,
		Dependency: dependency,
	})
	a.inc(metrics.Block)
	a.inc(metrics.BlockingInsert)
	a.trimOverflow()
}

// Unblock is unblock (§4.2): if acc is blocked and maybeHash is either
// the zero hash or matches the stored dependency, restores acc's
// pre-block priority entry (or a fresh priority_initial entry if the
// original was the zero-account sentinel — the two paths are kept
// distinct per spec Open Question 3) and erases the blocking entry.
// Otherwise bumps unblock_failed.
func (a *AccountSets) Unblock(acc common.Account, maybeHash common.Hash) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if acc.IsZero() {
		return
	}
	entry, ok := a.blocking.Get(acc)
	if !ok || (!maybeHash.IsZero() && maybeHash != entry.Dependency) {
		a.inc(metrics.UnblockFailed)
		return
	}
	a.blocking.Erase(acc)
	if entry.Original.Account.IsZero() {
		a.priorities.Insert(PriorityEntry{Account: acc, Priority: PriorityInitial})
	} else {
		a.priorities.Insert(entry.Original)
	}
	a.inc(metrics.Unblock)
	a.trimOverflow()
}

// DependencyUpdate is dependency_update (§4.2) (precondition:
// depAccount is not the zero account — a caller bug otherwise, per
// §7). Every blocking row whose dependency equals hash has its
// dependency_account set to depAccount, counted once per row actually
// changed. dependency_update_failed is bumped only when no row's
// dependency equals hash at all — a non-empty match where every row
// already carried depAccount is not a failure.
func (a *AccountSets) DependencyUpdate(hash common.Hash, depAccount common.Account) {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, bucketEmpty := a.blocking.ModifyDependencyAccount(hash, depAccount, func(common.Account) {
		a.inc(metrics.DependencyUpdate)
	})
	if bucketEmpty {
		a.inc(metrics.DependencyUpdateFailed)
	}
}

// SyncDependencies is sync_dependencies (§4.2): for every blocking
// entry whose dependency account is known, promotes that account to
// the priority set via PrioritySet's logic — skipping accounts already
// tracked in either set — until the priority set reaches capacity.
func (a *AccountSets) SyncDependencies() {
	a.mu.Lock()
	defer a.mu.Unlock()

	// AscendKnown only reads the blocking index; promoting a dependency
	// account never touches blocking, so mutating priorities mid-walk
	// is safe.
	a.blocking.AscendKnown(func(entry BlockingEntry) bool {
		if a.priorities.Len() >= a.config.PrioritiesMax {
			return false
		}
		dep := entry.DependencyAccount
		if a.blocking.Contains(dep) || a.priorities.Contains(dep) {
			return true
		}
		a.priorities.Insert(PriorityEntry{Account: dep, Priority: PriorityInitial})
		a.inc(metrics.SyncDependencies)
		a.inc(metrics.PriorityInsert)
		return true
	})
	a.trimOverflow()
}

// trimOverflow is trim_overflow (§4.3): evicts oldest-inserted entries
// from each container until both are back within their configured
// bounds. Must be called with a.mu already held.
func (a *AccountSets) trimOverflow() {
	for a.priorities.Len() > a.config.PrioritiesMax {
		if _, ok := a.priorities.PopFront(); !ok {
			break
		}
		a.inc(metrics.PriorityEraseOverflow)
	}
	for a.blocking.Len() > a.config.BlockingMax {
		if _, ok := a.blocking.PopFront(); !ok {
			break
		}
		a.inc(metrics.BlockingEraseOverflow)
	}
}

func minFloat(x, y float64) float64 {
	if x < y {
		return x
	}
	return y
}
