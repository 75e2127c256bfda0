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
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/erigontech/erigon-bootstrap/common"
	"github.com/erigontech/erigon-bootstrap/metrics"
)

func newTestEngine(t *testing.T) (*AccountSets, *metrics.Counters, *clock.Mock) {
	t.Helper()
	mockClock := clock.NewMock()
	counters := metrics.NewCounters(newTestRegistry())
	cfg := Config{PrioritiesMax: 1024, BlockingMax: 1024, Cooldown: time.Second}
	return New(cfg, counters, mockClock), counters, mockClock
}

// S1 boost saturation.
func TestPriorityUpSaturatesAtMax(t *testing.T) {
	a, _, _ := newTestEngine(t)
	acc := common.AccountFromUint64(1)

	for i := 0; i < 64; i++ {
		a.PriorityUp(acc)
	}
	require.Equal(t, PriorityMax, a.Priority(acc))

	a.PriorityUp(acc)
	require.Equal(t, PriorityMax, a.Priority(acc))
}

// S2 decay to cutoff.
func TestPriorityDownDecaysToCutoff(t *testing.T) {
	a, counters, _ := newTestEngine(t)
	acc := common.AccountFromUint64(1)

	a.PriorityUp(acc)
	require.Equal(t, 2.0, a.Priority(acc))

	a.PriorityDown(acc)
	require.Equal(t, 1.0, a.Priority(acc))

	a.PriorityDown(acc)
	require.Equal(t, 0.5, a.Priority(acc))

	a.PriorityDown(acc)
	require.Equal(t, 0.25, a.Priority(acc))

	a.PriorityDown(acc)
	require.False(t, a.Prioritized(acc))
	require.Equal(t, 0.0, a.Priority(acc))
	require.Equal(t, float64(1), counters.Value(metrics.PriorityEraseByThreshold))
}

// Open Question 2: a priority that decays to exactly priority_cutoff
// erases, it does not survive. Only values strictly above the cutoff
// are kept (invariant 5).
func TestPriorityDownErasesExactlyAtCutoff(t *testing.T) {
	a, _, _ := newTestEngine(t)
	acc := common.AccountFromUint64(1)

	// Bypass the public boost ladder to land precisely on 2*cutoff,
	// which priority_down's single division brings to exactly cutoff.
	a.priorities.Insert(PriorityEntry{Account: acc, Priority: 2 * PriorityCutoff})

	a.PriorityDown(acc)

	require.False(t, a.Prioritized(acc))
}

// S3 block/unblock round-trip.
func TestBlockUnblockRoundTrip(t *testing.T) {
	a, _, _ := newTestEngine(t)
	acc := common.AccountFromUint64(1)
	h := common.HashFromUint64(1)

	a.PriorityUp(acc)
	a.PriorityUp(acc)
	require.Equal(t, 4.0, a.Priority(acc))

	a.Block(acc, h)
	require.False(t, a.Prioritized(acc))
	require.True(t, a.Blocked(acc))
	require.Equal(t, 0.0, a.Priority(acc))

	a.Unblock(acc, h)
	require.True(t, a.Prioritized(acc))
	require.False(t, a.Blocked(acc))
	require.Equal(t, 4.0, a.Priority(acc))
}

// Block on an already-blocked account must be a no-op: blockingIndex's
// insertion list has a unique-account contract, and calling Insert
// twice for the same account without an intervening Unblock/Erase
// would orphan the first list element and corrupt Len() accounting.
func TestBlockOnAlreadyBlockedAccountIsNoop(t *testing.T) {
	a, _, _ := newTestEngine(t)
	acc := common.AccountFromUint64(1)
	h1 := common.HashFromUint64(1)
	h2 := common.HashFromUint64(2)

	a.Block(acc, h1)
	a.Block(acc, h2)

	require.Equal(t, 1, a.BlockedSize())
	entry, ok := a.blocking.Get(acc)
	require.True(t, ok)
	require.Equal(t, h1, entry.Dependency, "the original dependency must survive a redundant block call")
}

// S4 hash mismatch ignored.
func TestUnblockHashMismatchIsNoop(t *testing.T) {
	a, counters, _ := newTestEngine(t)
	acc := common.AccountFromUint64(1)
	h1 := common.HashFromUint64(1)
	h2 := common.HashFromUint64(2)

	a.Block(acc, h1)
	a.Unblock(acc, h2)

	require.True(t, a.Blocked(acc))
	require.Equal(t, float64(1), counters.Value(metrics.UnblockFailed))
}

// S5 dependency resolution promotes.
func TestDependencyResolutionPromotes(t *testing.T) {
	a, _, _ := newTestEngine(t)
	acc := common.AccountFromUint64(1)
	dep := common.AccountFromUint64(2)
	h := common.HashFromUint64(1)

	a.Block(acc, h)
	a.DependencyUpdate(h, dep)
	a.SyncDependencies()

	require.True(t, a.Prioritized(dep))
	require.Equal(t, PriorityInitial, a.Priority(dep))
	require.True(t, a.Blocked(acc))
}

func TestSyncDependenciesCounterIsPerPromotion(t *testing.T) {
	a, counters, _ := newTestEngine(t)

	a.SyncDependencies()
	require.Equal(t, float64(0), counters.Value(metrics.SyncDependencies), "no blocking row with a known dependency account means no promotion")

	acc1 := common.AccountFromUint64(1)
	acc2 := common.AccountFromUint64(2)
	dep1 := common.AccountFromUint64(3)
	dep2 := common.AccountFromUint64(4)
	h1 := common.HashFromUint64(1)
	h2 := common.HashFromUint64(2)

	a.Block(acc1, h1)
	a.Block(acc2, h2)
	a.DependencyUpdate(h1, dep1)
	a.DependencyUpdate(h2, dep2)

	a.SyncDependencies()
	require.Equal(t, float64(2), counters.Value(metrics.SyncDependencies), "one increment per account actually promoted")

	a.SyncDependencies()
	require.Equal(t, float64(2), counters.Value(metrics.SyncDependencies), "re-running with both dependency accounts already prioritized promotes nothing new")
}

// S6 overflow eviction by insertion age, not priority.
func TestOverflowEvictsOldestInsertion(t *testing.T) {
	mockClock := clock.NewMock()
	counters := metrics.NewCounters(newTestRegistry())
	cfg := Config{PrioritiesMax: 3, BlockingMax: 3, Cooldown: time.Second}
	a := New(cfg, counters, mockClock)

	a1 := common.AccountFromUint64(1)
	a2 := common.AccountFromUint64(2)
	a3 := common.AccountFromUint64(3)
	a4 := common.AccountFromUint64(4)

	a.PrioritySet(a1)
	a.PrioritySet(a2)
	a.PrioritySet(a3)

	for i := 0; i < 10; i++ {
		a.PriorityUp(a2)
	}

	a.PrioritySet(a4)

	require.False(t, a.Prioritized(a1), "oldest insertion must be evicted regardless of its priority")
	require.True(t, a.Prioritized(a2))
	require.True(t, a.Prioritized(a3))
	require.True(t, a.Prioritized(a4))
}

// S7 sampler cooldown.
func TestSamplerCooldown(t *testing.T) {
	a, _, mockClock := newTestEngine(t)
	acc := common.AccountFromUint64(1)
	always := func(common.Account) bool { return true }

	a.PrioritySet(acc)
	require.Equal(t, acc, a.NextPriority(always))

	a.TimestampSet(acc)
	require.True(t, a.NextPriority(always).IsZero())

	mockClock.Add(2 * time.Second)
	require.Equal(t, acc, a.NextPriority(always))
}

func TestZeroAccountOpsAreNoops(t *testing.T) {
	a, _, _ := newTestEngine(t)

	a.PriorityUp(common.ZeroAccount)
	a.PriorityDown(common.ZeroAccount)
	a.PrioritySet(common.ZeroAccount)
	a.Unblock(common.ZeroAccount, common.ZeroHash)

	require.Equal(t, 0, a.PrioritySize())
	require.Equal(t, 0, a.BlockedSize())
}

func TestDependencyUpdateFailedWhenNoRowMatches(t *testing.T) {
	a, counters, _ := newTestEngine(t)
	a.DependencyUpdate(common.HashFromUint64(99), common.AccountFromUint64(1))
	require.Equal(t, float64(1), counters.Value(metrics.DependencyUpdateFailed))
}

func TestDependencyUpdateIdempotent(t *testing.T) {
	a, counters, _ := newTestEngine(t)
	acc := common.AccountFromUint64(1)
	dep := common.AccountFromUint64(2)
	h := common.HashFromUint64(1)

	a.Block(acc, h)
	a.DependencyUpdate(h, dep)
	require.Equal(t, float64(1), counters.Value(metrics.DependencyUpdate))

	a.DependencyUpdate(h, dep)
	require.Equal(t, float64(1), counters.Value(metrics.DependencyUpdate), "re-applying the same dependency account must not increment again")
	require.Equal(t, float64(0), counters.Value(metrics.DependencyUpdateFailed), "the hash still matched a row, so this must not count as a failed update")
}

func TestPriorityHalfFull(t *testing.T) {
	mockClock := clock.NewMock()
	counters := metrics.NewCounters(newTestRegistry())
	cfg := Config{PrioritiesMax: 4, BlockingMax: 4, Cooldown: time.Second}
	a := New(cfg, counters, mockClock)

	require.False(t, a.PriorityHalfFull())
	a.PrioritySet(common.AccountFromUint64(1))
	a.PrioritySet(common.AccountFromUint64(2))
	require.False(t, a.PriorityHalfFull(), "exactly half is not strictly more than half")
	a.PrioritySet(common.AccountFromUint64(3))
	require.True(t, a.PriorityHalfFull())
}

// TestDisjointnessProperty is invariant 1: after any sequence of
// operations, an account is never simultaneously prioritized and
// blocked.
func TestDisjointnessProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		mockClock := clock.NewMock()
		counters := metrics.NewCounters(newTestRegistry())
		cfg := Config{PrioritiesMax: 8, BlockingMax: 8, Cooldown: time.Second}
		a := New(cfg, counters, mockClock)

		accounts := make([]common.Account, 5)
		for i := range accounts {
			accounts[i] = common.AccountFromUint64(uint64(i + 1))
		}
		hashes := make([]common.Hash, 3)
		for i := range hashes {
			hashes[i] = common.HashFromUint64(uint64(i + 1))
		}

		pick := func() common.Account { return accounts[rapid.IntRange(0, len(accounts)-1).Draw(t, "acc")] }
		pickHash := func() common.Hash { return hashes[rapid.IntRange(0, len(hashes)-1).Draw(t, "hash")] }

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 6).Draw(t, "op") {
			case 0:
				a.PriorityUp(pick())
			case 1:
				a.PriorityDown(pick())
			case 2:
				a.PrioritySet(pick())
			case 3:
				a.Block(pick(), pickHash())
			case 4:
				a.Unblock(pick(), pickHash())
			case 5:
				a.DependencyUpdate(pickHash(), pick())
			case 6:
				a.SyncDependencies()
			}

			for _, acc := range accounts {
				require.False(t, a.Prioritized(acc) && a.Blocked(acc), "account %v is both prioritized and blocked", acc)
			}
			require.LessOrEqual(t, a.PrioritySize(), cfg.PrioritiesMax)
			require.LessOrEqual(t, a.BlockedSize(), cfg.BlockingMax)

			info := a.Info()
			for _, e := range info.Priorities {
				require.Greater(t, e.Priority, PriorityCutoff)
				require.LessOrEqual(t, e.Priority, PriorityMax)
			}
		}
	})
}
