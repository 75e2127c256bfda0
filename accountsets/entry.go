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
	"time"

	"github.com/erigontech/erigon-bootstrap/common"
)

// Tunable constants for the priority arithmetic. Exact numerics are
// part of the contract: tests pin them.
const (
	PriorityInitial  = 2.0
	PriorityIncrease = 2.0
	PriorityDivide   = 2.0
	PriorityMax      = 128.0
	PriorityCutoff   = 0.15
)

// PriorityEntry is one row of the priority index (C1): an account
// worth pulling blocks for, its score, and the last time it was
// sampled (zero time means "never sampled").
type PriorityEntry struct {
	Account   common.Account
	Priority  float64
	Timestamp time.Time

	seq uint64 // insertion sequence, breaks priority ties (§4.4)
}

// zeroPriorityEntry is the sentinel original-entry recorded by block()
// when the account being blocked had no prior priority entry.
func zeroPriorityEntry() PriorityEntry {
	return PriorityEntry{Account: common.ZeroAccount}
}

// BlockingEntry is one row of the blocking index (C2): an account
// whose progress is stalled on a dependency, plus the priority entry
// it had before being blocked (restored verbatim on a successful
// unblock). Account is always the real, non-zero account that is
// blocked; Original may legitimately carry the zero-account sentinel
// when the account had no priority entry at block time (§3.1) — the
// two are kept as distinct fields so that sentinel never has to stand
// in for the index key (see Open Question 3 in SPEC_FULL.md).
type BlockingEntry struct {
	Account           common.Account
	Original          PriorityEntry
	Dependency        common.Hash
	DependencyAccount common.Account

	seq uint64 // insertion sequence; overflow eviction follows the insertion list, not this field
}
