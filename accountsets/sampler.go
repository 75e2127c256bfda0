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

// NextPriority samples the priority index in (priority desc, insertion
// asc) order, skipping any account still under cooldown or rejected by
// filter, and returns the first account accepted. It returns
// common.ZeroAccount when nothing qualifies — including, per §4.4's
// edge case, when the index is empty (filter is never invoked then).
func (a *AccountSets) NextPriority(filter func(common.Account) bool) common.Account {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock.Now()
	result := common.ZeroAccount
	a.priorities.AscendByPriority(func(entry PriorityEntry) bool {
		if !entry.Timestamp.IsZero() && now.Sub(entry.Timestamp) < a.config.Cooldown {
			return true
		}
		if !filter(entry.Account) {
			return true
		}
		result = entry.Account
		return false
	})
	return result
}

// NextBlocking samples the blocking index's unknown-dependency-account
// bucket in insertion order, returning the first dependency hash
// filter accepts, or common.ZeroHash if none qualify.
func (a *AccountSets) NextBlocking(filter func(common.Hash) bool) common.Hash {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := common.ZeroHash
	a.blocking.AscendUnknown(func(entry BlockingEntry) bool {
		if !filter(entry.Dependency) {
			return true
		}
		result = entry.Dependency
		return false
	})
	return result
}

// TimestampSet stamps the current time on account's priority entry, if
// one exists. The sampler's cooldown check reads this stamp back.
func (a *AccountSets) TimestampSet(account common.Account) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock.Now()
	a.priorities.Modify(account, func(e *PriorityEntry) {
		e.Timestamp = now
	})
}

// TimestampReset restores account's priority entry timestamp to the
// zero value (never sampled), lifting any cooldown.
func (a *AccountSets) TimestampReset(account common.Account) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.priorities.Modify(account, func(e *PriorityEntry) {
		e.Timestamp = time.Time{}
	})
}
