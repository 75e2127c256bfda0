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

import "github.com/erigontech/erigon-bootstrap/common"

// Blocked reports whether acc currently has a blocking entry.
func (a *AccountSets) Blocked(acc common.Account) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.blocking.Contains(acc)
}

// Prioritized reports whether acc currently has a priority entry.
func (a *AccountSets) Prioritized(acc common.Account) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.priorities.Contains(acc)
}

// Priority returns acc's current priority, or 0.0 if it is blocked or
// absent from both sets.
func (a *AccountSets) Priority(acc common.Account) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	entry, ok := a.priorities.Get(acc)
	if !ok {
		return 0.0
	}
	return entry.Priority
}

// PrioritySize returns the number of entries in the priority set.
func (a *AccountSets) PrioritySize() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.priorities.Len()
}

// BlockedSize returns the number of entries in the blocking set.
func (a *AccountSets) BlockedSize() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.blocking.Len()
}

// PriorityHalfFull reports whether the priority set holds strictly
// more than half of its configured capacity.
func (a *AccountSets) PriorityHalfFull() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.priorities.Len() > a.config.PrioritiesMax/2
}

// BlockedHalfFull reports whether the blocking set holds strictly more
// than half of its configured capacity.
func (a *AccountSets) BlockedHalfFull() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.blocking.Len() > a.config.BlockingMax/2
}

// Info is the deep-copy snapshot format from §6.3.
type Info struct {
	Blocking   []BlockingEntry `json:"blocking"`
	Priorities []PriorityEntry `json:"priorities"`
}

// Info returns a deep-copied snapshot of both containers.
func (a *AccountSets) Info() Info {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Info{
		Blocking:   a.blocking.Snapshot(),
		Priorities: a.priorities.Snapshot(),
	}
}

// ContainerInfo extends Info with the count of blocking entries whose
// dependency account is still unknown.
type ContainerInfo struct {
	Info
	BlockingUnknown int `json:"blocking_unknown"`
}

// ContainerInfo returns Info plus BlockingUnknown.
func (a *AccountSets) ContainerInfo() ContainerInfo {
	a.mu.Lock()
	defer a.mu.Unlock()
	return ContainerInfo{
		Info: Info{
			Blocking:   a.blocking.Snapshot(),
			Priorities: a.priorities.Snapshot(),
		},
		BlockingUnknown: a.blocking.CountDependencyAccount(common.ZeroAccount),
	}
}
