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

// Package ledger supplements the account-set engine with the two
// pieces of the original ledger that spec.md's distillation dropped
// but Design Notes §9 calls out by name: the representative fixpoint
// walk and the epoch-link registry.
package ledger

import "github.com/erigontech/erigon-bootstrap/common"

// Kind tags a Block's variant, mirroring nano's send/receive/open/
// change/state block types.
type Kind uint8

const (
	Send Kind = iota
	Receive
	Open
	Change
	State
)

// Block is a tagged variant over the five ledger block kinds. Only the
// fields relevant to the representative walk, epoch detection and the
// latest-block record are kept: Previous (meaningful for Send/Receive),
// Link (meaningful for State, to recognize an epoch block) and Account
// (the owning account, whose latest-block pointer is updated on store).
type Block struct {
	Hash     common.Hash
	Kind     Kind
	Previous common.Hash
	Link     common.Hash
	Account  common.Account
}
