// Copyright 2021 The Erigon Authors
// (original work)
// Copyright 2024 The Erigon Authors
// (modifications)
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

package store

const (
	// Accounts holds the latest known account record.
	// key - account (32 bytes)
	// value - jsoniter-encoded ledger.AccountRecord
	Accounts Table = "Accounts"

	// Blocks holds every block this node has fetched, by hash.
	// key - block hash (32 bytes)
	// value - jsoniter-encoded ledger.Block
	Blocks Table = "Blocks"

	// Epochs holds the epoch-link signer table used to recognize epoch
	// blocks (see ledger.Epochs).
	// key - epoch number, big-endian u64
	// value - jsoniter-encoded ledger.EpochEntry
	Epochs Table = "Epochs"
)

// Tables lists every table this store's schema defines, for callers
// that need to pre-create them (NewMemStore creates each of these
// when the store is built).
var Tables = []Table{Accounts, Blocks, Epochs}
