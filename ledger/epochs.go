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

package ledger

import (
	"encoding/binary"
	"fmt"

	"github.com/erigontech/erigon-bootstrap/common"
	"github.com/erigontech/erigon-bootstrap/store"
)

// Epoch numbers a released epoch generation. Epoch(0) means "no epoch
// assigned yet".
type Epoch uint32

// EpochEntry is one row of the epoch registry: the account that signs
// blocks of this epoch, and the link value a state block must carry to
// be recognized as this epoch's upgrade block.
type EpochEntry struct {
	Signer common.Account
	Link   common.Hash
}

// Epochs is a small in-memory registry of released epochs, ported from
// epochs.hpp. A block is recognized as an epoch block only by its Link
// field matching a registered entry — callers still must separately
// confirm the other epoch-block rules (state block, zero balance
// change, unchanged representative; see epochs.hpp's own warning) that
// this core does not track.
type Epochs struct {
	byEpoch map[Epoch]EpochEntry
	byLink  map[common.Hash]Epoch
}

// NewEpochs returns an empty registry.
func NewEpochs() *Epochs {
	return &Epochs{
		byEpoch: make(map[Epoch]EpochEntry),
		byLink:  make(map[common.Hash]Epoch),
	}
}

// Add registers epoch with the given signer and link, overwriting any
// prior entry for the same epoch number.
func (e *Epochs) Add(epoch Epoch, signer common.Account, link common.Hash) {
	e.byEpoch[epoch] = EpochEntry{Signer: signer, Link: link}
	e.byLink[link] = epoch
}

// IsEpochLink reports whether link matches one of the registered epoch
// links. Per epochs.hpp's own warning, this alone does not prove a
// block is an epoch block.
func (e *Epochs) IsEpochLink(link common.Hash) bool {
	_, ok := e.byLink[link]
	return ok
}

// Epoch returns the epoch a link is registered under, or 0 if link
// does not match any registered epoch.
func (e *Epochs) Epoch(link common.Hash) Epoch {
	return e.byLink[link]
}

// Link returns the link value registered for epoch.
func (e *Epochs) Link(epoch Epoch) common.Hash {
	return e.byEpoch[epoch].Link
}

// Signer returns the signer account registered for epoch.
func (e *Epochs) Signer(epoch Epoch) common.Account {
	return e.byEpoch[epoch].Signer
}

// IsSequential reports whether newEpoch is exactly one version ahead
// of epoch.
func IsSequential(epoch, newEpoch Epoch) bool {
	return newEpoch == epoch+1
}

// BlockEpoch loads the block stored at hash and reports the epoch its
// Link field names, if any is registered. Per epochs.hpp's own
// warning (see Epochs.IsEpochLink), this only checks the link value;
// it does not re-verify the other epoch-block rules a full validator
// would (state block, zero balance change, unchanged representative).
func BlockEpoch(txn store.Txn, hash common.Hash, epochs *Epochs) (Epoch, bool, error) {
	blk, err := getBlock(txn, hash)
	if err != nil {
		return 0, false, err
	}
	if !epochs.IsEpochLink(blk.Link) {
		return 0, false, nil
	}
	return epochs.Epoch(blk.Link), true, nil
}

// PutEpoch persists epoch's entry to store.Epochs, so a restarted node
// can recover its registry with LoadEpochs instead of re-releasing
// every epoch from scratch.
func PutEpoch(txn store.Txn, epoch Epoch, entry EpochEntry) error {
	raw, err := jsonAPI.Marshal(entry)
	if err != nil {
		return err
	}
	return txn.Table(store.Epochs).Put(epochKey(epoch), raw)
}

// LoadEpochs rebuilds an Epochs registry from every row in store.Epochs.
func LoadEpochs(txn store.Txn) (*Epochs, error) {
	epochs := NewEpochs()
	err := txn.Table(store.Epochs).ForEach(func(k, v []byte) (bool, error) {
		if len(k) != 8 {
			return false, fmt.Errorf("ledger: malformed epoch key %x", k)
		}
		var entry EpochEntry
		if err := jsonAPI.Unmarshal(v, &entry); err != nil {
			return false, fmt.Errorf("ledger: decoding epoch entry: %w", err)
		}
		epochs.Add(Epoch(binary.BigEndian.Uint64(k)), entry.Signer, entry.Link)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return epochs, nil
}

func epochKey(epoch Epoch) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], uint64(epoch))
	return k[:]
}
