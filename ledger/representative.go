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
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/erigontech/erigon-bootstrap/common"
	"github.com/erigontech/erigon-bootstrap/store"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// RepresentativeOf walks Previous pointers starting at hash until it
// reaches a block that names a representative directly (Open, Change,
// or State), returning that block's own hash. Send and Receive blocks
// only forward the walk to their Previous block, exactly as
// representative_visitor's send_block/receive_block handlers do; the
// walk terminates because every account chain bottoms out at an Open
// block.
func RepresentativeOf(txn store.Txn, hash common.Hash) (common.Hash, error) {
	current := hash
	for {
		blk, err := getBlock(txn, current)
		if err != nil {
			return common.ZeroHash, err
		}
		switch blk.Kind {
		case Send, Receive:
			current = blk.Previous
		case Open, Change, State:
			return blk.Hash, nil
		default:
			return common.ZeroHash, fmt.Errorf("ledger: unknown block kind %d at %s", blk.Kind, current)
		}
	}
}

func getBlock(txn store.Txn, hash common.Hash) (Block, error) {
	raw, ok, err := txn.Table(store.Blocks).Get(hash[:])
	if err != nil {
		return Block{}, err
	}
	if !ok {
		return Block{}, fmt.Errorf("ledger: block %s not found", hash)
	}
	var blk Block
	if err := jsonAPI.Unmarshal(raw, &blk); err != nil {
		return Block{}, fmt.Errorf("ledger: decoding block %s: %w", hash, err)
	}
	return blk, nil
}

// PutBlock stores blk under its own hash.
func PutBlock(txn store.Txn, blk Block) error {
	raw, err := jsonAPI.Marshal(blk)
	if err != nil {
		return err
	}
	return txn.Table(store.Blocks).Put(blk.Hash[:], raw)
}
