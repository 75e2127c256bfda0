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

	"github.com/erigontech/erigon-bootstrap/common"
	"github.com/erigontech/erigon-bootstrap/store"
)

// AccountRecord is the row stored under store.Accounts: the latest
// block this node has recorded for an account, the fact a
// representative walk (RepresentativeOf) needs as its starting point.
type AccountRecord struct {
	LatestBlock common.Hash
}

// PutLatestBlock records hash as account's latest known block.
func PutLatestBlock(txn store.Txn, account common.Account, hash common.Hash) error {
	raw, err := jsonAPI.Marshal(AccountRecord{LatestBlock: hash})
	if err != nil {
		return err
	}
	return txn.Table(store.Accounts).Put(account[:], raw)
}

// LatestBlock returns account's latest known block hash, if recorded.
func LatestBlock(txn store.Txn, account common.Account) (common.Hash, bool, error) {
	raw, ok, err := txn.Table(store.Accounts).Get(account[:])
	if err != nil || !ok {
		return common.ZeroHash, false, err
	}
	var rec AccountRecord
	if err := jsonAPI.Unmarshal(raw, &rec); err != nil {
		return common.ZeroHash, false, fmt.Errorf("ledger: decoding account record %s: %w", account, err)
	}
	return rec.LatestBlock, true, nil
}
