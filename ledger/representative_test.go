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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/erigon-bootstrap/common"
	"github.com/erigontech/erigon-bootstrap/store"
)

func TestRepresentativeOfWalksThroughSendReceive(t *testing.T) {
	s := store.NewMemStore()

	open := Block{Hash: common.HashFromUint64(1), Kind: Open}
	send := Block{Hash: common.HashFromUint64(2), Kind: Send, Previous: open.Hash}
	receive := Block{Hash: common.HashFromUint64(3), Kind: Receive, Previous: send.Hash}

	require.NoError(t, s.Update(func(txn store.Txn) error {
		for _, b := range []Block{open, send, receive} {
			if err := PutBlock(txn, b); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, s.View(func(txn store.Txn) error {
		rep, err := RepresentativeOf(txn, receive.Hash)
		require.NoError(t, err)
		require.Equal(t, open.Hash, rep)
		return nil
	}))
}

func TestRepresentativeOfStopsAtStateBlock(t *testing.T) {
	s := store.NewMemStore()
	state := Block{Hash: common.HashFromUint64(1), Kind: State}

	require.NoError(t, s.Update(func(txn store.Txn) error { return PutBlock(txn, state) }))
	require.NoError(t, s.View(func(txn store.Txn) error {
		rep, err := RepresentativeOf(txn, state.Hash)
		require.NoError(t, err)
		require.Equal(t, state.Hash, rep)
		return nil
	}))
}

func TestRepresentativeOfMissingBlockErrors(t *testing.T) {
	s := store.NewMemStore()
	require.NoError(t, s.View(func(txn store.Txn) error {
		_, err := RepresentativeOf(txn, common.HashFromUint64(404))
		require.Error(t, err)
		return nil
	}))
}
