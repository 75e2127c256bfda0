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

package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/erigontech/erigon-bootstrap/accountsets"
	"github.com/erigontech/erigon-bootstrap/common"
	"github.com/erigontech/erigon-bootstrap/ledger"
	"github.com/erigontech/erigon-bootstrap/store"
)

// errNoLatestBlock is returned from debugRepresentativeHandler's View
// closure when the requested account has no recorded latest block, so
// the HTTP layer can tell that apart from a real store error.
var errNoLatestBlock = errors.New("bootstrapcored: no latest block recorded for account")

// debugInfoHandler serves the engine's container snapshot (§6.3),
// for operators inspecting the priority/blocking sets live.
func debugInfoHandler(engine *accountsets.AccountSets) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeJSON(w, engine.ContainerInfo())
	}
}

// debugPutBlockHandler accepts a JSON-encoded ledger.Block and records
// it, plus its account's latest-block pointer — the minimal ingestion
// path the representative/epoch lookup below needs, since block
// ingestion proper is an out-of-scope collaborator (§1).
func debugPutBlockHandler(s store.Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var blk ledger.Block
		if err := jsonAPI.NewDecoder(r.Body).Decode(&blk); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		err := s.Update(func(txn store.Txn) error {
			if err := ledger.PutBlock(txn, blk); err != nil {
				return err
			}
			if !blk.Account.IsZero() {
				return ledger.PutLatestBlock(txn, blk.Account, blk.Hash)
			}
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// representativeInfo is the JSON shape returned by
// /debug/representative/:account.
type representativeInfo struct {
	Account        common.Account `json:"account"`
	LatestBlock    common.Hash    `json:"latest_block"`
	Representative common.Hash    `json:"representative"`
	Epoch          ledger.Epoch   `json:"epoch,omitempty"`
	IsEpochBlock   bool           `json:"is_epoch_block"`
}

// debugRepresentativeHandler runs the fix-point representative walk
// (ledger.RepresentativeOf) from account's latest known block and
// reports whether that representative block is a registered epoch
// link (ledger.BlockEpoch), giving both a real, exercised caller
// instead of leaving them as library code only its own tests reach.
func debugRepresentativeHandler(s store.Store, epochs *ledger.Epochs) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		account, err := common.AccountFromHex(params.ByName("account"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var info representativeInfo
		info.Account = account
		err = s.View(func(txn store.Txn) error {
			latest, ok, err := ledger.LatestBlock(txn, account)
			if err != nil {
				return err
			}
			if !ok {
				return errNoLatestBlock
			}
			info.LatestBlock = latest

			rep, err := ledger.RepresentativeOf(txn, latest)
			if err != nil {
				return err
			}
			info.Representative = rep

			epoch, isEpoch, err := ledger.BlockEpoch(txn, rep, epochs)
			if err != nil {
				return err
			}
			info.Epoch, info.IsEpochBlock = epoch, isEpoch
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, info)
	}
}

// epochRegistration is the JSON body accepted by
// POST /debug/epochs/:epoch.
type epochRegistration struct {
	Signer common.Account `json:"signer"`
	Link   common.Hash    `json:"link"`
}

// debugPutEpochHandler releases a new epoch: it registers the entry in
// the live, in-memory Epochs registry and persists it via ledger.PutEpoch
// so a restart recovers it through ledger.LoadEpochs.
func debugPutEpochHandler(s store.Store, epochs *ledger.Epochs) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		epochNum, err := strconv.ParseUint(params.ByName("epoch"), 10, 32)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var reg epochRegistration
		if err := jsonAPI.NewDecoder(r.Body).Decode(&reg); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		epoch := ledger.Epoch(epochNum)
		entry := ledger.EpochEntry{Signer: reg.Signer, Link: reg.Link}
		err = s.Update(func(txn store.Txn) error {
			return ledger.PutEpoch(txn, epoch, entry)
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		epochs.Add(epoch, reg.Signer, reg.Link)
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := jsonAPI.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
