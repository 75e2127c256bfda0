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

// Package common holds the opaque ledger identifiers shared by every
// package in this module: accounts and block hashes. Both are 256-bit
// values with a distinguished zero meaning "unknown/none".
package common

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// Account is an opaque 256-bit ledger identity. The zero value means
// "unknown/none" and is never stored in the priority or blocking sets.
type Account [32]byte

// Hash is an opaque 256-bit block identifier.
type Hash [32]byte

// ZeroAccount is the distinguished "unknown" account.
var ZeroAccount Account

// ZeroHash is the distinguished "unknown" hash.
var ZeroHash Hash

// IsZero reports whether a is the distinguished zero account.
func (a Account) IsZero() bool { return a == ZeroAccount }

// IsZero reports whether h is the distinguished zero hash.
func (h Hash) IsZero() bool { return h == ZeroHash }

func (a Account) String() string { return "0x" + hex.EncodeToString(a[:]) }
func (h Hash) String() string    { return "0x" + hex.EncodeToString(h[:]) }

// MarshalText renders a as 0x-prefixed hex, so jsoniter encodes it as
// a JSON string instead of an array of 32 numbers.
func (a Account) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText is MarshalText's inverse.
func (a *Account) UnmarshalText(text []byte) error {
	parsed, err := AccountFromHex(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalText renders h as 0x-prefixed hex, so jsoniter encodes it as
// a JSON string instead of an array of 32 numbers.
func (h Hash) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

// UnmarshalText is MarshalText's inverse.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := HashFromHex(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// AccountFromUint64 builds a deterministic, sequential Account out of a
// small integer. It exists for tests that need many distinct, stable
// accounts without hand-writing 32 bytes of hex per case.
func AccountFromUint64(n uint64) Account {
	return Account(uint256.NewInt(n).Bytes32())
}

// HashFromUint64 is AccountFromUint64's Hash counterpart.
func HashFromUint64(n uint64) Hash {
	return Hash(uint256.NewInt(n).Bytes32())
}

// AccountFromHex parses a 32-byte hex string, with or without a "0x"
// prefix, into an Account. Used by cmd/bootstrapcored's debug HTTP
// surface to decode a path parameter.
func AccountFromHex(s string) (Account, error) {
	b, err := decodeFixedHex(s, len(Account{}))
	if err != nil {
		return ZeroAccount, err
	}
	var a Account
	copy(a[:], b)
	return a, nil
}

// HashFromHex is AccountFromHex's Hash counterpart.
func HashFromHex(s string) (Hash, error) {
	b, err := decodeFixedHex(s, len(Hash{}))
	if err != nil {
		return ZeroHash, err
	}
	var h Hash
	copy(h[:], b)
	return h, nil
}

func decodeFixedHex(s string, want int) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("common: invalid hex %q: %w", s, err)
	}
	if len(b) != want {
		return nil, fmt.Errorf("common: expected %d bytes, got %d", want, len(b))
	}
	return b, nil
}
