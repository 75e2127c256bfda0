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

package store

import (
	"bytes"
	"sort"
	"sync"
)

// MemStore is an in-memory Store: the only backend this core ships,
// per the no-persistence non-goal. A disk-backed implementation would
// satisfy the same Store/Txn/KV interfaces without callers changing.
type MemStore struct {
	mu     sync.RWMutex
	tables map[Table]map[string][]byte
}

// NewMemStore builds an empty store with every known table pre-created.
func NewMemStore() *MemStore {
	m := &MemStore{tables: make(map[Table]map[string][]byte)}
	for _, t := range Tables {
		m.tables[t] = make(map[string][]byte)
	}
	return m
}

// View runs fn inside a read-only transaction. The in-memory backend
// has no real transaction isolation, so View holds the store's RLock
// for fn's whole duration instead.
func (m *MemStore) View(fn func(Txn) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(&memTxn{store: m, write: false})
}

// Update runs fn inside a read-write transaction, holding the store's
// exclusive lock for fn's whole duration. If fn returns an error, every
// table is restored to its state before fn ran.
func (m *MemStore) Update(fn func(Txn) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	backup := make(map[Table]map[string][]byte, len(m.tables))
	for t, bucket := range m.tables {
		cp := make(map[string][]byte, len(bucket))
		for k, v := range bucket {
			cp[k] = v
		}
		backup[t] = cp
	}
	if err := fn(&memTxn{store: m, write: true}); err != nil {
		m.tables = backup
		return err
	}
	return nil
}

type memTxn struct {
	store *MemStore
	write bool
}

func (t *memTxn) Table(tbl Table) KV {
	bucket, ok := t.store.tables[tbl]
	if !ok {
		bucket = make(map[string][]byte)
		t.store.tables[tbl] = bucket
	}
	return &memKV{bucket: bucket, write: t.write}
}

type memKV struct {
	bucket map[string][]byte
	write  bool
}

func (k *memKV) Put(key, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)
	k.bucket[string(key)] = cp
	return nil
}

func (k *memKV) Get(key []byte) ([]byte, bool, error) {
	v, ok := k.bucket[string(key)]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

func (k *memKV) Delete(key []byte) error {
	delete(k.bucket, string(key))
	return nil
}

func (k *memKV) Exists(key []byte) (bool, error) {
	_, ok := k.bucket[string(key)]
	return ok, nil
}

func (k *memKV) Count() (int, error) {
	return len(k.bucket), nil
}

// ForEach walks entries in ascending key order, for deterministic test
// output; a real backend would walk in whatever order its index gives.
func (k *memKV) ForEach(fn func(key, value []byte) (bool, error)) error {
	keys := make([]string, 0, len(k.bucket))
	for key := range k.bucket {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare([]byte(keys[i]), []byte(keys[j])) < 0 })
	for _, key := range keys {
		cont, err := fn([]byte(key), k.bucket[key])
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
	return nil
}
