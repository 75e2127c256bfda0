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

package transport

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/erigon-bootstrap/common"
	"github.com/erigontech/erigon-bootstrap/internal/obslog"
)

// fakeSampler records every account it stamps, for assertions, without
// needing a real accountsets.AccountSets.
type fakeSampler struct {
	mu      sync.Mutex
	next    common.Account
	stamped []common.Account
}

func (f *fakeSampler) NextPriority(filter func(common.Account) bool) common.Account {
	if !filter(f.next) {
		return common.ZeroAccount
	}
	return f.next
}

func (f *fakeSampler) NextBlocking(func(common.Hash) bool) common.Hash {
	return common.ZeroHash
}

func (f *fakeSampler) TimestampSet(acc common.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stamped = append(f.stamped, acc)
}

func TestListenerSamplesOnAccept(t *testing.T) {
	sampler := &fakeSampler{next: common.AccountFromUint64(1)}
	ready := make(chan string, 1)
	l := New(Config{
		Addr:             "127.0.0.1:0",
		MaxInboundConns:  4,
		AcceptRatePerSec: 1000,
	}, sampler, obslog.Nop())
	l.Ready = ready

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx, 50*time.Millisecond) }()

	addr := <-ready
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		sampler.mu.Lock()
		defer sampler.mu.Unlock()
		return len(sampler.stamped) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-errc
}
