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

// Package transport is the one concrete caller of the account-set
// sampler: a TCP acceptor that, per inbound peer, pulls the next
// account worth requesting and stamps its cooldown. It does not call
// NextBlocking.
// Models tcp_listener.cpp's shape (accept loop + periodic cleanup
// loop, weak connection handles) with Go's idiomatic equivalents:
// errgroup for the two supervised loops, context for shutdown,
// semaphore.Weighted for the connection-slot gate instead of a
// busy-spin wait, and a generation-indexed handle map instead of weak
// pointers.
package transport

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/erigontech/erigon-bootstrap/accountsets"
	"github.com/erigontech/erigon-bootstrap/common"
	"github.com/erigontech/erigon-bootstrap/internal/obslog"
)

// Sampler is the slice of *accountsets.AccountSets the listener needs.
// Declared as an interface so tests can substitute a fake without
// constructing a real engine.
type Sampler interface {
	NextPriority(filter func(common.Account) bool) common.Account
	NextBlocking(filter func(common.Hash) bool) common.Hash
	TimestampSet(common.Account)
}

var _ Sampler = (*accountsets.AccountSets)(nil)

// connHandle is the generation-indexed, non-owning analogue of
// tcp_listener.cpp's weak socket/server pointers: the listener's
// registry holds one of these per live connection, and the cleanup
// loop evicts entries whose conn has gone away (closed returns true)
// without the listener owning the conn's lifetime.
type connHandle struct {
	generation uint64
	conn       net.Conn
	closed     atomic.Bool
}

// Listener accepts inbound connections, samples the engine for the
// next account to pull per peer, and evicts dead
// connection handles on a periodic cleanup loop.
type Listener struct {
	addr     string
	sampler  Sampler
	excluded mapset.Set[string] // peer addresses never sampled for
	accept   *rate.Limiter
	slots    *semaphore.Weighted
	log      *obslog.Logger

	// Ready, if non-nil, receives the bound address once Run's listen
	// socket is open. Tests that bind to addr ":0" use this to learn
	// the actual ephemeral port.
	Ready chan<- string

	mu         sync.Mutex
	generation uint64
	conns      map[uint64]*connHandle
}

// Config bounds the listener's accept rate and concurrent connection
// count.
type Config struct {
	Addr              string
	MaxInboundConns   int64
	AcceptRatePerSec  float64
	CleanupInterval   time.Duration
	ExcludedAddresses []string
}

// New builds a Listener bound to cfg.Addr, sampling sampler for each
// accepted connection.
func New(cfg Config, sampler Sampler, log *obslog.Logger) *Listener {
	excluded := mapset.NewSet[string]()
	for _, a := range cfg.ExcludedAddresses {
		excluded.Add(a)
	}
	return &Listener{
		addr:     cfg.Addr,
		sampler:  sampler,
		excluded: excluded,
		accept:   rate.NewLimiter(rate.Limit(cfg.AcceptRatePerSec), 1),
		slots:    semaphore.NewWeighted(cfg.MaxInboundConns),
		log:      log,
		conns:    make(map[uint64]*connHandle),
	}
}

// Run listens on l.addr and runs the accept loop and the cleanup loop
// until ctx is canceled or either loop returns an error, mirroring
// tcp_listener's paired acceptor/cleanup threads but torn down via
// context cancellation instead of a mutex + condition variable.
func (l *Listener) Run(ctx context.Context, cleanupInterval time.Duration) error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return err
	}
	defer ln.Close()

	l.log.Info("listening for incoming connections", "addr", ln.Addr().String())
	if l.Ready != nil {
		l.Ready <- ln.Addr().String()
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error { return l.acceptLoop(ctx, ln) })
	group.Go(func() error { return l.cleanupLoop(ctx, cleanupInterval) })

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	return group.Wait()
}

func (l *Listener) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		if err := l.accept.Wait(ctx); err != nil {
			return ctx.Err()
		}
		if err := l.slots.Acquire(ctx, 1); err != nil {
			return ctx.Err()
		}
		conn, err := ln.Accept()
		if err != nil {
			l.slots.Release(1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				l.log.Warn("accept failed", "err", err)
				continue
			}
		}
		if l.excluded.Contains(conn.RemoteAddr().String()) {
			conn.Close()
			l.slots.Release(1)
			continue
		}
		handle := l.register(conn)
		go l.serve(handle)
	}
}

func (l *Listener) register(conn net.Conn) *connHandle {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.generation++
	h := &connHandle{generation: l.generation, conn: conn}
	l.conns[h.generation] = h
	return h
}

// serve samples the engine once per accepted connection and releases
// its slot when the connection closes. Real request/response framing
// is out of scope (Non-goal: no network protocol framing); this
// models only the sampling side-effect the listener exists to trigger.
func (l *Listener) serve(h *connHandle) {
	defer func() {
		h.closed.Store(true)
		h.conn.Close()
		l.slots.Release(1)
	}()

	account := l.sampler.NextPriority(func(common.Account) bool { return true })
	if !account.IsZero() {
		l.sampler.TimestampSet(account)
	}
}

// cleanupLoop evicts handles whose connection has closed, on a fixed
// interval — the idiomatic analogue of tcp_listener's 1-second
// cleanup thread.
func (l *Listener) cleanupLoop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.cleanupOnce()
		}
	}
}

func (l *Listener) cleanupOnce() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for gen, h := range l.conns {
		if h.closed.Load() {
			delete(l.conns, gen)
		}
	}
}

// ConnCount returns the number of connection handles currently
// tracked, closed or not (for tests).
func (l *Listener) ConnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.conns)
}
