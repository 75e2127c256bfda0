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

// Package metrics holds the named-counter surface (C5) that the
// account-set engine bumps on every state transition.
package metrics

import (
	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus"
)

// Sink is the minimal contract the engine needs from a counter
// collaborator: an infallible, non-blocking increment by name. Counters
// is the only production implementation; tests may substitute NoopSink
// or a recording fake.
type Sink interface {
	Inc(name string)
}

// Names of every counter the engine increments, grouped by mutator
// (spec §4.6). Exported so callers wiring a custom Sink or scraping
// dashboard know the exact vocabulary.
const (
	Prioritize       = "prioritize"
	PrioritizeFailed = "prioritize_failed"
	PriorityInsert   = "priority_insert"

	Deprioritize             = "deprioritize"
	DeprioritizeFailed       = "deprioritize_failed"
	PriorityEraseByThreshold = "priority_erase_by_threshold"

	Block                = "block"
	PriorityEraseByBlock = "priority_erase_by_blocking"
	BlockingInsert       = "blocking_insert"

	Unblock       = "unblock"
	UnblockFailed = "unblock_failed"

	DependencyUpdate       = "dependency_update"
	DependencyUpdateFailed = "dependency_update_failed"
	SyncDependencies       = "sync_dependencies"

	PriorityEraseOverflow = "priority_erase_overflow"
	BlockingEraseOverflow = "blocking_erase_overflow"
)

// allNames lists every counter registered eagerly at construction, so a
// scrape of a freshly built Counters reports zero rather than an
// absent series for names that haven't fired yet.
var allNames = []string{
	Prioritize, PrioritizeFailed, PriorityInsert,
	Deprioritize, DeprioritizeFailed, PriorityEraseByThreshold,
	Block, PriorityEraseByBlock, BlockingInsert,
	Unblock, UnblockFailed,
	DependencyUpdate, DependencyUpdateFailed, SyncDependencies,
	PriorityEraseOverflow, BlockingEraseOverflow,
}

// Counters is the production Sink: one monotone prometheus.Counter per
// name, registered against a caller-supplied registry (never the
// global default, so each test gets an isolated namespace).
type Counters struct {
	vec *prometheus.CounterVec
}

// NewCounters builds and registers the counter vector under reg.
// Namespace prefixes the metric as accountsets_transitions_total.
func NewCounters(reg prometheus.Registerer) *Counters {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "accountsets",
		Name:      "transitions_total",
		Help:      "Count of account-set state transitions, by named branch.",
	}, []string{"name"})
	reg.MustRegister(vec)

	c := &Counters{vec: vec}
	for _, name := range allNames {
		c.vec.WithLabelValues(name) // force the zero-valued series into existence
	}
	return c
}

// Inc increments the named counter by one. Unknown names still work
// (CounterVec creates the series on demand) but should never occur
// outside of this package's own constants.
func (c *Counters) Inc(name string) {
	c.vec.WithLabelValues(name).Inc()
}

// Value returns the current value of the named counter, for tests and
// the debug HTTP endpoint. Returns 0 for a name never incremented.
func (c *Counters) Value(name string) float64 {
	metric, err := c.vec.GetMetricWithLabelValues(name)
	if err != nil {
		return 0
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

// NoopSink discards every increment. Useful for tests that exercise
// the engine's behavior without caring about counter bookkeeping.
type NoopSink struct{}

func (NoopSink) Inc(string) {}
