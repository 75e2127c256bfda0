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

package accountsets

import (
	"fmt"
	"time"
)

// Config bounds the engine's two containers and sets the sampler's
// resample cooldown (§6.1). Zero values are not defaulted implicitly —
// call Validate and surface its error before constructing an engine.
type Config struct {
	// PrioritiesMax is the maximum number of rows priority.go will
	// hold before trimOverflow starts evicting the oldest insertion.
	PrioritiesMax int

	// BlockingMax is blocking.go's equivalent bound.
	BlockingMax int

	// Cooldown is the minimum interval between two next_priority
	// samples returning the same account. next_blocking applies no
	// cooldown.
	Cooldown time.Duration
}

// DefaultConfig mirrors the C++ default construction parameters.
func DefaultConfig() Config {
	return Config{
		PrioritiesMax: 256 * 1024,
		BlockingMax:   256 * 1024,
		Cooldown:      3 * time.Second,
	}
}

// Validate reports the first configuration problem found, if any.
func (c Config) Validate() error {
	if c.PrioritiesMax <= 0 {
		return fmt.Errorf("accountsets: PrioritiesMax must be positive, got %d", c.PrioritiesMax)
	}
	if c.BlockingMax <= 0 {
		return fmt.Errorf("accountsets: BlockingMax must be positive, got %d", c.BlockingMax)
	}
	if c.Cooldown < 0 {
		return fmt.Errorf("accountsets: Cooldown must not be negative, got %s", c.Cooldown)
	}
	return nil
}
