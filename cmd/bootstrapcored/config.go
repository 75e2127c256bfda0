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
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v2"

	"github.com/erigontech/erigon-bootstrap/accountsets"
	"github.com/erigontech/erigon-bootstrap/common/mathutil"
)

// fileConfig is the shape accepted by -config's TOML file. Any field
// left unset keeps the value already populated from CLI flags.
// Cooldown is a Go duration string ("3s", "500ms") rather than
// time.Duration directly: go-toml/v2 decodes into that type via plain
// integer/string rules, not via time.ParseDuration, so the string form
// plus an explicit parse below is the unambiguous choice.
type fileConfig struct {
	PrioritiesMax *int    `toml:"priorities_max"`
	BlockingMax   *int    `toml:"blocking_max"`
	Cooldown      *string `toml:"cooldown"`
}

// loadConfig builds an accountsets.Config from CLI flags, then
// overrides any field a -config TOML file sets explicitly.
func loadConfig(c *cli.Context) (accountsets.Config, error) {
	cfg := accountsets.Config{
		PrioritiesMax: c.Int("priorities-max"),
		BlockingMax:   c.Int("blocking-max"),
		Cooldown:      c.Duration("cooldown"),
	}

	// --cooldown-ms is the operator-facing escape hatch for environments
	// that pass millisecond counts (often copied out of a hex-valued
	// config management system) rather than a Go duration string.
	if raw := c.String("cooldown-ms"); raw != "" {
		ms, err := mathutil.ParseUint64Err(raw)
		if err != nil {
			return cfg, fmt.Errorf("bootstrapcored: invalid cooldown-ms: %w", err)
		}
		cfg.Cooldown = time.Duration(ms) * time.Millisecond
	}

	path := c.String("config")
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	var fc fileConfig
	if err := toml.Unmarshal(raw, &fc); err != nil {
		return cfg, err
	}
	if fc.PrioritiesMax != nil {
		cfg.PrioritiesMax = *fc.PrioritiesMax
	}
	if fc.BlockingMax != nil {
		cfg.BlockingMax = *fc.BlockingMax
	}
	if fc.Cooldown != nil {
		d, err := time.ParseDuration(*fc.Cooldown)
		if err != nil {
			return cfg, fmt.Errorf("bootstrapcored: invalid cooldown %q: %w", *fc.Cooldown, err)
		}
		cfg.Cooldown = d
	}
	return cfg, nil
}
