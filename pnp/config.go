// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package pnp

import (
	"strings"
)

// FunctionConfig is the board configuration of one function.
type FunctionConfig struct {
	Enabled bool
	Values  map[Slot]uint16 // Resource bases by slot.
	Baud    uint32          // Serial ports only, 0 for the default.
}

// BoardConfig is the board level configuration of a chip, keyed
// by function name (e.g "ec", "sp1"). Names are matched without case.
type BoardConfig struct {
	Port      uint16 // Configuration port, 0 for the chip default.
	Functions map[string]FunctionConfig
}

// NewBoardConfig returns an empty board configuration.
func NewBoardConfig() *BoardConfig {
	return &BoardConfig{Functions: make(map[string]FunctionConfig)}
}

// Enable sets whether the named function is enabled.
func (c *BoardConfig) Enable(name string, on bool) {
	fc := c.Functions[strings.ToLower(name)]
	fc.Enabled = on
	c.Functions[strings.ToLower(name)] = fc
}

// Set sets the base of one slot of the named function.
func (c *BoardConfig) Set(name string, s Slot, v uint16) {
	fc := c.Functions[strings.ToLower(name)]
	if fc.Values == nil {
		fc.Values = make(map[Slot]uint16)
	}
	fc.Values[s] = v
	c.Functions[strings.ToLower(name)] = fc
}
