// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package pnp

import (
	"log"
)

// UART initialises a serial port.
type UART interface {
	Init(base uint16, baud uint32)
}

// Keyboard initialises a PS/2 keyboard controller.
type Keyboard interface {
	Init(data, cmd uint16)
}

// Collaborators are the services that function initializers use.
// A nil UART or Keyboard leaves that initialisation to a later stage.
type Collaborators struct {
	Ports    Ports
	UART     UART
	Keyboard Keyboard
	Board    *BoardConfig
	Log      *log.Logger
}

/*
 * Chip represents a Super I/O chip: its logical functions,
 * the gate to its configuration space and the per-function
 * initialisation run once a function is enabled.
 */
type Chip interface {
	/*
	 * Name returns the name of the chip
	 */
	Name() string
	/*
	 * ID returns the value of the chip ID registers.
	 */
	ID() uint16
	/*
	 * Port returns the default configuration port.
	 */
	Port() uint16
	/*
	 * Table returns the compiled-in function table.
	 */
	Table() *Table
	/*
	 * Gate returns the enter/exit sequence for the
	 * configuration port.
	 */
	Gate(port uint16) Gate
	/*
	 * Initializers returns the post-enable initializers
	 * keyed by function. Functions without an entry have
	 * nothing to do once enabled.
	 */
	Initializers(c Collaborators) map[FunctionID]InitFunc
}

// chipList contains a list of registered chips.
// Each chip has a unique name that is used to match it.
var chipList []Chip

// RegisterChip adds this chip into the list of registered chips.
func RegisterChip(chip Chip) {
	chipList = append(chipList, chip)
}

// FindChip returns the registered chip matching this name, or nil
// if none are found.
func FindChip(name string) Chip {
	for _, c := range chipList {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// Chips returns the list of names of the registered chips.
func Chips() []string {
	var l []string
	for _, c := range chipList {
		l = append(l, c.Name())
	}
	return l
}
