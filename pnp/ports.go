// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package pnp

// Ports performs byte wide I/O port accesses.
type Ports interface {
	Outb(port uint16, v uint8) error
	Inb(port uint16) (uint8, error)
}

// IndexPair is an index register at Index with its data register
// at Index+1.
type IndexPair struct {
	Ports Ports
	Index uint16
}

// Write selects the register and writes the value to it.
func (p IndexPair) Write(reg, v uint8) error {
	if err := p.Ports.Outb(p.Index, reg); err != nil {
		return err
	}
	return p.Ports.Outb(p.Index+1, v)
}

// Read selects the register and reads its value.
func (p IndexPair) Read(reg uint8) (uint8, error) {
	if err := p.Ports.Outb(p.Index, reg); err != nil {
		return 0, err
	}
	return p.Ports.Inb(p.Index + 1)
}
