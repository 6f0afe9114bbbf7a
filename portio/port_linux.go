// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//go:build linux && (amd64 || 386)

package portio

import (
	"github.com/u-root/u-root/pkg/memio"
)

// Dev accesses I/O ports through /dev/port.
type Dev struct {
	In  func(uint16, memio.UintN) error
	Out func(uint16, memio.UintN) error
}

// Open returns the port accessor for this machine.
func Open() (*Dev, error) {
	return &Dev{
		In:  memio.In,
		Out: memio.Out,
	}, nil
}

// Outb implements pnp.Ports.
func (d *Dev) Outb(port uint16, v uint8) error {
	val := memio.Uint8(v)
	return d.Out(port, &val)
}

// Inb implements pnp.Ports.
func (d *Dev) Inb(port uint16) (uint8, error) {
	var val memio.Uint8
	if err := d.In(port, &val); err != nil {
		return 0, err
	}
	return uint8(val), nil
}
