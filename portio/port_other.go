// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//go:build !linux || !(amd64 || 386)

package portio

import (
	"fmt"
	"runtime"
)

// Dev is unavailable on this platform.
type Dev struct{}

// Open returns an error; there are no I/O ports to access.
func Open() (*Dev, error) {
	return nil, fmt.Errorf("port I/O not supported on %s/%s", runtime.GOOS, runtime.GOARCH)
}

// Outb implements pnp.Ports.
func (d *Dev) Outb(port uint16, v uint8) error {
	return fmt.Errorf("outb 0x%04x: port I/O not supported", port)
}

// Inb implements pnp.Ports.
func (d *Dev) Inb(port uint16) (uint8, error) {
	return 0, fmt.Errorf("inb 0x%04x: port I/O not supported", port)
}
