// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package pnp

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

const header = `/* Copyright %d The ChromiumOS Authors
 * Use of this source code is governed by a BSD-style license that can be
 * found in the LICENSE file.
 *
 * This file is auto-generated - do not edit!
 */

/ {
`

// Generate writes a DTS fragment describing the chip's device
// tree and the resources committed to each enabled function.
func Generate(out io.Writer, root *Device) {
	// Write header with date.
	fmt.Fprintf(out, header, time.Now().Year())
	fmt.Fprintf(out, "\t%s@%x {\n", strings.ToLower(root.Name), root.Port)
	fmt.Fprintf(out, "\t\treg = <0x%x>;\n", root.Port)
	// Children in function order.
	children := append([]*Device(nil), root.Children...)
	sort.Slice(children, func(i, j int) bool {
		return children[i].Function < children[j].Function
	})
	for _, c := range children {
		deviceConfig(out, c)
	}
	fmt.Fprintf(out, "\t};\n")
	fmt.Fprintf(out, "};\n")
}

// deviceConfig creates the DTS for a single logical device.
func deviceConfig(out io.Writer, dev *Device) {
	if !dev.Enabled {
		return
	}
	lc := strings.ToLower(dev.Name)
	fmt.Fprintf(out, "\n\t\t%s: %s@%x {\n", lc, lc, dev.Function)
	fmt.Fprintf(out, "\t\t\tlabel = \"%s\";\n", dev.Name)
	for _, r := range dev.Resources {
		if r.Slot.IsIO() {
			fmt.Fprintf(out, "\t\t\t%s = <0x%x 0x%x>;\n", r.Slot, r.Base, r.Size)
		} else {
			fmt.Fprintf(out, "\t\t\t%s = <%d>;\n", r.Slot, r.Base)
		}
	}
	fmt.Fprintf(out, "\t\t\tstatus = \"okay\";\n")
	fmt.Fprintf(out, "\t\t};\n")
}
