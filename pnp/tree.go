// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package pnp

import (
	"fmt"
)

// Device is a node of the device tree. The chip is the root and each
// enabled function is a child.
type Device struct {
	Name      string
	Port      uint16     // Configuration port of the chip.
	Function  FunctionID // Unused on the root.
	Enabled   bool
	Resources []Resource // Committed resources in slot order.
	Parent    *Device
	Children  []*Device
}

// Resource returns the committed resource of the slot, or false if
// none was committed.
func (d *Device) Resource(s Slot) (Resource, bool) {
	for _, r := range d.Resources {
		if r.Slot == s {
			return r, true
		}
	}
	return Resource{}, false
}

// Path returns the path of the device, e.g pnp_002e.4
func (d *Device) Path() string {
	if d.Parent == nil {
		return fmt.Sprintf("pnp_%04x", d.Port)
	}
	return fmt.Sprintf("pnp_%04x.%x", d.Port, d.Function)
}

// Registrar registers logical devices in the device tree so later
// phases can find them by function.
type Registrar interface {
	RegisterChild(parent *Device, id FunctionID) *Device
}

// Tree is the device tree of one chip.
type Tree struct {
	Root *Device
}

// NewTree returns a tree with the chip as the root device.
func NewTree(name string, port uint16) *Tree {
	return &Tree{Root: &Device{Name: name, Port: port, Enabled: true}}
}

// RegisterChild adds a device for the function under the parent, or
// under the root if parent is nil. An existing child is returned as is.
func (t *Tree) RegisterChild(parent *Device, id FunctionID) *Device {
	if parent == nil {
		parent = t.Root
	}
	for _, c := range parent.Children {
		if c.Function == id {
			return c
		}
	}
	d := &Device{Port: parent.Port, Function: id, Parent: parent}
	parent.Children = append(parent.Children, d)
	return d
}

// Find returns the child device of the function.
func (t *Tree) Find(id FunctionID) (*Device, bool) {
	for _, c := range t.Root.Children {
		if c.Function == id {
			return c, true
		}
	}
	return nil, false
}
