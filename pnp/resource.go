// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package pnp

import (
	"fmt"
	"math/bits"
	"strings"
)

// Slot is a resource slot of a logical device.
type Slot int

// Resource slots, in the fixed order they are committed.
const (
	IO0 Slot = iota
	IO1
	IO2
	IRQ0
	DRQ0
	NumSlots
)

var slotNames = [NumSlots]string{"io0", "io1", "io2", "irq0", "drq0"}

func (s Slot) String() string {
	if s < 0 || s >= NumSlots {
		return fmt.Sprintf("slot%d", int(s))
	}
	return slotNames[s]
}

// IsIO returns true if the slot is an I/O port range.
func (s Slot) IsIO() bool {
	return s >= IO0 && s <= IO2
}

// ParseSlot returns the slot matching the name (e.g "io0", "IRQ0").
func ParseSlot(name string) (Slot, bool) {
	for s, n := range slotNames {
		if strings.EqualFold(n, name) {
			return Slot(s), true
		}
	}
	return 0, false
}

// Mask is the set of slots a logical device requires.
type Mask uint8

// Slot masks.
const (
	MaskIO0  Mask = 1 << IO0
	MaskIO1  Mask = 1 << IO1
	MaskIO2  Mask = 1 << IO2
	MaskIRQ0 Mask = 1 << IRQ0
	MaskDRQ0 Mask = 1 << DRQ0
)

// Has returns true if the slot is in the mask.
func (m Mask) Has(s Slot) bool {
	return s >= 0 && s < NumSlots && m&(1<<s) != 0
}

// Count returns the number of slots in the mask.
func (m Mask) Count() int {
	return bits.OnesCount8(uint8(m))
}

// Slots returns the slots of the mask in commit order.
func (m Mask) Slots() []Slot {
	var l []Slot
	for s := IO0; s < NumSlots; s++ {
		if m.Has(s) {
			l = append(l, s)
		}
	}
	return l
}

// index returns the position of the slot within the mask's values.
func (m Mask) index(s Slot) int {
	return bits.OnesCount8(uint8(m) & (1<<uint(s) - 1))
}

func (m Mask) String() string {
	if m == 0 {
		return "none"
	}
	var names []string
	for _, s := range m.Slots() {
		names = append(names, s.String())
	}
	return strings.Join(names, "|")
}

// Value is the value of one slot: a base (I/O address, IRQ line or DMA
// channel) and the pattern of significant bits. Assigned is set when the
// board configuration supplied the base; 0 is a valid IRQ or DMA channel.
type Value struct {
	Base     uint16
	Mask     uint16
	Assigned bool
}

// Size returns the width of the range decoded for the slot.
// An I/O window spans the lowest significant address bit.
func (v Value) Size(s Slot) uint16 {
	if !s.IsIO() {
		return 1
	}
	if v.Mask == 0 {
		return 0
	}
	return 1 << uint(bits.TrailingZeros16(v.Mask))
}

// Resource is a resource assigned to a slot.
type Resource struct {
	Slot Slot
	Base uint16
	Size uint16
}

func (r Resource) String() string {
	if r.Slot.IsIO() {
		return fmt.Sprintf("%s 0x%04x-0x%04x", r.Slot, r.Base, r.Base+r.Size-1)
	}
	return fmt.Sprintf("%s %d", r.Slot, r.Base)
}

// Allocator supplies the resources assigned to the slots of a function.
type Allocator interface {
	// Resource returns the resource assigned to the slot, or false
	// if there is none.
	Resource(f *Function, s Slot) (Resource, bool)
}

// Fixed is an Allocator that assigns each declared slot the base bound
// from board configuration. A slot the board did not set has no assignment.
type Fixed struct{}

// Resource implements Allocator.
func (Fixed) Resource(f *Function, s Slot) (Resource, bool) {
	v, ok := f.Value(s)
	if !ok || !v.Assigned {
		return Resource{}, false
	}
	return Resource{Slot: s, Base: v.Base, Size: v.Size(s)}, true
}
