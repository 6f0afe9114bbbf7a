// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package portio provides I/O port access, either to the hardware
// or to an in-memory recorder.
package portio

import (
	"fmt"
)

// Op is one recorded port access.
type Op struct {
	Out  bool
	Port uint16
	Val  uint8
}

func (o Op) String() string {
	if o.Out {
		return fmt.Sprintf("outb 0x%04x <- 0x%02x", o.Port, o.Val)
	}
	return fmt.Sprintf("inb  0x%04x -> 0x%02x", o.Port, o.Val)
}

// Recorder records port accesses in order. Index/data windows can be
// attached so that reads of a data port return the selected register
// and writes update it; other ports read as 0xff.
type Recorder struct {
	Ops  []Op
	Errs map[uint16]error // Accesses to these ports fail.

	regs  map[uint16]map[uint8]uint8 // Register files by index port.
	index map[uint16]uint8           // Selected register by index port.
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		Errs:  make(map[uint16]error),
		regs:  make(map[uint16]map[uint8]uint8),
		index: make(map[uint16]uint8),
	}
}

// Window attaches an index/data register pair at index and index+1
// with the initial register values.
func (r *Recorder) Window(index uint16, regs map[uint8]uint8) {
	m := make(map[uint8]uint8)
	for k, v := range regs {
		m[k] = v
	}
	r.regs[index] = m
}

// Reg returns the value of a register of the window at index.
func (r *Recorder) Reg(index uint16, reg uint8) (uint8, bool) {
	m, ok := r.regs[index]
	if !ok {
		return 0, false
	}
	v, ok := m[reg]
	return v, ok
}

// Outb implements pnp.Ports.
func (r *Recorder) Outb(port uint16, v uint8) error {
	if err := r.Errs[port]; err != nil {
		return err
	}
	r.Ops = append(r.Ops, Op{Out: true, Port: port, Val: v})
	if _, ok := r.regs[port]; ok {
		r.index[port] = v
	} else if m, ok := r.regs[port-1]; ok {
		m[r.index[port-1]] = v
	}
	return nil
}

// Inb implements pnp.Ports.
func (r *Recorder) Inb(port uint16) (uint8, error) {
	if err := r.Errs[port]; err != nil {
		return 0, err
	}
	v := uint8(0xff)
	if m, ok := r.regs[port-1]; ok {
		if rv, ok := m[r.index[port-1]]; ok {
			v = rv
		}
	}
	r.Ops = append(r.Ops, Op{Port: port, Val: v})
	return v, nil
}

// Writes returns the recorded writes.
func (r *Recorder) Writes() []Op {
	var l []Op
	for _, o := range r.Ops {
		if o.Out {
			l = append(l, o)
		}
	}
	return l
}

// Reset clears the recorded accesses. Window contents are kept.
func (r *Recorder) Reset() {
	r.Ops = nil
}
