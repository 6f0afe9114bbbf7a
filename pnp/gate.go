// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package pnp

import (
	"errors"
	"fmt"
)

// Standard PnP configuration registers.
const (
	RegLogicalDevice = 0x07
	RegChipIDHigh    = 0x20
	RegChipIDLow     = 0x21
	RegActivate      = 0x30
	RegIOBase        = 0x60 // High byte; low byte follows. 2 registers per I/O slot.
	RegIRQ           = 0x70
	RegDRQ           = 0x74
)

/*
 * Gate is the vendor specific unlock and lock sequence that
 * brackets accesses to a chip's configuration space.
 */
type Gate interface {
	/*
	 * Enter writes the unlock sequence through the configuration
	 * index/data pair.
	 */
	Enter(p IndexPair) error
	/*
	 * Exit writes the lock sequence, returning the chip
	 * to its default state.
	 */
	Exit(p IndexPair) error
}

// ConfigSpace is a chip's configuration index/data pair guarded by its Gate.
// Only one Session may be live at a time.
type ConfigSpace struct {
	pair IndexPair
	gate Gate
	held bool
}

// NewConfigSpace returns the configuration space at the port.
func NewConfigSpace(ports Ports, port uint16, gate Gate) *ConfigSpace {
	return &ConfigSpace{pair: IndexPair{Ports: ports, Index: port}, gate: gate}
}

// Port returns the configuration index port.
func (c *ConfigSpace) Port() uint16 {
	return c.pair.Index
}

// Session represents the Gate being held.
type Session struct {
	cs   *ConfigSpace
	live bool
}

// Enter unlocks the configuration space. Every successful Enter must be
// paired with one Exit; Do does this on all paths.
// If the unlock sequence fails part way, the lock sequence is written
// before the error is returned.
func (c *ConfigSpace) Enter() (*Session, error) {
	if c.held {
		return nil, ErrGateHeld
	}
	if err := c.gate.Enter(c.pair); err != nil {
		if xerr := c.gate.Exit(c.pair); xerr != nil {
			err = errors.Join(err, xerr)
		}
		return nil, fmt.Errorf("enter: %w", err)
	}
	c.held = true
	return &Session{cs: c, live: true}, nil
}

// Exit locks the configuration space and ends the session.
func (s *Session) Exit() error {
	if !s.live {
		return ErrSessionClosed
	}
	s.live = false
	s.cs.held = false
	if err := s.cs.gate.Exit(s.cs.pair); err != nil {
		return fmt.Errorf("exit: %w", err)
	}
	return nil
}

// Do runs f within a session. The session is exited whether f
// succeeds, fails or panics.
func (c *ConfigSpace) Do(f func(s *Session) error) (err error) {
	s, err := c.Enter()
	if err != nil {
		return err
	}
	defer func() {
		if xerr := s.Exit(); xerr != nil {
			err = errors.Join(err, xerr)
		}
	}()
	return f(s)
}

// Write writes a configuration register of the selected logical device.
func (s *Session) Write(reg, v uint8) error {
	if !s.live {
		return ErrSessionClosed
	}
	return s.cs.pair.Write(reg, v)
}

// Read reads a configuration register of the selected logical device.
func (s *Session) Read(reg uint8) (uint8, error) {
	if !s.live {
		return 0, ErrSessionClosed
	}
	return s.cs.pair.Read(reg)
}

// SetLogicalDevice selects the logical device addressed by later accesses.
func (s *Session) SetLogicalDevice(id FunctionID) error {
	return s.Write(RegLogicalDevice, uint8(id))
}

// SetEnable writes the activate register of the selected logical device.
func (s *Session) SetEnable(on bool) error {
	var v uint8
	if on {
		v = 1
	}
	return s.Write(RegActivate, v)
}

// SetResource writes the resource to its slot's registers.
func (s *Session) SetResource(r Resource) error {
	switch {
	case r.Slot.IsIO():
		reg := uint8(RegIOBase + 2*int(r.Slot-IO0))
		if err := s.Write(reg, uint8(r.Base>>8)); err != nil {
			return err
		}
		return s.Write(reg+1, uint8(r.Base))
	case r.Slot == IRQ0:
		return s.Write(RegIRQ, uint8(r.Base))
	case r.Slot == DRQ0:
		return s.Write(RegDRQ, uint8(r.Base))
	}
	return fmt.Errorf("%v: no register for slot", r.Slot)
}

// Probe reads the chip ID registers.
func Probe(c *ConfigSpace) (uint16, error) {
	var id uint16
	err := c.Do(func(s *Session) error {
		hi, err := s.Read(RegChipIDHigh)
		if err != nil {
			return err
		}
		lo, err := s.Read(RegChipIDLow)
		if err != nil {
			return err
		}
		id = uint16(hi)<<8 | uint16(lo)
		return nil
	})
	return id, err
}
