// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package chips

import (
	"log"
	"strings"

	"superio/pnp"
)

// IT8716F logical devices.
const (
	IT8716F_FDC  pnp.FunctionID = 0x00 // Floppy
	IT8716F_SP1  pnp.FunctionID = 0x01 // COM1
	IT8716F_SP2  pnp.FunctionID = 0x02 // COM2
	IT8716F_PP   pnp.FunctionID = 0x03 // Parallel port
	IT8716F_EC   pnp.FunctionID = 0x04 // Environment controller
	IT8716F_KBCK pnp.FunctionID = 0x05 // PS/2 keyboard
	IT8716F_KBCM pnp.FunctionID = 0x06 // PS/2 mouse
	IT8716F_GPIO pnp.FunctionID = 0x07 // GPIO
	IT8716F_MIDI pnp.FunctionID = 0x08 // MIDI port
	IT8716F_GAME pnp.FunctionID = 0x09 // Game port
	IT8716F_IR   pnp.FunctionID = 0x0a // Consumer IR
)

// Environment controller window, relative to its IO0 base.
const (
	EC_INDEX_PORT = 5
	EC_FAN_CTL    = 0x14
	EC_FAN_ON     = 0x87 // Polarity high, fans 1, 2 and 3 on.
)

const defaultBaud = 115200

var (
	irq = pnp.Value{Mask: 0x0f}
	drq = pnp.Value{Mask: 0x07}
)

// It8716f represents an ITE IT8716F Super I/O.
type It8716f struct {
}

// Name returns the name of this chip.
func (c *It8716f) Name() string {
	return "IT8716F"
}

// ID returns the chip ID register value.
func (c *It8716f) ID() uint16 {
	return 0x8716
}

// Port returns the default configuration port.
func (c *It8716f) Port() uint16 {
	return 0x2e
}

// Table returns the IT8716F function table with the default
// decode patterns and all functions disabled.
func (c *It8716f) Table() *pnp.Table {
	return pnp.MustTable([]pnp.Function{
		{ID: IT8716F_FDC, Name: "FDC", Mask: pnp.MaskIO0 | pnp.MaskIRQ0 | pnp.MaskDRQ0,
			Values: []pnp.Value{{Mask: 0x7f8}, irq, drq}},
		{ID: IT8716F_SP1, Name: "SP1", Mask: pnp.MaskIO0 | pnp.MaskIRQ0,
			Values: []pnp.Value{{Mask: 0x7f8}, irq}},
		{ID: IT8716F_SP2, Name: "SP2", Mask: pnp.MaskIO0 | pnp.MaskIRQ0,
			Values: []pnp.Value{{Mask: 0x7f8}, irq}},
		{ID: IT8716F_PP, Name: "PP", Mask: pnp.MaskIO0 | pnp.MaskIRQ0 | pnp.MaskDRQ0,
			Values: []pnp.Value{{Mask: 0x7f8}, irq, drq}},
		{ID: IT8716F_EC, Name: "EC", Mask: pnp.MaskIO0 | pnp.MaskIO1 | pnp.MaskIRQ0,
			Values: []pnp.Value{{Mask: 0x7f8}, {Mask: 0x7f8}, irq}},
		{ID: IT8716F_KBCK, Name: "KBCK", Mask: pnp.MaskIO0 | pnp.MaskIO1 | pnp.MaskIRQ0,
			Values: []pnp.Value{{Mask: 0x7ff}, {Mask: 0x7ff}, irq}},
		{ID: IT8716F_KBCM, Name: "KBCM", Mask: pnp.MaskIRQ0,
			Values: []pnp.Value{irq}},
		{ID: IT8716F_GPIO, Name: "GPIO", Mask: pnp.MaskIO1 | pnp.MaskIO2,
			Values: []pnp.Value{{Mask: 0x7f8}, {Mask: 0x7f8}}},
		{ID: IT8716F_MIDI, Name: "MIDI", Mask: pnp.MaskIO0 | pnp.MaskIRQ0,
			Values: []pnp.Value{{Mask: 0x7fe}, irq}},
		{ID: IT8716F_GAME, Name: "GAME", Mask: pnp.MaskIO0,
			Values: []pnp.Value{{Mask: 0x7ff}}},
		{ID: IT8716F_IR, Name: "IR"},
	})
}

// Gate returns the ITE MB PnP enter/exit sequence for the port.
func (c *It8716f) Gate(port uint16) pnp.Gate {
	g := iteGate{last: 0x55}
	if port == 0x4e {
		g.last = 0xaa
	}
	return g
}

// Initializers returns the post-enable initializers of the
// serial ports, the environment controller and the keyboard.
func (c *It8716f) Initializers(co pnp.Collaborators) map[pnp.FunctionID]pnp.InitFunc {
	l := co.Log
	if l == nil {
		l = log.Default()
	}
	return map[pnp.FunctionID]pnp.InitFunc{
		IT8716F_SP1: serialInit(co, l),
		IT8716F_SP2: serialInit(co, l),
		IT8716F_EC: func(dev *pnp.Device) error {
			r, err := pnp.RequireResource(dev, pnp.IO0)
			if err != nil {
				return err
			}
			return InitEC(co.Ports, r.Base+EC_INDEX_PORT, l)
		},
		IT8716F_KBCK: func(dev *pnp.Device) error {
			data, err := pnp.RequireResource(dev, pnp.IO0)
			if err != nil {
				return err
			}
			cmd, err := pnp.RequireResource(dev, pnp.IO1)
			if err != nil {
				return err
			}
			if co.Keyboard == nil {
				l.Printf("%s: KBC at 0x%04x/0x%04x left to the PS/2 driver\n", dev.Name, data.Base, cmd.Base)
				return nil
			}
			co.Keyboard.Init(data.Base, cmd.Base)
			return nil
		},
	}
}

// serialInit hands the port to the UART service when there is one.
func serialInit(co pnp.Collaborators, l *log.Logger) pnp.InitFunc {
	return func(dev *pnp.Device) error {
		r, err := pnp.RequireResource(dev, pnp.IO0)
		if err != nil {
			return err
		}
		baud := uint32(defaultBaud)
		if co.Board != nil {
			if fc, ok := co.Board.Functions[strings.ToLower(dev.Name)]; ok && fc.Baud != 0 {
				baud = fc.Baud
			}
		}
		if co.UART == nil {
			l.Printf("%s: UART at 0x%04x left to the console driver\n", dev.Name, r.Base)
			return nil
		}
		co.UART.Init(r.Base, baud)
		return nil
	}
}

// InitEC turns on fans 1, 2 and 3 with high polarity, keeping the
// other bits of the fan control register.
func InitEC(ports pnp.Ports, index uint16, l *log.Logger) error {
	ec := pnp.IndexPair{Ports: ports, Index: index}
	v, err := ec.Read(EC_FAN_CTL)
	if err != nil {
		return err
	}
	l.Printf("FAN_CTL: reg = 0x%04x, read value = 0x%02x\n", index+EC_FAN_CTL, v)
	if err := ec.Write(EC_FAN_CTL, v|EC_FAN_ON); err != nil {
		return err
	}
	l.Printf("FAN_CTL: reg = 0x%04x, writing value = 0x%02x\n", index+EC_FAN_CTL, v|EC_FAN_ON)
	return nil
}

// iteGate is the ITE configuration key sequence. The last key
// byte depends on the configuration port.
type iteGate struct {
	last uint8
}

// Enter writes 87 01 55 55 (87 01 55 aa at 0x4e) to the index port.
func (g iteGate) Enter(p pnp.IndexPair) error {
	for _, b := range []uint8{0x87, 0x01, 0x55, g.last} {
		if err := p.Ports.Outb(p.Index, b); err != nil {
			return err
		}
	}
	return nil
}

// Exit sets bit 1 of configuration control register 0x02.
func (iteGate) Exit(p pnp.IndexPair) error {
	return p.Write(0x02, 0x02)
}
