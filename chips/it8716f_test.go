// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package chips_test

import (
	"testing"

	"bytes"
	"errors"
	"io"
	"log"
	"reflect"

	"superio/chips"
	"superio/pnp"
	"superio/portio"
)

var discard = log.New(io.Discard, "", 0)

func out(port uint16, v uint8) portio.Op {
	return portio.Op{Out: true, Port: port, Val: v}
}

func in(port uint16, v uint8) portio.Op {
	return portio.Op{Port: port, Val: v}
}

// enter and exit are the ITE key sequences at 0x2e.
var enter = []portio.Op{out(0x2e, 0x87), out(0x2e, 0x01), out(0x2e, 0x55), out(0x2e, 0x55)}
var exit = []portio.Op{out(0x2e, 0x02), out(0x2f, 0x02)}

func session(ops ...portio.Op) []portio.Op {
	l := append([]portio.Op(nil), enter...)
	l = append(l, ops...)
	return append(l, exit...)
}

type fakeUART struct {
	bases []uint16
	bauds []uint32
}

func (u *fakeUART) Init(base uint16, baud uint32) {
	u.bases = append(u.bases, base)
	u.bauds = append(u.bauds, baud)
}

type fakeKeyboard struct {
	rec   *portio.Recorder
	calls [][2]uint16
	ops   int // Recorded port accesses at the time of the call.
}

func (k *fakeKeyboard) Init(data, cmd uint16) {
	k.calls = append(k.calls, [2]uint16{data, cmd})
	k.ops = len(k.rec.Ops)
}

func run(t *testing.T, cfg *pnp.BoardConfig, rec *portio.Recorder, co pnp.Collaborators) (*pnp.Tree, []*pnp.Device, error) {
	t.Helper()
	chip := pnp.FindChip("IT8716F")
	if chip == nil {
		t.Fatalf("IT8716F not registered")
	}
	bt, err := chip.Table().Bind(cfg)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	co.Ports = rec
	co.Board = cfg
	co.Log = discard
	tree := pnp.NewTree(chip.Name(), chip.Port())
	d := &pnp.Driver{
		Config: pnp.NewConfigSpace(rec, chip.Port(), chip.Gate(chip.Port())),
		Alloc:  pnp.Fixed{},
		Tree:   tree,
		Init:   chip.Initializers(co),
		Log:    discard,
	}
	devs, err := d.Run(bt)
	return tree, devs, err
}

func TestTable(t *testing.T) {
	var c chips.It8716f
	if c.Name() != "IT8716F" || c.ID() != 0x8716 || c.Port() != 0x2e {
		t.Errorf("Unexpected chip %s 0x%04x 0x%x", c.Name(), c.ID(), c.Port())
	}
	tbl := c.Table()
	if tbl.Len() != 11 {
		t.Fatalf("Expected 11 functions, got %d", tbl.Len())
	}
	masks := map[pnp.FunctionID]pnp.Mask{
		chips.IT8716F_FDC:  pnp.MaskIO0 | pnp.MaskIRQ0 | pnp.MaskDRQ0,
		chips.IT8716F_SP1:  pnp.MaskIO0 | pnp.MaskIRQ0,
		chips.IT8716F_SP2:  pnp.MaskIO0 | pnp.MaskIRQ0,
		chips.IT8716F_PP:   pnp.MaskIO0 | pnp.MaskIRQ0 | pnp.MaskDRQ0,
		chips.IT8716F_EC:   pnp.MaskIO0 | pnp.MaskIO1 | pnp.MaskIRQ0,
		chips.IT8716F_KBCK: pnp.MaskIO0 | pnp.MaskIO1 | pnp.MaskIRQ0,
		chips.IT8716F_KBCM: pnp.MaskIRQ0,
		chips.IT8716F_GPIO: pnp.MaskIO1 | pnp.MaskIO2,
		chips.IT8716F_MIDI: pnp.MaskIO0 | pnp.MaskIRQ0,
		chips.IT8716F_GAME: pnp.MaskIO0,
		chips.IT8716F_IR:   0,
	}
	for i, f := range tbl.Functions() {
		if f.ID != pnp.FunctionID(i) {
			t.Errorf("Function %d has id %d", i, f.ID)
		}
		if f.Mask != masks[f.ID] {
			t.Errorf("%s: expected %v, got %v", f.Name, masks[f.ID], f.Mask)
		}
		if len(f.Values) != f.Mask.Count() {
			t.Errorf("%s: %d values for %v", f.Name, len(f.Values), f.Mask)
		}
		if f.Enabled {
			t.Errorf("%s enabled by default", f.Name)
		}
	}
	ec, _ := tbl.Function(chips.IT8716F_EC)
	if v, _ := ec.Value(pnp.IO0); v.Size(pnp.IO0) != 8 {
		t.Errorf("EC io0 size %d", v.Size(pnp.IO0))
	}
}

func TestGate(t *testing.T) {
	var c chips.It8716f
	for _, port := range []uint16{0x2e, 0x4e} {
		rec := portio.NewRecorder()
		cs := pnp.NewConfigSpace(rec, port, c.Gate(port))
		if err := cs.Do(func(*pnp.Session) error { return nil }); err != nil {
			t.Fatalf("Do: %v", err)
		}
		last := uint8(0x55)
		if port == 0x4e {
			last = 0xaa
		}
		exp := []portio.Op{
			out(port, 0x87), out(port, 0x01), out(port, 0x55), out(port, last),
			out(port, 0x02), out(port+1, 0x02),
		}
		if !reflect.DeepEqual(exp, rec.Ops) {
			t.Errorf("0x%x: expected %v, got %v", port, exp, rec.Ops)
		}
	}
	// The key is chosen for the port the gate was made for.
	rec := portio.NewRecorder()
	if err := c.Gate(0x4e).Enter(pnp.IndexPair{Ports: rec, Index: 0x2e}); err != nil {
		t.Fatalf("Enter: %v", err)
	}
	if last := rec.Ops[len(rec.Ops)-1]; last != out(0x2e, 0xaa) {
		t.Errorf("Expected 0xaa last, got %v", last)
	}
}

func TestAllDisabled(t *testing.T) {
	rec := portio.NewRecorder()
	kbd := &fakeKeyboard{rec: rec}
	uart := &fakeUART{}
	cfg := pnp.NewBoardConfig()
	for _, f := range (&chips.It8716f{}).Table().Functions() {
		cfg.Enable(f.Name, false)
	}
	cfg.Set("ec", pnp.IO0, 0x290)
	cfg.Set("kbck", pnp.IO0, 0x60)
	tree, devs, err := run(t, cfg, rec, pnp.Collaborators{UART: uart, Keyboard: kbd})
	if err != nil {
		t.Errorf("Run: %v", err)
	}
	if len(rec.Writes()) != 0 || len(rec.Ops) != 0 {
		t.Errorf("Expected no port accesses, got %v", rec.Ops)
	}
	if len(devs) != 0 || len(tree.Root.Children) != 0 {
		t.Errorf("Expected no devices, got %v", tree.Root.Children)
	}
	if len(kbd.calls) != 0 || len(uart.bases) != 0 {
		t.Errorf("Initializers ran for disabled functions")
	}
}

func TestEnvironmentController(t *testing.T) {
	tests := []struct {
		v, exp uint8
	}{
		{0x10, 0x97},
		{0x00, 0x87},
		{0x78, 0xff},
		{0x87, 0x87},
	}
	for _, tc := range tests {
		rec := portio.NewRecorder()
		rec.Window(0x295+chips.EC_INDEX_PORT, map[uint8]uint8{chips.EC_FAN_CTL: tc.v})
		cfg := pnp.NewBoardConfig()
		cfg.Enable("ec", true)
		cfg.Set("ec", pnp.IO0, 0x295)
		tree, devs, err := run(t, cfg, rec, pnp.Collaborators{})
		if err != nil {
			t.Errorf("Run: %v", err)
		}
		var exp []portio.Op
		exp = append(exp, session(
			out(0x2e, 0x07), out(0x2f, 0x04),
			out(0x2e, 0x60), out(0x2f, 0x02),
			out(0x2e, 0x61), out(0x2f, 0x95))...)
		exp = append(exp, session(
			out(0x2e, 0x07), out(0x2f, 0x04),
			out(0x2e, 0x30), out(0x2f, 0x01))...)
		exp = append(exp,
			out(0x29a, 0x14), in(0x29b, tc.v),
			out(0x29a, 0x14), out(0x29b, tc.exp))
		if !reflect.DeepEqual(exp, rec.Ops) {
			t.Errorf("0x%02x: expected\n%v\ngot\n%v", tc.v, exp, rec.Ops)
		}
		if v, _ := rec.Reg(0x29a, chips.EC_FAN_CTL); v != tc.exp {
			t.Errorf("0x%02x: expected FAN_CTL 0x%02x, got 0x%02x", tc.v, tc.exp, v)
		}
		if len(devs) != 1 || len(tree.Root.Children) != 1 {
			t.Errorf("Expected only EC, got %v", tree.Root.Children)
		}
		if _, ok := tree.Find(chips.IT8716F_EC); !ok {
			t.Errorf("EC not registered")
		}
	}
}

func TestInitEC(t *testing.T) {
	rec := portio.NewRecorder()
	rec.Window(0x295, map[uint8]uint8{0x14: 0x40})
	var logs bytes.Buffer
	if err := chips.InitEC(rec, 0x295, log.New(&logs, "", 0)); err != nil {
		t.Fatalf("InitEC: %v", err)
	}
	exp := "FAN_CTL: reg = 0x02a9, read value = 0x40\n" +
		"FAN_CTL: reg = 0x02a9, writing value = 0xc7\n"
	if logs.String() != exp {
		t.Errorf("Expected %q, got %q", exp, logs.String())
	}
	fail := errors.New("bus error")
	rec.Errs[0x296] = fail
	if err := chips.InitEC(rec, 0x295, discard); !errors.Is(err, fail) {
		t.Errorf("Expected bus error, got %v", err)
	}
}

func TestKeyboard(t *testing.T) {
	rec := portio.NewRecorder()
	kbd := &fakeKeyboard{rec: rec}
	cfg := pnp.NewBoardConfig()
	cfg.Enable("kbck", true)
	cfg.Set("kbck", pnp.IO0, 0x60)
	cfg.Set("kbck", pnp.IO1, 0x64)
	cfg.Set("kbck", pnp.IRQ0, 1)
	_, _, err := run(t, cfg, rec, pnp.Collaborators{Keyboard: kbd})
	if err != nil {
		t.Errorf("Run: %v", err)
	}
	if !reflect.DeepEqual([][2]uint16{{0x60, 0x64}}, kbd.calls) {
		t.Errorf("Expected one call with 0x60 0x64, got %v", kbd.calls)
	}
	var exp []portio.Op
	exp = append(exp, session(
		out(0x2e, 0x07), out(0x2f, 0x05),
		out(0x2e, 0x60), out(0x2f, 0x00),
		out(0x2e, 0x61), out(0x2f, 0x60),
		out(0x2e, 0x62), out(0x2f, 0x00),
		out(0x2e, 0x63), out(0x2f, 0x64),
		out(0x2e, 0x70), out(0x2f, 0x01))...)
	exp = append(exp, session(
		out(0x2e, 0x07), out(0x2f, 0x05),
		out(0x2e, 0x30), out(0x2f, 0x01))...)
	if !reflect.DeepEqual(exp, rec.Ops) {
		t.Errorf("Expected\n%v\ngot\n%v", exp, rec.Ops)
	}
	// Both commits were recorded when the keyboard was initialised.
	if kbd.ops != len(exp) {
		t.Errorf("Keyboard initialised after %d of %d accesses", kbd.ops, len(exp))
	}
}

func TestKeyboardMissingCommandPort(t *testing.T) {
	rec := portio.NewRecorder()
	kbd := &fakeKeyboard{rec: rec}
	cfg := pnp.NewBoardConfig()
	cfg.Enable("kbck", true)
	cfg.Set("kbck", pnp.IO0, 0x60)
	_, devs, err := run(t, cfg, rec, pnp.Collaborators{Keyboard: kbd})
	if !errors.Is(err, pnp.ErrAbsentResource) {
		t.Errorf("Expected ErrAbsentResource, got %v", err)
	}
	if len(kbd.calls) != 0 {
		t.Errorf("Keyboard initialised without a command port")
	}
	if len(devs) != 1 {
		t.Errorf("Expected KBCK still enabled, got %d devices", len(devs))
	}
}

func TestKeyboardWithoutService(t *testing.T) {
	var logs bytes.Buffer
	inits := (&chips.It8716f{}).Initializers(pnp.Collaborators{Log: log.New(&logs, "", 0)})
	dev := &pnp.Device{Name: "KBCK", Function: chips.IT8716F_KBCK, Enabled: true,
		Resources: []pnp.Resource{
			{Slot: pnp.IO0, Base: 0x60, Size: 1},
			{Slot: pnp.IO1, Base: 0x64, Size: 1},
		}}
	if err := inits[chips.IT8716F_KBCK](dev); err != nil {
		t.Errorf("init: %v", err)
	}
	exp := "KBCK: KBC at 0x0060/0x0064 left to the PS/2 driver\n"
	if logs.String() != exp {
		t.Errorf("Expected %q, got %q", exp, logs.String())
	}
}

func TestDMAChannelZero(t *testing.T) {
	rec := portio.NewRecorder()
	cfg := pnp.NewBoardConfig()
	cfg.Enable("fdc", true)
	cfg.Set("fdc", pnp.IO0, 0x3f0)
	cfg.Set("fdc", pnp.IRQ0, 6)
	cfg.Set("fdc", pnp.DRQ0, 0)
	tree, _, err := run(t, cfg, rec, pnp.Collaborators{})
	if err != nil {
		t.Errorf("Run: %v", err)
	}
	var exp []portio.Op
	exp = append(exp, session(
		out(0x2e, 0x07), out(0x2f, 0x00),
		out(0x2e, 0x60), out(0x2f, 0x03),
		out(0x2e, 0x61), out(0x2f, 0xf0),
		out(0x2e, 0x70), out(0x2f, 0x06),
		out(0x2e, 0x74), out(0x2f, 0x00))...)
	exp = append(exp, session(
		out(0x2e, 0x07), out(0x2f, 0x00),
		out(0x2e, 0x30), out(0x2f, 0x01))...)
	if !reflect.DeepEqual(exp, rec.Ops) {
		t.Errorf("Expected\n%v\ngot\n%v", exp, rec.Ops)
	}
	fdc, ok := tree.Find(chips.IT8716F_FDC)
	if !ok {
		t.Fatalf("FDC not registered")
	}
	if r, ok := fdc.Resource(pnp.DRQ0); !ok || r.Base != 0 {
		t.Errorf("Expected drq0 0, got %v %v", r, ok)
	}
}

func TestSerial(t *testing.T) {
	rec := portio.NewRecorder()
	uart := &fakeUART{}
	cfg := pnp.NewBoardConfig()
	cfg.Enable("sp1", true)
	cfg.Set("sp1", pnp.IO0, 0x3f8)
	cfg.Set("sp1", pnp.IRQ0, 4)
	fc := cfg.Functions["sp1"]
	fc.Baud = 57600
	cfg.Functions["sp1"] = fc
	cfg.Enable("sp2", true)
	cfg.Set("sp2", pnp.IO0, 0x2f8)
	_, devs, err := run(t, cfg, rec, pnp.Collaborators{UART: uart})
	if err != nil {
		t.Errorf("Run: %v", err)
	}
	if len(devs) != 2 {
		t.Errorf("Expected 2 devices, got %d", len(devs))
	}
	if !reflect.DeepEqual([]uint16{0x3f8, 0x2f8}, uart.bases) ||
		!reflect.DeepEqual([]uint32{57600, 115200}, uart.bauds) {
		t.Errorf("Unexpected UART calls %v %v", uart.bases, uart.bauds)
	}
	// Without a UART service the ports are still enabled.
	rec = portio.NewRecorder()
	if _, devs, err = run(t, cfg, rec, pnp.Collaborators{}); err != nil || len(devs) != 2 {
		t.Errorf("Run without UART: %d devices, %v", len(devs), err)
	}
}

func TestFailureIsLocal(t *testing.T) {
	rec := portio.NewRecorder()
	rec.Window(0x290+chips.EC_INDEX_PORT, map[uint8]uint8{chips.EC_FAN_CTL: 0})
	uart := &fakeUART{}
	cfg := pnp.NewBoardConfig()
	// COM1 without a base: enabled, but not initialised.
	cfg.Enable("sp1", true)
	cfg.Set("sp1", pnp.IRQ0, 4)
	cfg.Enable("ec", true)
	cfg.Set("ec", pnp.IO0, 0x290)
	cfg.Enable("gpio", true)
	cfg.Set("gpio", pnp.IO1, 0x800)
	cfg.Set("gpio", pnp.IO2, 0x808)
	tree, devs, err := run(t, cfg, rec, pnp.Collaborators{UART: uart})
	if !errors.Is(err, pnp.ErrAbsentResource) {
		t.Errorf("Expected ErrAbsentResource, got %v", err)
	}
	if len(devs) != 3 {
		t.Errorf("Expected 3 devices, got %d", len(devs))
	}
	if len(uart.bases) != 0 {
		t.Errorf("UART initialised without a base")
	}
	if v, _ := rec.Reg(0x295, chips.EC_FAN_CTL); v != 0x87 {
		t.Errorf("EC not initialised, FAN_CTL 0x%02x", v)
	}
	gpio, ok := tree.Find(chips.IT8716F_GPIO)
	if !ok {
		t.Fatalf("GPIO not registered")
	}
	exp := []pnp.Resource{
		{Slot: pnp.IO1, Base: 0x800, Size: 8},
		{Slot: pnp.IO2, Base: 0x808, Size: 8},
	}
	if !reflect.DeepEqual(exp, gpio.Resources) {
		t.Errorf("Expected %v, got %v", exp, gpio.Resources)
	}
}

func TestInitializers(t *testing.T) {
	var c chips.It8716f
	inits := c.Initializers(pnp.Collaborators{})
	for _, id := range []pnp.FunctionID{chips.IT8716F_SP1, chips.IT8716F_SP2, chips.IT8716F_EC, chips.IT8716F_KBCK} {
		if inits[id] == nil {
			t.Errorf("No initializer for function %d", id)
		}
	}
	for _, id := range []pnp.FunctionID{chips.IT8716F_FDC, chips.IT8716F_PP, chips.IT8716F_KBCM,
		chips.IT8716F_GPIO, chips.IT8716F_MIDI, chips.IT8716F_GAME, chips.IT8716F_IR} {
		if _, ok := inits[id]; ok {
			t.Errorf("Unexpected initializer for function %d", id)
		}
	}
}
