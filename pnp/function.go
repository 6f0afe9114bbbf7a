// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package pnp

import (
	"errors"
	"fmt"
	"log"
	"strings"
)

// FunctionID is a logical device number, written to the logical
// device select register to address the function.
type FunctionID uint8

// Function describes one logical function of a chip.
type Function struct {
	ID      FunctionID
	Name    string
	Enabled bool
	Mask    Mask    // Slots the function requires.
	Values  []Value // One per slot in Mask, in slot order.
}

// Value returns the value of the slot, or false if the function
// does not declare it.
func (f *Function) Value(s Slot) (Value, bool) {
	if !f.Mask.Has(s) {
		return Value{}, false
	}
	return f.Values[f.Mask.index(s)], true
}

func (f *Function) clone() Function {
	c := *f
	c.Values = append([]Value(nil), f.Values...)
	return c
}

// Table is the set of logical functions of a chip.
// A bound table carries the board's enables and resource bases and is
// not modified afterwards.
type Table struct {
	funcs []Function
	bound bool
}

// NewTable validates the functions and returns a table holding a copy of them.
// Each function ID may appear once, and each function must have exactly
// one value per slot of its mask.
func NewTable(funcs []Function) (*Table, error) {
	seen := make(map[FunctionID]string)
	t := &Table{}
	for i := range funcs {
		f := &funcs[i]
		if prev, ok := seen[f.ID]; ok {
			return nil, fmt.Errorf("%s: duplicate function id 0x%02x (also %s)", f.Name, f.ID, prev)
		}
		seen[f.ID] = f.Name
		if len(f.Values) != f.Mask.Count() {
			return nil, fmt.Errorf("%s: %d resource values for slots %v", f.Name, len(f.Values), f.Mask)
		}
		t.funcs = append(t.funcs, f.clone())
	}
	return t, nil
}

// MustTable is like NewTable but panics on an invalid table.
// It is intended for compiled-in chip tables.
func MustTable(funcs []Function) *Table {
	t, err := NewTable(funcs)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of functions in the table.
func (t *Table) Len() int {
	return len(t.funcs)
}

// Bound returns true if board configuration has been bound to the table.
func (t *Table) Bound() bool {
	return t.bound
}

// Functions returns a copy of the functions in table order.
func (t *Table) Functions() []Function {
	l := make([]Function, 0, len(t.funcs))
	for i := range t.funcs {
		l = append(l, t.funcs[i].clone())
	}
	return l
}

// Function returns a copy of the function with this id.
func (t *Table) Function(id FunctionID) (Function, bool) {
	for i := range t.funcs {
		if t.funcs[i].ID == id {
			return t.funcs[i].clone(), true
		}
	}
	return Function{}, false
}

// Lookup returns a copy of the function with this name (case insensitive).
func (t *Table) Lookup(name string) (Function, bool) {
	for i := range t.funcs {
		if strings.EqualFold(t.funcs[i].Name, name) {
			return t.funcs[i].clone(), true
		}
	}
	return Function{}, false
}

// Bind returns a new table with the enables and resource bases from the
// board configuration. Functions the board does not mention are disabled.
// The board may move a function but never change which slots it needs, so
// a value for an undeclared slot is an error, as is an unknown function.
// Either every function is bound or an error is returned.
func (t *Table) Bind(cfg *BoardConfig) (*Table, error) {
	if cfg == nil {
		return nil, errors.New("bind: no board configuration")
	}
	var errs []error
	byName := make(map[string]FunctionConfig, len(cfg.Functions))
	for name, fc := range cfg.Functions {
		key := strings.ToLower(name)
		if _, ok := t.Lookup(key); !ok {
			errs = append(errs, fmt.Errorf("%s: %w", name, ErrUnknownFunction))
			continue
		}
		if _, dup := byName[key]; dup {
			errs = append(errs, fmt.Errorf("%s: configured twice", name))
			continue
		}
		byName[key] = fc
	}
	bt := &Table{bound: true}
	for i := range t.funcs {
		f := t.funcs[i].clone()
		fc, ok := byName[strings.ToLower(f.Name)]
		f.Enabled = ok && fc.Enabled
		for s, v := range fc.Values {
			if !f.Mask.Has(s) {
				errs = append(errs, fmt.Errorf("%s: %v not used by this function (needs %v)", f.Name, s, f.Mask))
				continue
			}
			if err := checkValue(s, v); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", f.Name, err))
				continue
			}
			val := &f.Values[f.Mask.index(s)]
			val.Base = v
			val.Assigned = true
		}
		if ok && !fc.Enabled && len(fc.Values) != 0 {
			log.Printf("%s: disabled, resources ignored\n", f.Name)
		}
		bt.funcs = append(bt.funcs, f)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("bind: %w", err)
	}
	return bt, nil
}

// checkValue verifies that the value fits the slot's register.
func checkValue(s Slot, v uint16) error {
	switch s {
	case IRQ0:
		if v > 15 {
			return fmt.Errorf("%v: irq %d out of range", s, v)
		}
	case DRQ0:
		if v > 7 {
			return fmt.Errorf("%v: dma channel %d out of range", s, v)
		}
	}
	return nil
}
