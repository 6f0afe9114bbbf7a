// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package lua reads the board configuration from a Lua script that
// sets a global 'superio' table, e.g
//
//	superio = {
//		port = 0x2e,
//		ec   = { enable = true, io0 = 0x290, irq0 = 9 },
//		sp1  = { enable = true, io0 = 0x3f8, irq0 = 4, baud = 115200 },
//	}
package lua

import (
	"fmt"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"superio/pnp"
)

// init registers the reader.
func init() {
	pnp.RegisterReader(&LuaReader{})
}

// LuaReader reads the board configuration from a Lua script.
type LuaReader struct {
}

// Name returns the name of this reader.
func (r *LuaReader) Name() string {
	return "lua"
}

// Read runs the script (provided as the argument) and extracts
// the configuration from the superio table it sets.
func (r *LuaReader) Read(arg string) (*pnp.BoardConfig, error) {
	L := lua.NewState()
	defer L.Close()
	if err := L.DoFile(arg); err != nil {
		return nil, err
	}
	return load(L)
}

// load converts the superio global of the state.
func load(L *lua.LState) (*pnp.BoardConfig, error) {
	tbl, ok := L.GetGlobal("superio").(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("script does not set a superio table")
	}
	cfg := pnp.NewBoardConfig()
	var errs []string
	tbl.ForEach(func(k, v lua.LValue) {
		key := strings.ToLower(k.String())
		switch val := v.(type) {
		case lua.LNumber:
			if key != "port" {
				errs = append(errs, fmt.Sprintf("%s: unexpected number", key))
				return
			}
			p, err := toU16(val)
			if err != nil {
				errs = append(errs, fmt.Sprintf("port: %v", err))
				return
			}
			cfg.Port = p
		case *lua.LTable:
			fc, err := function(val)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", key, err))
				return
			}
			cfg.Functions[key] = fc
		default:
			errs = append(errs, fmt.Sprintf("%s: unexpected %s", key, v.Type()))
		}
	})
	if len(errs) != 0 {
		// Table iteration order is not fixed.
		sort.Strings(errs)
		return nil, fmt.Errorf("superio: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

// function converts the table of one function.
func function(t *lua.LTable) (pnp.FunctionConfig, error) {
	fc := pnp.FunctionConfig{Values: make(map[pnp.Slot]uint16)}
	switch v := t.RawGetString("enable").(type) {
	case *lua.LNilType:
	case lua.LBool:
		fc.Enabled = bool(v)
	case lua.LNumber:
		fc.Enabled = v != 0
	default:
		return fc, fmt.Errorf("enable: expected boolean or number, got %s", v.Type())
	}
	for s := pnp.IO0; s < pnp.NumSlots; s++ {
		v := t.RawGetString(s.String())
		if v == lua.LNil {
			continue
		}
		n, ok := v.(lua.LNumber)
		if !ok {
			return fc, fmt.Errorf("%v: expected number, got %s", s, v.Type())
		}
		u, err := toU16(n)
		if err != nil {
			return fc, fmt.Errorf("%v: %v", s, err)
		}
		fc.Values[s] = u
	}
	if v := t.RawGetString("baud"); v != lua.LNil {
		n, ok := v.(lua.LNumber)
		if !ok || n < 0 || float64(n) != float64(uint32(n)) {
			return fc, fmt.Errorf("baud: invalid value %s", v.String())
		}
		fc.Baud = uint32(n)
	}
	return fc, nil
}

func toU16(n lua.LNumber) (uint16, error) {
	if n < 0 || n > 0xffff || float64(n) != float64(uint16(n)) {
		return 0, fmt.Errorf("%v out of range", n)
	}
	return uint16(n), nil
}
