// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package dtb reads the board configuration from a flattened
// device tree file. The configuration is the first node named
// 'superio', e.g
//
//	superio@2e {
//		reg = <0x2e>;
//		ec {
//			status = "okay";
//			io0 = <0x290>;
//			irq0 = <9>;
//		};
//	};
//
// A function is enabled by 'status = "okay"' or a non-zero 'enable'
// property. The DTB can be generated from DTS using dtc e.g
//
//	dtc --out board.dtb board.dts
package dtb

import (
	"fmt"
	"os"
	"strings"

	"github.com/u-root/u-root/pkg/dt"

	"superio/pnp"
)

// init registers the reader.
func init() {
	pnp.RegisterReader(&DTBReader{})
}

// DTBReader reads the board configuration from a DTB.
type DTBReader struct {
}

// Name returns the name of this reader.
func (r *DTBReader) Name() string {
	return "dtb"
}

// Read reads the DTB file (provided as the argument).
func (r *DTBReader) Read(arg string) (*pnp.BoardConfig, error) {
	f, err := os.Open(arg)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	fdt, err := dt.ReadFDT(f)
	if err != nil {
		return nil, err
	}
	return parse(fdt.RootNode)
}

// parse finds the superio node below root and extracts the
// function configuration from its children.
func parse(root *dt.Node) (*pnp.BoardConfig, error) {
	var sio *dt.Node
	err := root.Walk(func(n *dt.Node) error {
		if sio == nil && nodeName(n) == "superio" {
			sio = n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if sio == nil {
		return nil, fmt.Errorf("no superio node")
	}
	cfg := pnp.NewBoardConfig()
	if p, ok := sio.LookProperty("reg"); ok {
		v, err := p.AsU32()
		if err != nil {
			return nil, fmt.Errorf("%s: reg: %v", sio.Name, err)
		}
		if v > 0xffff {
			return nil, fmt.Errorf("%s: reg 0x%x out of range", sio.Name, v)
		}
		cfg.Port = uint16(v)
	}
	for _, n := range sio.Children {
		fc, err := function(n)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", n.Name, err)
		}
		cfg.Functions[nodeName(n)] = fc
	}
	return cfg, nil
}

// function extracts the configuration of one function node.
func function(n *dt.Node) (pnp.FunctionConfig, error) {
	fc := pnp.FunctionConfig{Values: make(map[pnp.Slot]uint16)}
	if p, ok := n.LookProperty("status"); ok {
		s := strings.TrimRight(string(p.Value), "\x00")
		fc.Enabled = s == "okay" || s == "ok"
	}
	if p, ok := n.LookProperty("enable"); ok {
		// An empty property is a true boolean.
		if len(p.Value) == 0 {
			fc.Enabled = true
		} else {
			v, err := p.AsU32()
			if err != nil {
				return fc, fmt.Errorf("enable: %v", err)
			}
			fc.Enabled = v != 0
		}
	}
	for s := pnp.IO0; s < pnp.NumSlots; s++ {
		p, ok := n.LookProperty(s.String())
		if !ok {
			continue
		}
		v, err := p.AsU32()
		if err != nil {
			return fc, fmt.Errorf("%v: %v", s, err)
		}
		if v > 0xffff {
			return fc, fmt.Errorf("%v: 0x%x out of range", s, v)
		}
		fc.Values[s] = uint16(v)
	}
	if p, ok := n.LookProperty("current-speed"); ok {
		v, err := p.AsU32()
		if err != nil {
			return fc, fmt.Errorf("current-speed: %v", err)
		}
		fc.Baud = v
	}
	return fc, nil
}

// nodeName returns the lower case node name without the unit address.
func nodeName(n *dt.Node) string {
	name := n.Name
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(name)
}
