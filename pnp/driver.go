// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package pnp

import (
	"errors"
	"fmt"
	"log"
)

// InitFunc performs the function specific setup of a device whose
// resources and enable bit have been committed.
type InitFunc func(dev *Device) error

// Driver enables the functions of one chip and runs their initializers.
type Driver struct {
	Config *ConfigSpace
	Alloc  Allocator
	Tree   Registrar
	Parent *Device // Parent of the registered devices, nil for the tree root.
	Init   map[FunctionID]InitFunc
	Log    *log.Logger // nil for the standard logger.
}

func (d *Driver) logf(format string, v ...interface{}) {
	if d.Log != nil {
		d.Log.Printf(format, v...)
		return
	}
	log.Printf(format, v...)
}

// ReadResources returns the resources assigned to the function's slots
// in slot order. Slots without an assignment are reported and left out,
// so the chip keeps its power-on value for them.
func (d *Driver) ReadResources(f *Function) []Resource {
	var res []Resource
	for _, s := range f.Mask.Slots() {
		r, ok := d.Alloc.Resource(f, s)
		if !ok {
			d.logf("%s: %v not assigned, ignored\n", f.Name, s)
			continue
		}
		res = append(res, r)
	}
	return res
}

// SetResources selects the function's logical device and writes
// the resources to it.
func (d *Driver) SetResources(f *Function, res []Resource) error {
	return d.Config.Do(func(s *Session) error {
		if err := s.SetLogicalDevice(f.ID); err != nil {
			return err
		}
		for _, r := range res {
			if err := s.SetResource(r); err != nil {
				return fmt.Errorf("%v: %w", r.Slot, err)
			}
		}
		return nil
	})
}

// EnableResources selects the function's logical device and sets
// its activate bit.
func (d *Driver) EnableResources(f *Function) error {
	return d.Config.Do(func(s *Session) error {
		if err := s.SetLogicalDevice(f.ID); err != nil {
			return err
		}
		return s.SetEnable(true)
	})
}

// Enable commits the function's resources, then its enable bit, and
// registers it in the device tree. Disabled functions are not touched.
func (d *Driver) Enable(f *Function) (*Device, error) {
	if !f.Enabled {
		return nil, nil
	}
	res := d.ReadResources(f)
	if err := d.SetResources(f, res); err != nil {
		return nil, fmt.Errorf("set resources: %w", err)
	}
	if err := d.EnableResources(f); err != nil {
		return nil, fmt.Errorf("enable: %w", err)
	}
	dev := d.Tree.RegisterChild(d.Parent, f.ID)
	dev.Name = f.Name
	dev.Enabled = true
	dev.Resources = res
	return dev, nil
}

// InitDevice runs the initializer of the device's function, if it has one.
func (d *Driver) InitDevice(dev *Device) error {
	if dev == nil || !dev.Enabled {
		return nil
	}
	fn, ok := d.Init[dev.Function]
	if !ok || fn == nil {
		return nil
	}
	return fn(dev)
}

// Run enables and initialises every enabled function of the bound table.
// A failing function is reported and skipped; the others are still brought
// up. The devices brought up are returned along with the joined failures.
func (d *Driver) Run(t *Table) ([]*Device, error) {
	if !t.Bound() {
		return nil, ErrUnbound
	}
	var devs []*Device
	var errs []error
	for _, f := range t.Functions() {
		if !f.Enabled {
			continue
		}
		dev, err := d.Enable(&f)
		if err != nil {
			d.logf("%s: %v, disabled\n", f.Name, err)
			errs = append(errs, fmt.Errorf("%s: %w", f.Name, err))
			continue
		}
		devs = append(devs, dev)
		if err := d.InitDevice(dev); err != nil {
			d.logf("%s: init: %v, ignored\n", f.Name, err)
			errs = append(errs, fmt.Errorf("%s: init: %w", f.Name, err))
		}
	}
	return devs, errors.Join(errs...)
}

// RequireResource returns the committed resource of the slot, or an
// error wrapping ErrAbsentResource if there is none.
func RequireResource(dev *Device, s Slot) (Resource, error) {
	r, ok := dev.Resource(s)
	if !ok {
		return Resource{}, fmt.Errorf("%s %v: %w", dev.Name, s, ErrAbsentResource)
	}
	return r, nil
}
