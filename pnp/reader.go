// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package pnp

import (
	"fmt"
	"sort"
	"strings"
)

// Reader produces a board configuration from a source, such as a
// file of the reader's format named by arg.
type Reader interface {
	Name() string
	Read(arg string) (*BoardConfig, error)
}

// readers holds the registered readers keyed by lower case name.
var readers = map[string]Reader{}

// RegisterReader makes a reader available to ReadConfig.
// Registering two readers of the same name is a programming error.
func RegisterReader(r Reader) {
	key := strings.ToLower(r.Name())
	if _, dup := readers[key]; dup {
		panic(fmt.Sprintf("pnp: reader %q registered twice", r.Name()))
	}
	readers[key] = r
}

// ReadConfig reads the board configuration with the named reader.
func ReadConfig(reader, arg string) (*BoardConfig, error) {
	r, ok := readers[strings.ToLower(reader)]
	if !ok {
		return nil, fmt.Errorf("%s: unknown reader", reader)
	}
	cfg, err := r.Read(arg)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("%s: no configuration read from %s", reader, arg)
	}
	return cfg, nil
}

// Readers returns the sorted names of the registered readers.
func Readers() []string {
	l := make([]string, 0, len(readers))
	for _, r := range readers {
		l = append(l, r.Name())
	}
	sort.Strings(l)
	return l
}
