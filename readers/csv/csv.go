// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package csv

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"superio/pnp"
)

// init registers the reader.
func init() {
	pnp.RegisterReader(&CSVReader{})
}

// CSVReader reads the board configuration from a comma separated
// values file, one row per function.
type CSVReader struct {
}

// Name returns the name of this reader.
func (r *CSVReader) Name() string {
	return "csv"
}

// Read reads the CSV file (provided as the argument) and extracts
// the function configuration. The first line is expected to be column
// titles that are used to identify the columns. 'Function' and 'Enable'
// are required; the slot columns ('IO0', 'IO1', 'IO2', 'IRQ0', 'DRQ0', in any case)
// and 'Baud' are optional, and an empty cell leaves the value unset.
func (r *CSVReader) Read(arg string) (*pnp.BoardConfig, error) {
	f, err := os.Open(arg)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rdr := csv.NewReader(bufio.NewReader(f))
	data, err := rdr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(data) < 2 {
		return nil, fmt.Errorf("no data in file")
	}
	// Put the CSV headers into a map, with the slot columns apart.
	cmap := make(map[string]int)
	slots := make(map[pnp.Slot]int)
	for c, s := range data[0] {
		h := strings.TrimSpace(s)
		if slot, ok := pnp.ParseSlot(h); ok {
			slots[slot] = c
			continue
		}
		cmap[h] = c
	}
	// Find the matching columns that are needed.
	name, ok := cmap["Function"]
	if !ok {
		return nil, fmt.Errorf("missing 'Function' column")
	}
	enable, ok := cmap["Enable"]
	if !ok {
		return nil, fmt.Errorf("missing 'Enable' column")
	}
	baud, hasBaud := cmap["Baud"]
	cfg := pnp.NewBoardConfig()
	// Read the rest of the rows.
	for i, row := range data[1:] {
		line := i + 2
		fn := strings.ToLower(strings.TrimSpace(row[name]))
		if len(fn) == 0 {
			fmt.Printf("%s:%d: No function name - ignored\n", arg, line)
			continue
		}
		on, err := parseEnable(row[enable])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %v", arg, line, err)
		}
		fc := pnp.FunctionConfig{Enabled: on, Values: make(map[pnp.Slot]uint16)}
		for s, c := range slots {
			if len(strings.TrimSpace(row[c])) == 0 {
				continue
			}
			v, err := strconv.ParseUint(strings.TrimSpace(row[c]), 0, 16)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %v: %v", arg, line, s, err)
			}
			fc.Values[s] = uint16(v)
		}
		if hasBaud && len(strings.TrimSpace(row[baud])) != 0 {
			v, err := strconv.ParseUint(strings.TrimSpace(row[baud]), 10, 32)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: baud: %v", arg, line, err)
			}
			fc.Baud = uint32(v)
		}
		cfg.Functions[fn] = fc
	}
	return cfg, nil
}

// parseEnable accepts yes/no as well as the strconv boolean forms.
func parseEnable(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off", "":
		return false, nil
	}
	return strconv.ParseBool(strings.TrimSpace(s))
}
