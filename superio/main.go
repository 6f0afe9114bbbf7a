// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Utility to configure a Super I/O chip from a board configuration:
// the enabled functions get their resources and enable bits committed
// and are then initialised.
//
//	superio --chip IT8716F --reader dtb board.dtb
//	superio --dry-run --output devices.dts board.csv
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"golang.org/x/term"

	_ "superio/chips"
	"superio/pnp"
	"superio/portio"
	_ "superio/readers/csv"
	_ "superio/readers/dtb"
	_ "superio/readers/lua"
)

var chipFlag = flag.String("chip", "IT8716F", "Chip to configure")
var reader = flag.String("reader", "csv", "Board configuration source type")
var port = flag.Uint("port", 0, "Configuration port (0 for the board or chip default)")
var dryRun = flag.Bool("dry-run", false, "Record the port accesses instead of performing them")
var probe = flag.Bool("probe", false, "Check the chip ID before configuring")
var output = flag.String("output", "", "Write the device tree to this file")
var force = flag.Bool("force", false, "Overwrite output file")

func main() {
	flag.Usage = Usage
	flag.Parse()
	if len(flag.Args()) == 0 {
		Error("No input arguments")
	}
	chip := pnp.FindChip(*chipFlag)
	if chip == nil {
		Error(fmt.Sprintf("No matching chip for '%s'", *chipFlag))
	}
	cfg, err := pnp.ReadConfig(*reader, flag.Arg(0))
	if err != nil {
		Error(fmt.Sprintf("%s - %s: %v", *reader, flag.Arg(0), err))
	}
	if len(*output) != 0 && !*force && fileExists(*output) {
		Error(fmt.Sprintf("%s already exists - use --force to overwrite", *output))
	}
	cport := chip.Port()
	if cfg.Port != 0 {
		cport = cfg.Port
	}
	if *port != 0 {
		if *port > 0xffff {
			Error(fmt.Sprintf("Port 0x%x out of range", *port))
		}
		cport = uint16(*port)
	}
	table, err := chip.Table().Bind(cfg)
	if err != nil {
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}

	var ports pnp.Ports
	var rec *portio.Recorder
	if *dryRun {
		rec = portio.NewRecorder()
		rec.Window(cport, map[uint8]uint8{
			pnp.RegChipIDHigh: uint8(chip.ID() >> 8),
			pnp.RegChipIDLow:  uint8(chip.ID()),
		})
		ports = rec
	} else {
		dev, err := portio.Open()
		if err != nil {
			log.Fatal(err)
		}
		ports = dev
	}
	cs := pnp.NewConfigSpace(ports, cport, chip.Gate(cport))
	if *probe {
		id, err := pnp.Probe(cs)
		if err != nil {
			log.Fatalf("probe: %v", err)
		}
		if id != chip.ID() {
			log.Fatalf("probe: found chip ID 0x%04x at 0x%x, expected 0x%04x", id, cport, chip.ID())
		}
		log.Printf("%s: chip ID 0x%04x at 0x%x\n", chip.Name(), id, cport)
	}

	tree := pnp.NewTree(chip.Name(), cport)
	d := &pnp.Driver{
		Config: cs,
		Alloc:  pnp.Fixed{},
		Tree:   tree,
		Parent: tree.Root,
		Init: chip.Initializers(pnp.Collaborators{
			Ports:    ports,
			Keyboard: keyboard{},
			Board:    cfg,
		}),
	}
	devs, err := d.Run(table)
	if err != nil {
		// Individual functions failing does not stop the others.
		log.Printf("%v\n", err)
	}
	log.Printf("%s: %d of %d functions enabled\n", chip.Name(), len(devs), table.Len())
	if rec != nil {
		writeTrace(os.Stdout, rec, term.IsTerminal(int(os.Stdout.Fd())))
	}
	if len(*output) != 0 {
		out, err := os.Create(*output)
		if err != nil {
			Error(fmt.Sprintf("Failed to create %s: %v", *output, err))
		}
		defer out.Close()
		pnp.Generate(out, tree.Root)
	}
}

// keyboard reports the keyboard controller; the PS/2 driver
// initialises it once the OS loads.
type keyboard struct{}

func (keyboard) Init(data, cmd uint16) {
	log.Printf("KBC: data port 0x%04x, command port 0x%04x\n", data, cmd)
}

// writeTrace prints the recorded port accesses, with a heading
// when the output is a terminal.
func writeTrace(out io.Writer, rec *portio.Recorder, heading bool) {
	if heading {
		fmt.Fprintf(out, "%-5s %-6s    %s\n", "op", "port", "value")
	}
	for _, o := range rec.Ops {
		fmt.Fprintf(out, "%v\n", o)
	}
}

// fileExists returns true if the file currently exists.
func fileExists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

// Error prints an error message to stderr and prints the usage.
func Error(msg string) {
	fmt.Fprintf(os.Stderr, "%s\n", msg)
	Usage()
}

// Usage prints the usage of the command.
func Usage() {
	fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "%s [ flags ] input-argument\n", os.Args[0])
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "Available chips are:\n")
	for _, c := range pnp.Chips() {
		fmt.Fprintf(os.Stderr, "%s\n", c)
	}
	fmt.Fprintf(os.Stderr, "Available readers are:\n")
	for _, r := range pnp.Readers() {
		fmt.Fprintf(os.Stderr, "%s\n", r)
	}
	os.Exit(1)
}
