// Package simkbd is a bench simulation rig for the AT2XT translator: it
// gives a Translator's pinset.Bus five shared "wires" to drive and read,
// plus a fake Keyboard and fake Host that drive the opposite end of each
// wire in the same open-collector, clock-pulse style an AT keyboard and
// an IBM PC/XT host actually do.
//
// The fakes here are hand-rolled, not built on a generic GPIO test
// double: periph-extra's own driver_test.go takes the same approach for
// its FTDI handle (a struct implementing the production interface with
// plain fields, fed directly by the test), and that pattern carries over
// more predictably here than a general-purpose pin double would, since
// the whole point of the rig is to reproduce AT/XT's particular
// clock-then-sample handshake.
package simkbd
