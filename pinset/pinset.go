// Package pinset is the GPIO driver layer of the AT2XT translator.
//
// It presents the same "named subset of an 8-bit port" operations the
// original MSP430 firmware's driver.rs exposed (set/clear/make-input over a
// bitmask of named wires, plus the at_idle/at_inhibit/xt_out/xt_in
// composites), but built over periph.io/x/periph/conn/gpio.PinIO so the same
// code runs against real hardware or against a simulated rig
// (see package simkbd).
package pinset

import (
	"fmt"

	"github.com/cr1901/AT2XT/csec"
	"periph.io/x/periph/conn/gpio"
)

// Lines is a bit-flag collection over the 8 named wires a single MSP430
// GPIO port held in the original firmware. Only 5 are meaningful; the rest
// exist so the mask arithmetic below reads the same as the original.
type Lines uint8

// Named wires, matching spec.md §3 bit assignments.
const (
	ATClk Lines = 1 << iota
	XTSense
	XTClk
	XTData
	ATData
)

// Derived masks used by the composite idle/inhibit helpers.
const (
	ATMask = ATClk | ATData
	XTMask = XTClk | XTData
)

// Bus groups the five lines the translator drives or samples. Each line is
// an independent periph gpio.PinIO, unlike the original's shared port
// register, but the same bitmask API is kept so the rest of the translator
// reads like the firmware it was ported from.
type Bus struct {
	pins map[Lines]gpio.PinIO

	clkIRQEnabled bool
}

// NewBus builds a Bus from the five named lines. Any pin may be nil in a
// test harness that doesn't exercise it, but the real translator requires
// all five.
func NewBus(atClk, xtSense, xtClk, xtData, atData gpio.PinIO) *Bus {
	return &Bus{
		pins: map[Lines]gpio.PinIO{
			ATClk:   atClk,
			XTSense: xtSense,
			XTClk:   xtClk,
			XTData:  xtData,
			ATData:  atData,
		},
	}
}

func (b *Bus) each(mask Lines, f func(name Lines, p gpio.PinIO) error) error {
	for _, name := range [...]Lines{ATClk, XTSense, XTClk, XTData, ATData} {
		if mask&name == 0 {
			continue
		}
		p, ok := b.pins[name]
		if !ok || p == nil {
			return fmt.Errorf("pinset: line %v not wired", name)
		}
		if err := f(name, p); err != nil {
			return err
		}
	}
	return nil
}

// Pin returns the underlying gpio.PinIO for a single named line, for
// callers (the clock-edge goroutine) that need the raw pin, e.g. to call
// WaitForEdge.
func (b *Bus) Pin(line Lines) gpio.PinIO {
	return b.pins[line]
}

// Set drives every line in mask high (an open-drain release on the AT/XT
// wires, which are pulled up externally).
func (b *Bus) Set(mask Lines) error {
	return b.each(mask, func(_ Lines, p gpio.PinIO) error {
		return p.Out(gpio.High)
	})
}

// Clear drives every line in mask low.
func (b *Bus) Clear(mask Lines) error {
	return b.each(mask, func(_ Lines, p gpio.PinIO) error {
		return p.Out(gpio.Low)
	})
}

// MakeInput releases every line in mask back to a floating/pulled-up input.
func (b *Bus) MakeInput(mask Lines) error {
	return b.each(mask, func(_ Lines, p gpio.PinIO) error {
		return p.In(gpio.PullUp, gpio.NoEdge)
	})
}

// IsAllSet reports whether every line in mask reads high.
func (b *Bus) IsAllSet(mask Lines) bool {
	all := true
	b.each(mask, func(_ Lines, p gpio.PinIO) error {
		if p.Read() != gpio.High {
			all = false
		}
		return nil
	})
	return all
}

// IsAllClear reports whether every line in mask reads low.
func (b *Bus) IsAllClear(mask Lines) bool {
	all := true
	b.each(mask, func(_ Lines, p gpio.PinIO) error {
		if p.Read() != gpio.Low {
			all = false
		}
		return nil
	})
	return all
}

// Idle puts every line into input mode and (re-)arms the AT clock edge
// notifier, matching spec.md's gpio.idle().
func (b *Bus) Idle(cs *csec.Token) error {
	if err := b.MakeInput(ATClk | XTSense | XTClk | XTData | ATData); err != nil {
		return err
	}
	b.ClearATClkIRQ(cs)
	return b.EnableATClkIRQ(cs)
}

// ATIdle releases AT_CLK and AT_DATA high then sets both as inputs, letting
// the keyboard drive the bus again. If the AT clock edge notifier is
// enabled, it is re-armed after AT_CLK goes back to input.
func (b *Bus) ATIdle(cs *csec.Token) error {
	if err := b.Set(ATMask); err != nil {
		return err
	}
	if err := b.MakeInput(ATMask); err != nil {
		return err
	}
	if b.clkIRQEnabled {
		return b.EnableATClkIRQ(cs)
	}
	return nil
}

// ATInhibit pulls AT_CLK low and releases AT_DATA high, both as outputs,
// asking the keyboard to stop transmitting.
func (b *Bus) ATInhibit(cs *csec.Token) error {
	if err := b.Clear(ATClk); err != nil {
		return err
	}
	return b.Set(ATData)
}

// XTOut switches the XT lines to driven-output mode, released high.
func (b *Bus) XTOut(cs *csec.Token) error {
	return b.Set(XTMask)
}

// XTIn switches the XT lines back to released-input mode.
func (b *Bus) XTIn(cs *csec.Token) error {
	return b.MakeInput(XTMask)
}

// ClearATClkIRQ clears any pending edge notification on AT_CLK.
//
// On real hardware this clears a latched interrupt-pending flag. periph's
// WaitForEdge already drains its edge channel as part of returning, so
// there is no separate flag to clear in this edition; the method exists so
// callers keep the same three-call shape (clear/enable/disable) the
// original firmware's ISR and idle() paths use.
func (b *Bus) ClearATClkIRQ(cs *csec.Token) {}

// DisableATClkIRQ stops the clock-edge goroutine from reacting to AT_CLK
// transitions.
func (b *Bus) DisableATClkIRQ(cs *csec.Token) {
	b.clkIRQEnabled = false
}

// EnableATClkIRQ (re-)arms falling-edge notification on AT_CLK.
func (b *Bus) EnableATClkIRQ(cs *csec.Token) error {
	p := b.pins[ATClk]
	if p == nil {
		return fmt.Errorf("pinset: AT_CLK not wired")
	}
	if err := p.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return err
	}
	b.clkIRQEnabled = true
	return nil
}

// ATClkIRQEnabled reports whether the clock-edge goroutine should currently
// be reacting to AT_CLK edges.
func (b *Bus) ATClkIRQEnabled() bool {
	return b.clkIRQEnabled
}
