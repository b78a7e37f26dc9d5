package translator

import (
	"context"
	"time"

	"github.com/cr1901/AT2XT/csec"
	"github.com/cr1901/AT2XT/pinset"
	"periph.io/x/periph/conn/gpio"
)

// clockEdgePoll bounds how long a single WaitForEdge call blocks, so the
// goroutine can notice ctx cancellation and the DisableATClkIRQ/
// EnableATClkIRQ toggle pinset.Bus tracks. A real interrupt would need
// neither: it is purely how a periph.io/x/periph-backed edge source is
// made cooperatively stoppable in Go.
const clockEdgePoll = 2 * time.Millisecond

// runClockEdgeISR is the Go stand-in for the original firmware's
// falling-edge AT_CLK interrupt handler (spec.md §4.5). It blocks on
// gpio.PinIO.WaitForEdge the way _examples/seedhammer-seedhammer's
// driver/wshat package blocks on a button pin, and runs
// onClockFallingEdge inside the translator's critical section for every
// edge it sees while the AT_CLK notifier is enabled.
//
// Like a hardware ISR, one iteration always finishes before the next
// begins: there is no nesting.
func (t *Translator) runClockEdgeISR(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var bus *pinset.Bus
		var enabled bool
		t.gate.Do(func(cs *csec.Token) {
			b, err := t.cell.get(cs)
			if err != nil {
				return
			}
			bus = b
			enabled = bus.ATClkIRQEnabled()
		})
		if bus == nil || !enabled {
			time.Sleep(clockEdgePoll)
			continue
		}

		atClk := bus.Pin(pinset.ATClk)
		if !atClk.WaitForEdge(clockEdgePoll) {
			continue
		}

		t.gate.Do(func(cs *csec.Token) {
			// The notifier may have been disabled while WaitForEdge was
			// blocked; such an edge is ignored.
			if bus.ATClkIRQEnabled() {
				t.onClockFallingEdge(cs)
			}
		})
	}
}

// onClockFallingEdge is spec.md §4.5's ISR body: branch on host mode, shift
// one bit, and complete a frame (receive branch) or drive one bit / detect
// the keyboard's ACK pulse (transmit branch).
func (t *Translator) onClockFallingEdge(cs *csec.Token) {
	bus, err := t.cell.get(cs)
	if err != nil {
		return
	}

	if t.hostMode.Load() {
		t.onClockFallingEdgeTransmit(cs, bus)
	} else {
		t.onClockFallingEdgeReceive(cs, bus)
	}
	bus.ClearATClkIRQ(cs)
}

func (t *Translator) onClockFallingEdgeReceive(cs *csec.Token, bus *pinset.Bus) {
	bit := bus.Pin(pinset.ATData).Read() == gpio.High
	full := t.in.ShiftIn(bit)
	if !full {
		return
	}

	bus.ATInhibit(cs)
	if word, ok := t.in.Take(); ok {
		// A full ring silently drops the frame, matching spec.md §4.3/§7.
		_ = t.ring.Put(word)
	}
	t.in.Clear()
	bus.ATIdle(cs)
}

func (t *Translator) onClockFallingEdgeTransmit(cs *csec.Token, bus *pinset.Bus) {
	if bit, ok := t.out.ShiftOut(); ok {
		level := gpio.Low
		if bit {
			level = gpio.High
		}
		bus.Pin(pinset.ATData).Out(level)
		if t.out.IsEmpty() {
			bus.ATIdle(cs)
		}
		return
	}

	// Frame fully shifted out; waiting for the keyboard's ACK pulse.
	if bus.Pin(pinset.ATData).Read() == gpio.Low {
		t.deviceACK.Store(true)
		t.out.Clear()
	}
}
