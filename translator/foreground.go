package translator

import (
	"context"
	"math/bits"
	"time"

	"github.com/cr1901/AT2XT/csec"
	"github.com/cr1901/AT2XT/keyfsm"
	"github.com/cr1901/AT2XT/pinset"
	"periph.io/x/periph/conn/gpio"
)

// ringPollInterval bounds how long waitForKey sleeps between polls of the
// ring and XT_SENSE. The original firmware busy-polled with no yield at
// all, which is correct on a single core with nothing else runnable; a
// long-running Go process shares its core with the runtime and other
// goroutines, so a short sleep keeps the same "keep checking" shape spec.md
// §4.7 describes without pegging a CPU.
const ringPollInterval = 200 * time.Microsecond

// Run starts the clock-edge goroutine and then runs the foreground command
// executor forever, per spec.md §4.7's main loop. It returns when ctx is
// canceled.
func (t *Translator) Run(ctx context.Context) error {
	var err error
	t.gate.Do(func(cs *csec.Token) {
		bus, e := t.cell.get(cs)
		if e != nil {
			err = e
			return
		}
		err = bus.Idle(cs)
	})
	if err != nil {
		return err
	}

	go t.runClockEdgeISR(ctx)

	t.sendByteToKeyboard(ctx, keyfsm.Reset)

	var reply keyfsm.ProcReply = keyfsm.ReplyNothingToDo{}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		cmd, ferr := t.fsm.Run(reply)
		if ferr != nil {
			// Inconsistent: best-effort, keep waiting (spec.md §7).
			reply = keyfsm.ReplyNothingToDo{}
			continue
		}

		switch c := cmd.(type) {
		case keyfsm.CmdClearBuffer:
			t.ring.Flush()
			reply = keyfsm.ReplyClearedBuffer{}
		case keyfsm.CmdToggleLed:
			t.toggleLEDs(ctx, c.Mask)
			t.notifyLedToggled(c.Mask)
			reply = keyfsm.ReplyLedToggled{Mask: c.Mask}
		case keyfsm.CmdSendXTKey:
			t.sendByteToPC(ctx, c.Byte)
			t.notifyKeySent(c.Byte)
			reply = keyfsm.ReplySentKey{Byte: c.Byte}
		case keyfsm.CmdWaitForKey:
			reply = t.waitForKey(ctx)
		}
	}
}

// waitForKey busy-polls the ring and XT_SENSE, per spec.md §4.7.
func (t *Translator) waitForKey(ctx context.Context) keyfsm.ProcReply {
	for {
		select {
		case <-ctx.Done():
			return keyfsm.ReplyNothingToDo{}
		default:
		}

		if word, ok := t.ring.Take(); ok {
			word &^= 0x4000 | 0x0001 // clear bit 14 and stop (bit 0); start (bit 10) drops out in the byte conversion
			word >>= 2
			return keyfsm.ReplyGrabbedKey{Byte: bits.Reverse8(byte(word))}
		}

		var resetRequested bool
		t.gate.Do(func(cs *csec.Token) {
			bus, err := t.cell.get(cs)
			if err != nil {
				return
			}
			resetRequested = bus.IsAllClear(pinset.XTSense)
		})
		if resetRequested {
			t.sendByteToKeyboard(ctx, keyfsm.Reset)
			t.sendByteToPC(ctx, keyfsm.SelfTestPassed)
			t.notifyKeyboardReset()
			return keyfsm.ReplyKeyboardReset{}
		}

		time.Sleep(ringPollInterval)
	}
}

// sendByteToPC bit-bangs byte to the XT host: two framing bits (0, 1) then
// 8 data bits LSB-first, per spec.md §4.7/§6.
func (t *Translator) sendByteToPC(ctx context.Context, b byte) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		var released bool
		t.gate.Do(func(cs *csec.Token) {
			bus, err := t.cell.get(cs)
			if err != nil {
				return
			}
			released = bus.IsAllSet(pinset.XTMask)
		})
		if released {
			break
		}
		time.Sleep(ringPollInterval)
	}

	t.gate.Do(func(cs *csec.Token) {
		bus, err := t.cell.get(cs)
		if err != nil {
			return
		}
		bus.XTOut(cs)
	})

	t.sendXTBit(false)
	t.sendXTBit(true)
	v := b
	for i := 0; i < 8; i++ {
		t.sendXTBit(v&0x01 == 1)
		v >>= 1
	}

	t.gate.Do(func(cs *csec.Token) {
		bus, err := t.cell.get(cs)
		if err != nil {
			return
		}
		bus.XTIn(cs)
	})
}

// sendXTBit drives one XT clock pulse, ~55µs low per spec.md §4.7.
func (t *Translator) sendXTBit(bit bool) {
	t.gate.Do(func(cs *csec.Token) {
		bus, err := t.cell.get(cs)
		if err != nil {
			return
		}
		level := gpio.Low
		if bit {
			level = gpio.High
		}
		bus.Pin(pinset.XTData).Out(level)
		bus.Pin(pinset.XTClk).Out(gpio.Low)
	})
	t.timer.delay(55)
	t.gate.Do(func(cs *csec.Token) {
		bus, err := t.cell.get(cs)
		if err != nil {
			return
		}
		bus.Pin(pinset.XTClk).Out(gpio.High)
	})
}

// sendByteToKeyboard performs the host-to-device frame handshake, per
// spec.md §4.7: inhibit, start bit, hand off to the clock-edge goroutine,
// then wait for the keyboard's ACK pulse.
func (t *Translator) sendByteToKeyboard(ctx context.Context, b byte) {
	var bus *pinset.Bus
	t.gate.Do(func(cs *csec.Token) {
		bb, err := t.cell.get(cs)
		if err != nil {
			return
		}
		bus = bb
		_ = t.out.Put(b)
		bus.DisableATClkIRQ(cs)
	})
	if bus == nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		var clkLow bool
		t.gate.Do(func(cs *csec.Token) {
			bb, err := t.cell.get(cs)
			if err != nil {
				return
			}
			clkLow = bb.Pin(pinset.ATClk).Read() == gpio.Low
		})
		if clkLow {
			break
		}
		t.gate.Do(func(cs *csec.Token) {
			bb, err := t.cell.get(cs)
			if err != nil {
				return
			}
			bb.ATInhibit(cs)
		})
	}

	t.timer.delay(100)
	t.gate.Do(func(cs *csec.Token) {
		bus.Pin(pinset.ATData).Out(gpio.Low)
	})

	t.timer.delay(33)
	t.gate.Do(func(cs *csec.Token) {
		bus.Pin(pinset.ATClk).Out(gpio.High)
		bus.MakeInput(pinset.ATClk)
		bus.ClearATClkIRQ(cs)
		bus.EnableATClkIRQ(cs)
		t.hostMode.Store(true)
		t.deviceACK.Store(false)
	})

	for !t.deviceACK.Load() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		time.Sleep(ringPollInterval)
	}
	t.hostMode.Store(false)
}

// toggleLEDs sends SET_LEDS followed by the mask byte, with the 3ms gap
// spec.md §4.7 describes between the two.
func (t *Translator) toggleLEDs(ctx context.Context, mask keyfsm.LedMask) {
	t.sendByteToKeyboard(ctx, keyfsm.SetLEDs)
	t.timer.delay(3000)
	t.sendByteToKeyboard(ctx, byte(mask))
}
