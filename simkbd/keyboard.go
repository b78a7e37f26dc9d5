package simkbd

import (
	"context"
	"math/bits"
	"time"

	"periph.io/x/periph/conn/gpio"
)

// Keyboard simulates a physical AT keyboard's side of AT_CLK/AT_DATA: it
// clocks out scan codes on SendKey, and serves host-to-device writes
// (SET_LEDS, RESET) on ServeHostWrite, mirroring spec.md §4.1/§6's 11-bit
// frame and handshake in both directions.
type Keyboard struct {
	atClk, atData *Wire
	bitPeriod     time.Duration
}

// NewKeyboard returns a Keyboard driving atClk/atData, using a 40µs bit
// period (a 25kHz clock).
func NewKeyboard(atClk, atData *Wire) *Keyboard {
	return &Keyboard{atClk: atClk, atData: atData, bitPeriod: 40 * time.Microsecond}
}

// SendKey clocks a raw AT scan code out: start bit, 8 data bits LSB-first,
// odd parity, stop bit.
func (k *Keyboard) SendKey(ctx context.Context, b byte) error {
	if !k.waitIdle(ctx) {
		return ctx.Err()
	}

	bitsOut := make([]bool, 0, 11)
	bitsOut = append(bitsOut, false) // start
	for i := 0; i < 8; i++ {
		bitsOut = append(bitsOut, (b>>uint(i))&1 == 1)
	}
	bitsOut = append(bitsOut, bits.OnesCount8(b)%2 == 0) // odd parity
	bitsOut = append(bitsOut, true)                      // stop

	for _, bit := range bitsOut {
		if !k.waitIdle(ctx) {
			return ctx.Err()
		}
		k.atData.Drive(levelOf(bit))
		time.Sleep(k.bitPeriod / 2)
		k.atClk.Drive(gpio.Low)
		time.Sleep(k.bitPeriod / 2)
		k.atClk.Drive(gpio.High)
	}
	k.atData.Drive(gpio.High)
	return nil
}

// ServeHostWrite waits for the translator to signal a host-to-device
// write (AT_CLK pulled low, then released while AT_DATA is held low),
// then drives 11 clock pulses: 8 data bits sampled from AT_DATA, one
// each for the parity and stop bits, and an ACK pulse with AT_DATA
// pulled low, per spec.md §4.7's sendByteToKeyboard.
func (k *Keyboard) ServeHostWrite(ctx context.Context) (byte, error) {
	if !k.atClk.WaitForLevel(ctx, gpio.Low) {
		return 0, ctx.Err()
	}
	if !k.atClk.WaitForLevel(ctx, gpio.High) {
		return 0, ctx.Err()
	}

	var b byte
	for i := 0; i < 8; i++ {
		time.Sleep(k.bitPeriod / 2)
		k.atClk.Drive(gpio.Low)
		// The translator updates AT_DATA in response to this same falling
		// edge, from its own goroutine; give it a moment to run before
		// sampling, the simulated equivalent of the data being settled
		// before the keyboard reads it.
		time.Sleep(k.bitPeriod / 4)
		if k.atData.Level() == gpio.High {
			b |= 1 << uint(i)
		}
		time.Sleep(k.bitPeriod / 4)
		k.atClk.Drive(gpio.High)
	}

	// Parity bit: captured by the real handshake but not checked on
	// either side (spec.md §4.1/§9), so just clock it through.
	time.Sleep(k.bitPeriod / 2)
	k.atClk.Drive(gpio.Low)
	time.Sleep(k.bitPeriod / 2)
	k.atClk.Drive(gpio.High)

	// Stop bit: clocked through the same way.
	time.Sleep(k.bitPeriod / 2)
	k.atClk.Drive(gpio.Low)
	time.Sleep(k.bitPeriod / 2)
	k.atClk.Drive(gpio.High)

	time.Sleep(k.bitPeriod / 2)
	k.atData.Drive(gpio.Low)
	k.atClk.Drive(gpio.Low)
	time.Sleep(k.bitPeriod / 2)
	k.atClk.Drive(gpio.High)
	k.atData.Drive(gpio.High)

	return b, nil
}

// waitIdle blocks until both AT_CLK and AT_DATA read high (nobody is
// inhibiting or mid-frame), event-driven rather than polled so it can't
// miss a pulse narrower than a poll tick.
func (k *Keyboard) waitIdle(ctx context.Context) bool {
	for {
		if !k.atClk.WaitForLevel(ctx, gpio.High) {
			return false
		}
		if !k.atData.WaitForLevel(ctx, gpio.High) {
			return false
		}
		if k.atClk.Level() == gpio.High && k.atData.Level() == gpio.High {
			return true
		}
	}
}

func levelOf(b bool) gpio.Level {
	if b {
		return gpio.High
	}
	return gpio.Low
}
