// Package translator wires the GPIO driver, frame shifters, keycode ring
// and translation FSM into a running AT-to-XT translator.
//
// Its four files mirror spec.md §4.4-§4.7: peripherals.go is the
// peripheral cell, isr.go is the clock-line "ISR" (a goroutine blocking on
// gpio.PinIO.WaitForEdge), timer.go is the timer "ISR" and microsecond
// delay, and foreground.go is the command executor / main loop.
package translator

import (
	"sync/atomic"

	"github.com/cr1901/AT2XT/csec"
	"github.com/cr1901/AT2XT/frame"
	"github.com/cr1901/AT2XT/keyfsm"
	"github.com/cr1901/AT2XT/pinset"
	"github.com/cr1901/AT2XT/ring"
)

// Observer receives notifications of translated keyboard activity. It is
// used by cmd/at2xt's -monitor flag (devices/monitor) and is entirely
// optional; a nil Observer is never called.
type Observer interface {
	// KeySent is called after an XT byte is written to the host.
	KeySent(xt byte)
	// LedToggled is called after a new LED mask has been sent to the
	// keyboard.
	LedToggled(mask keyfsm.LedMask)
	// KeyboardReset is called when the host's XT_SENSE reset request has
	// been serviced.
	KeyboardReset()
}

// Translator holds every piece of state spec.md §3 describes: the mode
// flags, the frame shifters, the ring, the FSM, and (through
// peripheralCell) the GPIO bus.
type Translator struct {
	gate  csec.Gate
	cell  peripheralCell
	in    frame.In
	out   frame.Out
	ring  ring.Ring
	fsm   *keyfsm.Fsm
	timer timerState

	hostMode  atomic.Bool
	deviceACK atomic.Bool

	obs Observer
}

// Option configures a Translator at construction time.
type Option func(*Translator)

// WithObserver attaches an Observer that is notified of translated
// keyboard activity.
func WithObserver(obs Observer) Option {
	return func(t *Translator) { t.obs = obs }
}

// New builds a Translator over bus and applies any options. The peripheral
// cell is initialized here, inside a critical section, exactly once -
// mirroring spec.md §4.4/§4.7's main() sequence.
func New(bus *pinset.Bus, opts ...Option) (*Translator, error) {
	t := &Translator{fsm: keyfsm.New()}
	var initErr error
	t.gate.Do(func(cs *csec.Token) {
		initErr = t.cell.init(cs, bus)
	})
	if initErr != nil {
		return nil, initErr
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

func (t *Translator) notifyKeySent(xt byte) {
	if t.obs != nil {
		t.obs.KeySent(xt)
	}
}

func (t *Translator) notifyLedToggled(mask keyfsm.LedMask) {
	if t.obs != nil {
		t.obs.LedToggled(mask)
	}
}

func (t *Translator) notifyKeyboardReset() {
	if t.obs != nil {
		t.obs.KeyboardReset()
	}
}
