package translator

import (
	"errors"

	"github.com/cr1901/AT2XT/csec"
	"github.com/cr1901/AT2XT/pinset"
)

// ErrAlreadyInitialized is returned by peripheralCell.init on the second
// call, matching spec.md §4.4: the peripheral cell is set exactly once.
var ErrAlreadyInitialized = errors.New("translator: peripherals already initialized")

// ErrNotInitialized is returned by peripheralCell.get before init has run.
// spec.md §7 calls this path "defensive only," since in practice init
// always completes before the clock-edge goroutine starts.
var ErrNotInitialized = errors.New("translator: peripherals not initialized")

// peripheralCell is a lazily-initialized, once-settable holder for the GPIO
// bus, shared between the clock-edge goroutine and the foreground loop.
// It is the Go rendering of the original firmware's peripheral.rs
// At2XtPeripherals/OnceCell pair.
type peripheralCell struct {
	bus *pinset.Bus
	set bool
}

// init installs bus exactly once. Called from the translator constructor,
// before the clock-edge goroutine is started, inside a critical section
// exactly as spec.md §4.4 describes (main calling init from within a
// critical section).
func (c *peripheralCell) init(cs *csec.Token, bus *pinset.Bus) error {
	if c.set {
		return ErrAlreadyInitialized
	}
	c.bus = bus
	c.set = true
	return nil
}

// get returns the installed GPIO bus, requiring proof (a *csec.Token) that
// the caller holds the translator's critical section.
func (c *peripheralCell) get(cs *csec.Token) (*pinset.Bus, error) {
	if !c.set {
		return nil, ErrNotInitialized
	}
	return c.bus, nil
}
