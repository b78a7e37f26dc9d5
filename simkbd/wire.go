package simkbd

import (
	"context"
	"sync"

	"periph.io/x/periph/conn/gpio"
)

// Wire is a shared, externally-pulled-up signal line: both a Pin (the
// translator's side, via pinset.Bus) and a fake peer (Keyboard or Host)
// read and drive the same level, the way a real AT_CLK/AT_DATA/XT_CLK/
// XT_DATA/XT_SENSE trace is a single node on the bench.
//
// Two separate notification channels exist because the Pin side and the
// peer side have different notions of "a change happened": Pin.WaitForEdge
// only fires for the gpio.Edge mode the translator itself configured (it
// wouldn't see its own writes as relevant otherwise), while the fake
// keyboard/host must react to every transition the translator makes
// regardless of what edge mode the translator happens to have armed.
// Polling the level on a fixed tick instead would race against pulses
// narrower than the tick.
type Wire struct {
	mu        sync.Mutex
	name      string
	level     gpio.Level
	pull      gpio.Pull
	edge      gpio.Edge
	notify    chan struct{}
	anyNotify chan struct{}
}

// NewWire returns a Wire initialized to level, with an empty edge
// subscription.
func NewWire(name string, level gpio.Level) *Wire {
	return &Wire{name: name, level: level, notify: make(chan struct{}), anyNotify: make(chan struct{})}
}

// Level reports the wire's current level.
func (w *Wire) Level() gpio.Level {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.level
}

// Drive sets the wire's level, waking any Pin.WaitForEdge call waiting on
// a transition the configured edge mode cares about, and any peer
// blocked in NextChange/WaitForLevel.
func (w *Wire) Drive(l gpio.Level) {
	w.mu.Lock()
	prev := w.level
	w.level = l
	var wake, wakeAny chan struct{}
	if prev != l {
		wakeAny = w.anyNotify
		w.anyNotify = make(chan struct{})
		if w.qualifies(prev, l) {
			wake = w.notify
			w.notify = make(chan struct{})
		}
	}
	w.mu.Unlock()
	if wakeAny != nil {
		close(wakeAny)
	}
	if wake != nil {
		close(wake)
	}
}

// NextChange blocks until the wire's level changes, returning the new
// level, or returns false if ctx is done first.
func (w *Wire) NextChange(ctx context.Context) (gpio.Level, bool) {
	w.mu.Lock()
	ch := w.anyNotify
	w.mu.Unlock()
	select {
	case <-ch:
		return w.Level(), true
	case <-ctx.Done():
		return 0, false
	}
}

// WaitForLevel blocks until the wire reads l, or returns false if ctx is
// done first.
func (w *Wire) WaitForLevel(ctx context.Context, l gpio.Level) bool {
	if w.Level() == l {
		return true
	}
	for {
		lvl, ok := w.NextChange(ctx)
		if !ok {
			return false
		}
		if lvl == l {
			return true
		}
	}
}

// WaitForFallingEdge blocks until the wire transitions from High to Low,
// or returns false if ctx is done first.
//
// prev and the channel waited on are read together under one lock
// acquisition, so a transition landing between calls is never missed:
// it either already shows up in prev/ch, or it closes the exact channel
// being waited on.
func (w *Wire) WaitForFallingEdge(ctx context.Context) bool {
	w.mu.Lock()
	prev := w.level
	ch := w.anyNotify
	w.mu.Unlock()

	for {
		select {
		case <-ch:
		case <-ctx.Done():
			return false
		}

		w.mu.Lock()
		lvl := w.level
		ch = w.anyNotify
		w.mu.Unlock()

		if prev == gpio.High && lvl == gpio.Low {
			return true
		}
		prev = lvl
	}
}

func (w *Wire) qualifies(prev, next gpio.Level) bool {
	switch w.edge {
	case gpio.FallingEdge:
		return prev == gpio.High && next == gpio.Low
	case gpio.RisingEdge:
		return prev == gpio.Low && next == gpio.High
	case gpio.BothEdges:
		return true
	default:
		return false
	}
}

func (w *Wire) configure(pull gpio.Pull, edge gpio.Edge) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pull = pull
	w.edge = edge
}

func (w *Wire) configured() (gpio.Pull, gpio.Edge) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pull, w.edge
}

func (w *Wire) waitChan() chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.notify
}
