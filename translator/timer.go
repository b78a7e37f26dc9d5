package translator

import (
	"sync/atomic"
	"time"
)

// timerState is the Go rendering of spec.md §4.6's timer ISR: a one-shot
// delay in 10µs ticks, signaled back to the busy-waiting foreground loop
// through an atomic flag rather than a blocking call, so the "timer sets a
// flag, foreground spins on it" shape survives the port.
type timerState struct {
	timeout atomic.Bool
}

// delay busy-waits for approximately us microseconds, quantized to 10µs
// ticks the same way the original firmware's delay() did
// (ticks = us/10 + 1), via a single time.AfterFunc armed for ticks*10µs.
func (ts *timerState) delay(us uint32) {
	ticks := us/10 + 1
	ts.timeout.Store(false)
	t := time.AfterFunc(time.Duration(ticks)*10*time.Microsecond, func() {
		ts.timeout.Store(true)
	})
	defer t.Stop()
	for !ts.timeout.Load() {
		// Busy-spin, matching spec.md §4.7's delay(): there is no
		// scheduler yield in the original either.
	}
}
