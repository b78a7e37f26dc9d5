// Package csec provides a mutex-backed critical-section token.
//
// The original MSP430 firmware proved, at compile time, that interrupts
// were masked before a shared cell could be touched by passing around a
// CriticalSectionToken that only critical_section() could construct. Go
// cannot mask goroutine scheduling, so Token instead proves that the caller
// went through Do and therefore holds the associated Gate's lock. It is a
// weaker guarantee than the original's, but it keeps the same shape: every
// accessor of a cell shared between the clock-edge goroutine and the
// foreground goroutine takes a *Token instead of locking internally.
package csec

import "sync"

// Gate guards access to cells shared between the clock-edge goroutine and
// the foreground goroutine.
type Gate struct {
	mu sync.Mutex
}

// Token proves the holder is running inside a Do call on the Gate that
// produced it.
type Token struct {
	_ struct{}
}

// Do runs f with the Gate held, handing it a Token. f must not call Do
// again on the same Gate; critical sections do not nest.
func (g *Gate) Do(f func(cs *Token)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	f(&Token{})
}
