// Package ring implements the fixed-capacity single-producer/single-consumer
// keycode queue between the clock-edge goroutine (producer) and the
// foreground loop (consumer).
//
// It is a direct port of the original firmware's keybuffer.rs KeycodeBuffer,
// which used the portable_atomic crate to stay lock-free on an MSP430 with
// no atomic instructions wider than a byte. Go's sync/atomic typed atomics
// (atomic.Uint32, added in Go 1.19) are the idiomatic stdlib equivalent;
// no lock-free queue library appears anywhere in the retrieval pack, so this
// structure is intentionally stdlib-only.
package ring

import (
	"errors"
	"sync/atomic"
)

// Capacity is the number of in-flight frames the ring can hold.
const Capacity = 16

// ErrFull is returned by Put when the ring has Capacity entries queued
// already; the caller (the clock-edge handler) drops the frame silently.
var ErrFull = errors.New("ring: full")

// Ring is a 16-slot SPSC queue of completed 16-bit inbound frame words.
type Ring struct {
	head, tail atomic.Uint32
	contents   [Capacity]atomic.Uint32
}

// Put inserts word at the current tail slot and advances tail. It fails
// without mutating anything if the ring already holds Capacity entries.
func (r *Ring) Put(word uint16) error {
	tail := r.tail.Load()
	head := r.head.Load()
	if tail-head >= Capacity {
		return ErrFull
	}
	r.contents[tail%Capacity].Store(uint32(word))
	r.tail.Store(tail + 1)
	return nil
}

// Take removes and returns the word at the current head slot, advancing
// head. ok is false iff the ring is empty.
func (r *Ring) Take() (word uint16, ok bool) {
	head := r.head.Load()
	tail := r.tail.Load()
	if head == tail {
		return 0, false
	}
	w := r.contents[head%Capacity].Load()
	r.head.Store(head + 1)
	return uint16(w), true
}

// IsEmpty reports whether the ring currently holds no entries.
func (r *Ring) IsEmpty() bool {
	return r.head.Load() == r.tail.Load()
}

// Flush empties the ring by catching head up to tail, matching spec.md's
// "On reset, clear the buffer" behavior.
func (r *Ring) Flush() {
	r.head.Store(r.tail.Load())
}
