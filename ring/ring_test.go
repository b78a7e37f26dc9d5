package ring_test

import (
	"testing"

	"github.com/cr1901/AT2XT/ring"
)

func TestRingFIFOOrder(t *testing.T) {
	var r ring.Ring
	if err := r.Put(1); err != nil {
		t.Fatalf("Put(1): %v", err)
	}
	if err := r.Put(2); err != nil {
		t.Fatalf("Put(2): %v", err)
	}
	if v, ok := r.Take(); !ok || v != 1 {
		t.Fatalf("Take() = %d, %v, want 1, true", v, ok)
	}
	if v, ok := r.Take(); !ok || v != 2 {
		t.Fatalf("Take() = %d, %v, want 2, true", v, ok)
	}
	if _, ok := r.Take(); ok {
		t.Fatalf("Take() on empty ring: ok = true")
	}
}

func TestRingFullAtCapacity(t *testing.T) {
	var r ring.Ring
	for i := 0; i < ring.Capacity; i++ {
		if err := r.Put(uint16(i)); err != nil {
			t.Fatalf("Put(%d): %v", i, err)
		}
	}
	if err := r.Put(0xffff); err != ring.ErrFull {
		t.Fatalf("Put on full ring: err = %v, want ErrFull", err)
	}
}

func TestRingIsEmpty(t *testing.T) {
	var r ring.Ring
	if !r.IsEmpty() {
		t.Fatalf("IsEmpty() = false on a fresh ring")
	}
	_ = r.Put(1)
	if r.IsEmpty() {
		t.Fatalf("IsEmpty() = true after a Put")
	}
}

func TestRingFlush(t *testing.T) {
	var r ring.Ring
	_ = r.Put(1)
	_ = r.Put(2)
	r.Flush()
	if !r.IsEmpty() {
		t.Fatalf("IsEmpty() = false after Flush")
	}
	if _, ok := r.Take(); ok {
		t.Fatalf("Take() after Flush: ok = true")
	}
}
