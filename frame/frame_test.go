package frame_test

import (
	"testing"

	"github.com/cr1901/AT2XT/frame"
)

func TestInShiftInFillsAfter11Bits(t *testing.T) {
	var in frame.In
	for i := 0; i < 10; i++ {
		if in.ShiftIn(i%2 == 0) {
			t.Fatalf("bit %d: unexpectedly full", i)
		}
	}
	if !in.ShiftIn(true) {
		t.Fatalf("bit 10: expected full")
	}
	if !in.IsFull() {
		t.Fatalf("IsFull() = false after 11 bits")
	}
	if _, ok := in.Take(); !ok {
		t.Fatalf("Take() ok = false when full")
	}
	if in.IsFull() {
		t.Fatalf("IsFull() = true after Take")
	}
}

func TestInClearResetsPosition(t *testing.T) {
	var in frame.In
	for i := 0; i < 5; i++ {
		in.ShiftIn(true)
	}
	in.Clear()
	if in.IsFull() {
		t.Fatalf("IsFull() = true after Clear")
	}
	if _, ok := in.Take(); ok {
		t.Fatalf("Take() ok = true right after Clear")
	}
}

func TestOutPutRejectsWhileBusy(t *testing.T) {
	var out frame.Out
	out.Clear()
	if err := out.Put(0x1e); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := out.Put(0x1e); err == nil {
		t.Fatalf("Put while busy: expected error")
	}
}

func TestOutShiftOutDataParityStop(t *testing.T) {
	var out frame.Out
	out.Clear()
	if err := out.Put(0x01); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var got []bool
	for {
		bit, ok := out.ShiftOut()
		if !ok {
			break
		}
		got = append(got, bit)
	}
	if !out.IsEmpty() {
		t.Fatalf("IsEmpty() = false after fully shifting out")
	}

	// 0x01 has one set bit (odd), so the parity bit stays clear; data bits
	// are LSB-first, followed by parity then stop.
	want := []bool{true, false, false, false, false, false, false, false, false, true}
	if len(got) != len(want) {
		t.Fatalf("got %d bits, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bit %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestOutEmptyAfterClear(t *testing.T) {
	var out frame.Out
	out.Clear()
	if !out.IsEmpty() {
		t.Fatalf("IsEmpty() = false after Clear")
	}
	if _, ok := out.ShiftOut(); ok {
		t.Fatalf("ShiftOut() ok = true on an empty frame")
	}
}
