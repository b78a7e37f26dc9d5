package simkbd

import (
	"context"
	"sync"

	"periph.io/x/periph/conn/gpio"
)

// Host simulates the IBM PC/XT side: XT_SENSE (reset request, active low)
// plus XT_CLK/XT_DATA, which it watches to reconstruct the bytes the
// translator sends (spec.md §4.1/§6: 2 framing bits then 8 data bits,
// LSB-first).
type Host struct {
	xtSense, xtClk, xtData *Wire

	mu       sync.Mutex
	received []byte
}

// NewHost returns a Host with XT_SENSE released (no reset pending).
func NewHost(xtSense, xtClk, xtData *Wire) *Host {
	xtSense.Drive(gpio.High)
	return &Host{xtSense: xtSense, xtClk: xtClk, xtData: xtData}
}

// RequestReset pulls XT_SENSE low, asking the translator to reset the
// keyboard (spec.md §4.1/§6).
func (h *Host) RequestReset() { h.xtSense.Drive(gpio.Low) }

// ClearReset releases XT_SENSE.
func (h *Host) ClearReset() { h.xtSense.Drive(gpio.High) }

// Received returns a copy of every byte reconstructed so far.
func (h *Host) Received() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]byte, len(h.received))
	copy(out, h.received)
	return out
}

// Run watches XT_CLK/XT_DATA until ctx is canceled, appending one byte to
// Received per completed 10-bit XT frame.
func (h *Host) Run(ctx context.Context) {
	for {
		if !h.xtClk.WaitForFallingEdge(ctx) {
			return
		}
		if !h.xtClk.WaitForFallingEdge(ctx) {
			return
		}

		var b byte
		for i := 0; i < 8; i++ {
			if !h.xtClk.WaitForFallingEdge(ctx) {
				return
			}
			if h.xtData.Level() == gpio.High {
				b |= 1 << uint(i)
			}
		}

		h.mu.Lock()
		h.received = append(h.received, b)
		h.mu.Unlock()
	}
}
