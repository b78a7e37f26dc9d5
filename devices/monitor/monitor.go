// Package monitor implements a translator.Observer that renders translated
// keystrokes, LED state, and resets to the terminal.
//
// It is adapted from periph-extra's devices/screen, which renders a 1D LED
// strip to the console with ANSI color blocks written through
// github.com/mattn/go-colorable using github.com/maruel/ansi256's palette;
// here the same two libraries render keyboard activity instead of pixels.
package monitor

import (
	"fmt"
	"image/color"
	"io"
	"sync"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"

	"github.com/cr1901/AT2XT/keyfsm"
	"github.com/cr1901/AT2XT/translator"
)

var (
	colorKeySent = color.NRGBA{R: 0, G: 200, B: 0, A: 255}
	colorLedOn   = color.NRGBA{R: 220, G: 180, B: 0, A: 255}
	colorLedOff  = color.NRGBA{R: 60, G: 60, B: 60, A: 255}
	colorReset   = color.NRGBA{R: 200, G: 0, B: 0, A: 255}
)

// Dev is a terminal keystroke/LED visualizer.
type Dev struct {
	mu sync.Mutex
	w  io.Writer
}

// New returns a Dev that writes to the console.
func New() *Dev {
	return &Dev{w: colorable.NewColorableStdout()}
}

// KeySent implements translator.Observer.
func (d *Dev) KeySent(xt byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.w, "%s\033[0m xt=%#02x\n", ansi256.Default.Block(colorKeySent), xt)
}

// LedToggled implements translator.Observer.
func (d *Dev) LedToggled(mask keyfsm.LedMask) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.w, "%s%s%s\033[0m scroll/num/caps\n",
		ledBlock(mask&keyfsm.Scroll != 0),
		ledBlock(mask&keyfsm.Num != 0),
		ledBlock(mask&keyfsm.Caps != 0))
}

// KeyboardReset implements translator.Observer.
func (d *Dev) KeyboardReset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.w, "%s\033[0m reset\n", ansi256.Default.Block(colorReset))
}

func ledBlock(on bool) string {
	c := colorLedOff
	if on {
		c = colorLedOn
	}
	return ansi256.Default.Block(c)
}

var _ translator.Observer = (*Dev)(nil)
