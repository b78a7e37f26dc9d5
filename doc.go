// Package at2xt documents the AT2XT keyboard protocol translator.
//
// AT2XT sits between an AT/PS2 keyboard and an IBM PC/XT host. It receives
// AT scan codes from the keyboard, translates them to XT scan codes through
// a fixed lookup table, tracks break codes, extended-prefix sequences and
// the Pause key sequence, manages keyboard LED state, and answers XT-side
// reset requests.
//
// The translator is organized the way the original MSP430 firmware was:
//
//   - pinset: the GPIO line abstraction (AT_CLK, AT_DATA, XT_CLK, XT_DATA,
//     XT_SENSE) and the composite idle/inhibit helpers built on top of it.
//   - csec: a mutex-backed critical-section token proving a shared cell is
//     not being touched from two places at once.
//   - frame: the InFrame/OutFrame bit-serial shift registers.
//   - ring: the fixed-capacity keycode ring between the clock-edge
//     goroutine and the foreground loop.
//   - keyfsm: the AT-to-XT translation state machine and scan code table.
//   - translator: wires all of the above into a running translator, driven
//     by a goroutine per periph.io/x/periph/conn/gpio.PinIO edge source.
//   - simkbd: a fake keyboard and host sharing event-driven gpio.PinIO
//     wires, used for running the translator without hardware.
//   - devices/monitor: an optional terminal visualizer of translated keys.
//   - cmd/at2xt: the command-line entry point.
package at2xt
