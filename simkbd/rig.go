package simkbd

import (
	"periph.io/x/periph/conn/gpio"

	"github.com/cr1901/AT2XT/pinset"
)

// Rig is a complete bench simulation: five shared Wires, a pinset.Bus
// view of them for a translator.Translator, and the fake Keyboard/Host
// peers driving the opposite end of each wire.
type Rig struct {
	ATClk, XTSense, XTClk, XTData, ATData *Wire

	Bus      *pinset.Bus
	Keyboard *Keyboard
	Host     *Host
}

// NewRig wires up a fresh Rig with every line idle (released high, except
// XT_SENSE which starts released/high - no reset pending).
func NewRig() *Rig {
	atClk := NewWire("AT_CLK", gpio.High)
	xtSense := NewWire("XT_SENSE", gpio.High)
	xtClk := NewWire("XT_CLK", gpio.High)
	xtData := NewWire("XT_DATA", gpio.High)
	atData := NewWire("AT_DATA", gpio.High)

	bus := pinset.NewBus(NewPin(atClk), NewPin(xtSense), NewPin(xtClk), NewPin(xtData), NewPin(atData))

	return &Rig{
		ATClk:   atClk,
		XTSense: xtSense,
		XTClk:   xtClk,
		XTData:  xtData,
		ATData:  atData,

		Bus:      bus,
		Keyboard: NewKeyboard(atClk, atData),
		Host:     NewHost(xtSense, xtClk, xtData),
	}
}
