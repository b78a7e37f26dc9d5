package simkbd

import (
	"errors"
	"time"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/physic"
)

// Pin adapts a Wire to gpio.PinIO, the interface pinset.Bus is built on.
type Pin struct {
	w *Wire
}

// NewPin wraps w as a gpio.PinIO.
func NewPin(w *Wire) *Pin { return &Pin{w: w} }

func (p *Pin) Name() string     { return p.w.name }
func (p *Pin) Number() int      { return -1 }
func (p *Pin) Function() string { return "" }
func (p *Pin) String() string   { return p.w.name }
func (p *Pin) Halt() error      { return nil }

func (p *Pin) In(pull gpio.Pull, edge gpio.Edge) error {
	p.w.configure(pull, edge)
	return nil
}

func (p *Pin) Read() gpio.Level {
	return p.w.Level()
}

func (p *Pin) WaitForEdge(timeout time.Duration) bool {
	ch := p.w.waitChan()
	if timeout < 0 {
		<-ch
		return true
	}
	select {
	case <-ch:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (p *Pin) Pull() gpio.Pull {
	pull, _ := p.w.configured()
	return pull
}

func (p *Pin) DefaultPull() gpio.Pull {
	return gpio.PullUp
}

func (p *Pin) Out(l gpio.Level) error {
	p.w.Drive(l)
	return nil
}

func (p *Pin) PWM(duty gpio.Duty, freq physic.Frequency) error {
	return errors.New("simkbd: PWM not supported")
}
