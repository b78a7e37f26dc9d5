// at2xt translates an AT/PS2 keyboard's scan codes to IBM PC/XT scan
// codes, driving real GPIO pins via periph.io/x/periph/host or, with
// -simulate, a bench rig with no hardware attached.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"os/signal"

	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"

	"github.com/cr1901/AT2XT/devices/monitor"
	"github.com/cr1901/AT2XT/pinset"
	"github.com/cr1901/AT2XT/simkbd"
	"github.com/cr1901/AT2XT/translator"
)

func mainImpl() error {
	verbose := flag.Bool("v", false, "verbose mode")
	simulate := flag.Bool("simulate", false, "run against an in-process bench rig instead of real GPIO pins")
	monitorFlag := flag.Bool("monitor", false, "render translated keystrokes and LED state to the terminal")

	atClkName := flag.String("at-clk", "GPIO2", "AT_CLK pin name")
	xtSenseName := flag.String("xt-sense", "GPIO3", "XT_SENSE pin name")
	xtClkName := flag.String("xt-clk", "GPIO4", "XT_CLK pin name")
	xtDataName := flag.String("xt-data", "GPIO5", "XT_DATA pin name")
	atDataName := flag.String("at-data", "GPIO6", "AT_DATA pin name")

	flag.Parse()
	if !*verbose {
		log.SetOutput(ioutil.Discard)
	}
	log.SetFlags(log.Lmicroseconds)
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}

	var opts []translator.Option
	if *monitorFlag {
		opts = append(opts, translator.WithObserver(monitor.New()))
	}

	var bus *pinset.Bus
	if *simulate {
		rig := simkbd.NewRig()
		bus = rig.Bus
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go rig.Host.Run(ctx)
		go func() {
			for {
				if _, err := rig.Keyboard.ServeHostWrite(ctx); err != nil {
					return
				}
			}
		}()
		fmt.Println("at2xt: simulating; no real keyboard or host is attached")
	} else {
		if _, err := host.Init(); err != nil {
			return err
		}
		b, err := nativeBus(*atClkName, *xtSenseName, *xtClkName, *xtDataName, *atDataName)
		if err != nil {
			return err
		}
		bus = b
	}

	tr, err := translator.New(bus, opts...)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		cancel()
	}()

	err = tr.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func nativeBus(atClk, xtSense, xtClk, xtData, atData string) (*pinset.Bus, error) {
	pAtClk := gpioreg.ByName(atClk)
	if pAtClk == nil {
		return nil, fmt.Errorf("at2xt: no such pin %q (AT_CLK)", atClk)
	}
	pXTSense := gpioreg.ByName(xtSense)
	if pXTSense == nil {
		return nil, fmt.Errorf("at2xt: no such pin %q (XT_SENSE)", xtSense)
	}
	pXTClk := gpioreg.ByName(xtClk)
	if pXTClk == nil {
		return nil, fmt.Errorf("at2xt: no such pin %q (XT_CLK)", xtClk)
	}
	pXTData := gpioreg.ByName(xtData)
	if pXTData == nil {
		return nil, fmt.Errorf("at2xt: no such pin %q (XT_DATA)", xtData)
	}
	pATData := gpioreg.ByName(atData)
	if pATData == nil {
		return nil, fmt.Errorf("at2xt: no such pin %q (AT_DATA)", atData)
	}

	return pinset.NewBus(pAtClk, pXTSense, pXTClk, pXTData, pATData), nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "at2xt: %s.\n", err)
		os.Exit(1)
	}
}
