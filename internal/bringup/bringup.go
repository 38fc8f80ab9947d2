// Package bringup takes a board's peripherals and puts them in a state the
// acquisition loop can rely on: clock configured, every watchdog off,
// serial and bus open, polling timer constructed.
package bringup

import (
	"context"
	"io"

	"envlogger-go/errcode"
	"envlogger-go/internal/hw"
	"envlogger-go/internal/logx"
	"envlogger-go/internal/setups"

	"tinygo.org/x/drivers"
)

// HelloLine is written to the serial output once bring-up completes.
const HelloLine = "hello !"

// Handles are the ready-to-use resources handed to the acquisition loop.
// Each is owned by exactly one consumer from here on.
type Handles struct {
	Serial io.Writer
	Bus    drivers.I2C
	Timer  hw.Timer
	Delay  hw.Delayer
}

// Run performs bring-up in a fixed order. It takes the board's peripherals,
// so it succeeds at most once per board. ctx is checked before the board is
// taken and again before the hello line; the steps themselves do not block.
func Run(ctx context.Context, b hw.Board, plan hw.Plan, log logx.Logger) (Handles, error) {
	if log == nil {
		log = logx.Discard
	}
	if err := setups.Validate(plan); err != nil {
		return Handles{}, err
	}
	if err := ctx.Err(); err != nil {
		return Handles{}, err
	}

	p, err := b.Take()
	if err != nil {
		return Handles{}, errcode.Wrap(errcode.Of(err), "bringup.take", err)
	}

	if err := p.ConfigureClock(); err != nil {
		return Handles{}, errcode.Wrap(errcode.Of(err), "bringup.clock", err)
	}

	if err := DisableWatchdogs(p.Watchdogs()); err != nil {
		return Handles{}, err
	}

	out, err := p.OpenSerial(plan.UART)
	if err != nil {
		return Handles{}, errcode.Wrap(errcode.Of(err), "bringup.serial", err)
	}

	bus, err := p.OpenBus(plan.I2C)
	if err != nil {
		return Handles{}, errcode.Wrap(errcode.Of(err), "bringup.bus", err)
	}

	h := Handles{
		Serial: out,
		Bus:    bus,
		Timer:  p.NewTimer(),
		Delay:  p.Delay(),
	}

	if err := ctx.Err(); err != nil {
		return Handles{}, err
	}
	if _, err := io.WriteString(out, HelloLine+"\n"); err != nil {
		return Handles{}, errcode.Wrap(errcode.Of(err), "bringup.hello", err)
	}
	log.Info("bring-up complete", "board", b.Name(), "bus_hz", plan.I2C.Hz, "period", plan.Period)
	return h, nil
}

// DisableWatchdogs turns off every watchdog and confirms none is left
// running. A survivor means the binding is wrong for this silicon.
func DisableWatchdogs(wds []hw.Watchdog) error {
	for _, w := range wds {
		w.Disable()
	}
	for _, w := range wds {
		if w.Enabled() {
			return &errcode.E{C: errcode.WatchdogEnabled, Op: "bringup.watchdog", Msg: w.Name()}
		}
	}
	return nil
}
