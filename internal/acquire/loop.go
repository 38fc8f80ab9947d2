// Package acquire runs the acquisition loop: construct the sensor driver
// once, then either park in the error halt or cycle read, report, wait.
package acquire

import (
	"context"
	"sync/atomic"
	"time"

	"envlogger-go/drivers/aht20"
	"envlogger-go/errcode"
	"envlogger-go/internal/bringup"
	"envlogger-go/internal/hw"
	"envlogger-go/internal/logx"

	"tinygo.org/x/drivers"
)

// Sensor is the read half of the driver contract.
type Sensor interface {
	Read() (Reading, error)
}

// Constructor is the fallible construction half of the driver contract.
type Constructor func(bus drivers.I2C, delay hw.Delayer) (Sensor, error)

// AHT20 constructs the AHT20 driver.
func AHT20(cfgs ...aht20.Config) Constructor {
	return func(bus drivers.I2C, delay hw.Delayer) (Sensor, error) {
		dev, err := aht20.New(bus, delay, cfgs...)
		if err != nil {
			return nil, err
		}
		return aht20Sensor{dev}, nil
	}
}

type aht20Sensor struct{ dev *aht20.Device }

func (s aht20Sensor) Read() (Reading, error) {
	h, t, err := s.dev.Read()
	if err != nil {
		return Reading{}, err
	}
	return Reading{Humidity: h.RH(), Temperature: t.Celsius()}, nil
}

// Policy decides what a failed read does to the loop.
type Policy int

const (
	// ReportAndContinue writes an error line and keeps polling.
	ReportAndContinue Policy = iota
	// Stop ends Run with the read error; telemetry ceases.
	Stop
)

// Loop is the acquisition loop. Run may be called once.
type Loop struct {
	Handles     bringup.Handles
	Period      time.Duration
	Construct   Constructor
	OnReadError Policy
	Log         logx.Logger

	started atomic.Bool
}

// Run never returns while things are healthy. It returns ctx's error when
// ctx ends, a timer or serial failure, or (with Stop) the first read error.
func (l *Loop) Run(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return errcode.AlreadyTaken
	}
	log := l.Log
	if log == nil {
		log = logx.Discard
	}
	construct := l.Construct
	if construct == nil {
		construct = AHT20()
	}

	sensor, err := construct(l.Handles.Bus, l.Handles.Delay)
	if err != nil {
		log.Error("sensor construction failed; halting telemetry", "err", err)
		if werr := writeLine(l.Handles.Serial, FormatError(err)); werr != nil {
			return errcode.Wrap(errcode.Of(werr), "acquire.report", werr)
		}
		return l.halt(ctx)
	}
	return l.poll(ctx, sensor, log)
}

// halt keeps the device alive on the timer and does nothing else.
func (l *Loop) halt(ctx context.Context) error {
	t := l.Handles.Timer
	t.Start(l.Period)
	for {
		if err := t.Wait(ctx); err != nil {
			return err
		}
	}
}

func (l *Loop) poll(ctx context.Context, s Sensor, log logx.Logger) error {
	t := l.Handles.Timer
	t.Start(l.Period)

	streak := 0
	for {
		r, err := s.Read()
		var line string
		if err != nil {
			streak++
			log.Warn("sensor read failed", "err", err, "code", string(errcode.Of(err)), "streak", streak)
			if l.OnReadError == Stop {
				return errcode.Wrap(errcode.Of(err), "acquire.read", err)
			}
			line = FormatError(err)
		} else {
			if streak > 0 {
				log.Info("sensor read recovered", "after", streak)
			}
			streak = 0
			line = FormatReading(r)
		}
		if err := writeLine(l.Handles.Serial, line); err != nil {
			return errcode.Wrap(errcode.Of(err), "acquire.report", err)
		}

		if err := t.Wait(ctx); err != nil {
			return err
		}
	}
}
