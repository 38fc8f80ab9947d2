// envlogger-sim runs bring-up and the acquisition loop against the emulated
// board, printing the report stream on stdout. The simulated climate drifts
// a little on every read.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"envlogger-go/internal/acquire"
	"envlogger-go/internal/bringup"
	"envlogger-go/internal/config"
	"envlogger-go/internal/hw"
	"envlogger-go/internal/logging"
	"envlogger-go/internal/platform/sim"
	"envlogger-go/internal/setups"

	"tinygo.org/x/drivers"
)

const appName = "envlogger-sim"

func main() {
	cfg, err := config.LoadFromEnv(setups.Sim)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stderr, cfg, appName)
	slog.SetDefault(logger)
	logger.Info("starting", "period", cfg.Plan.Period, "on_read_error", string(cfg.OnReadError))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("run failed", "err", err)
		os.Exit(1)
	}
	logger.Info("shutting down")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	b := sim.New(sim.Options{Out: os.Stdout})
	h, err := bringup.Run(ctx, b, cfg.Plan, logger)
	if err != nil {
		return err
	}

	sensor := b.Sensor()
	construct := acquire.AHT20()
	l := &acquire.Loop{
		Handles: h,
		Period:  cfg.Plan.Period,
		Construct: func(bus drivers.I2C, d hw.Delayer) (acquire.Sensor, error) {
			s, err := construct(bus, d)
			if err != nil {
				return nil, err
			}
			return &drifting{Sensor: s, sim: sensor, c: 21.5, rh: 40}, nil
		},
		OnReadError: policy(cfg.OnReadError),
		Log:         logger,
	}
	return l.Run(ctx)
}

// drifting nudges the emulated climate after each read.
type drifting struct {
	acquire.Sensor
	sim   *sim.AHT20
	c, rh float32
	n     int
}

func (d *drifting) Read() (acquire.Reading, error) {
	r, err := d.Sensor.Read()
	d.n++
	step := float32(d.n%8) - 3.5
	d.sim.Set(d.c+step*0.2, d.rh+step*0.5)
	return r, err
}

func policy(p config.ReadErrorPolicy) acquire.Policy {
	if p == config.ReadErrorStop {
		return acquire.Stop
	}
	return acquire.ReportAndContinue
}
