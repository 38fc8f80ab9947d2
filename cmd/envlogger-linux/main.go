//go:build linux

// envlogger-linux runs the acquisition loop on a Linux board with the
// sensor on a /dev/i2c-* bus.
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
	"envlogger-go/internal/logging"
	"envlogger-go/internal/platform/linuxhost"
	"envlogger-go/internal/setups"
)

const appName = "envlogger-linux"

func main() {
	cfg, err := config.LoadFromEnv(setups.Linux)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stderr, cfg, appName)
	slog.SetDefault(logger)
	logger.Info("starting",
		"i2c_bus", cfg.Plan.I2C.ID,
		"i2c_hz", cfg.Plan.I2C.Hz,
		"serial", cfg.Plan.UART.ID,
		"period", cfg.Plan.Period,
		"on_read_error", string(cfg.OnReadError),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := linuxhost.New(linuxhost.Options{})
	defer b.Close()

	if err := run(ctx, b, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("run failed", "err", err)
		os.Exit(1)
	}
	logger.Info("shutting down")
}

func run(ctx context.Context, b *linuxhost.Board, cfg config.Config, logger *slog.Logger) error {
	h, err := bringup.Run(ctx, b, cfg.Plan, logger)
	if err != nil {
		return err
	}
	l := &acquire.Loop{
		Handles:     h,
		Period:      cfg.Plan.Period,
		Construct:   acquire.AHT20(),
		OnReadError: policy(cfg.OnReadError),
		Log:         logger,
	}
	return l.Run(ctx)
}

func policy(p config.ReadErrorPolicy) acquire.Policy {
	if p == config.ReadErrorStop {
		return acquire.Stop
	}
	return acquire.ReportAndContinue
}
