// Package config loads host-runner settings from the environment. Firmware
// images do not use it; their wiring is fixed in internal/setups.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"envlogger-go/internal/hw"
)

// ReadErrorPolicy selects what the loop does when a sensor read fails.
type ReadErrorPolicy string

const (
	ReadErrorContinue ReadErrorPolicy = "continue"
	ReadErrorStop     ReadErrorPolicy = "stop"
)

type Config struct {
	AppEnv      string
	LogLevel    slog.Level
	Plan        hw.Plan
	OnReadError ReadErrorPolicy
}

// LoadFromEnv overlays the environment on base. Unset variables keep the
// base plan's values.
func LoadFromEnv(base hw.Plan) (Config, error) {
	appEnv := env("APP_ENV", "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(env("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	plan := base
	if v, ok := lookup("ENVLOGGER_I2C_BUS"); ok {
		plan.I2C.ID = v
	}
	if v, ok := lookup("ENVLOGGER_I2C_HZ"); ok {
		hz, err := strconv.ParseUint(v, 10, 32)
		if err != nil || hz == 0 {
			return Config{}, fmt.Errorf("invalid ENVLOGGER_I2C_HZ %q", v)
		}
		plan.I2C.Hz = uint32(hz)
	}
	if v, ok := lookup("ENVLOGGER_SERIAL_PORT"); ok {
		plan.UART.ID = v
	}
	if v, ok := lookup("ENVLOGGER_SERIAL_BAUD"); ok {
		baud, err := strconv.ParseUint(v, 10, 32)
		if err != nil || baud == 0 {
			return Config{}, fmt.Errorf("invalid ENVLOGGER_SERIAL_BAUD %q", v)
		}
		plan.UART.Baud = uint32(baud)
	}
	if v, ok := lookup("ENVLOGGER_PERIOD"); ok {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid ENVLOGGER_PERIOD %q", v)
		}
		plan.Period = d
	}

	policy := ReadErrorPolicy(strings.ToLower(env("ENVLOGGER_ON_READ_ERROR", string(ReadErrorContinue))))
	switch policy {
	case ReadErrorContinue, ReadErrorStop:
	default:
		return Config{}, fmt.Errorf("invalid ENVLOGGER_ON_READ_ERROR %q (allowed: continue, stop)", policy)
	}

	return Config{
		AppEnv:      appEnv,
		LogLevel:    level,
		Plan:        plan,
		OnReadError: policy,
	}, nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func env(key, def string) string {
	if v, ok := lookup(key); ok {
		return v
	}
	return def
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
