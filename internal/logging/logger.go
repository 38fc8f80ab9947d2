// Package logging builds the slog logger used by the host runners.
package logging

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"

	"envlogger-go/internal/config"
)

// New builds the host diagnostic logger: colourised text in dev, JSON in
// prod. Diagnostics go to w (normally stderr) so they never interleave with
// the report stream.
func New(w io.Writer, cfg config.Config, appName string) *slog.Logger {
	if cfg.AppEnv == "dev" {
		h := tint.NewHandler(w, &tint.Options{
			Level:      cfg.LogLevel,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With("app", appName, "board", cfg.Plan.Board)
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})
	return slog.New(h).With(
		"app", appName,
		"board", cfg.Plan.Board,
		"env", cfg.AppEnv,
	)
}
