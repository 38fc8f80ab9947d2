//go:build rp2040

package main

import (
	"envlogger-go/internal/hw"
	"envlogger-go/internal/platform/rp2"
	"envlogger-go/internal/setups"
)

func board() (hw.Board, hw.Plan) { return rp2.Pico, setups.Pico }
