//go:build !rp2040 && !esp32c3

package main

import (
	"os"

	"envlogger-go/internal/hw"
	"envlogger-go/internal/platform/sim"
	"envlogger-go/internal/setups"
)

func board() (hw.Board, hw.Plan) {
	return sim.New(sim.Options{Out: os.Stdout}), setups.Sim
}
