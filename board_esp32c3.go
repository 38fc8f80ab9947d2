//go:build esp32c3

package main

import (
	"envlogger-go/internal/hw"
	"envlogger-go/internal/platform/esp32c3"
	"envlogger-go/internal/setups"
)

func board() (hw.Board, hw.Plan) { return esp32c3.DevKit, setups.ESP32C3 }
