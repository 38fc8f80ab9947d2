// Package setups holds the build-time wiring for each supported board.
// Plans are plain values; nothing here touches hardware.
package setups

import (
	"time"

	"envlogger-go/errcode"
	"envlogger-go/internal/hw"
)

// DefaultPeriod is the fixed polling interval.
const DefaultPeriod = 60 * time.Second

// DefaultBusHz is the standard-mode two-wire clock.
const DefaultBusHz = 100_000

// Pico is a Raspberry Pi Pico with the sensor on i2c0 (GP4/GP5) and the
// report stream on uart0 (GP0/GP1).
var Pico = hw.Plan{
	Board:  "pico",
	I2C:    hw.I2CPlan{ID: "i2c0", SDA: 4, SCL: 5, Hz: DefaultBusHz},
	UART:   hw.UARTPlan{ID: "uart0", TX: 0, RX: 1, Baud: 115200},
	Period: DefaultPeriod,
}

// ESP32C3 is the reference wiring: sensor on GPIO1 (SDA) / GPIO2 (SCL),
// reports on UART0's default pins (TX GPIO21, RX GPIO20).
var ESP32C3 = hw.Plan{
	Board:  "esp32c3",
	I2C:    hw.I2CPlan{ID: "i2c0", SDA: 1, SCL: 2, Hz: DefaultBusHz},
	UART:   hw.UARTPlan{ID: "uart0", TX: 21, RX: 20, Baud: 115200},
	Period: DefaultPeriod,
}

// Linux is a single-board computer: first registered I²C bus, stdout.
var Linux = hw.Plan{
	Board:  "linux",
	I2C:    hw.I2CPlan{ID: "", Hz: DefaultBusHz},
	UART:   hw.UARTPlan{ID: "", Baud: 115200},
	Period: DefaultPeriod,
}

// Sim is the in-memory board used for demos and tests.
var Sim = hw.Plan{
	Board:  "sim",
	I2C:    hw.I2CPlan{ID: "sim0", Hz: DefaultBusHz},
	UART:   hw.UARTPlan{ID: "sim0", Baud: 115200},
	Period: DefaultPeriod,
}

// Validate rejects plans bring-up cannot honour.
func Validate(p hw.Plan) error {
	switch {
	case p.Period <= 0:
		return &errcode.E{C: errcode.InvalidParams, Op: "setups.validate", Msg: "period must be positive"}
	case p.I2C.Hz == 0:
		return &errcode.E{C: errcode.InvalidParams, Op: "setups.validate", Msg: "i2c rate must be positive"}
	}
	return nil
}
