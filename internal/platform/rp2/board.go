//go:build rp2040

// Package rp2 binds bring-up to the RP2040: machine.I2C for the sensor bus,
// uartx for the report stream, and the single on-chip watchdog.
package rp2

import (
	"device/rp"
	"io"
	"machine"
	"time"

	"envlogger-go/errcode"
	"envlogger-go/internal/hw"
	"envlogger-go/internal/timer"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers"
)

// Board is the RP2040 binding. Use the package-level Pico value.
type Board struct{ once hw.TakeOnce }

// Pico is the one board this image runs on.
var Pico = &Board{}

func (*Board) Name() string { return "rp2040" }

func (b *Board) Take() (hw.Peripherals, error) {
	if err := b.once.Claim(); err != nil {
		return nil, err
	}
	return peripherals{}, nil
}

type peripherals struct{}

// The runtime brings the crystal oscillator and PLLs up before main; there
// is nothing left to do beyond the default configuration.
func (peripherals) ConfigureClock() error { return nil }

func (peripherals) Watchdogs() []hw.Watchdog { return []hw.Watchdog{watchdog{}} }

func (peripherals) OpenSerial(u hw.UARTPlan) (io.Writer, error) {
	var port *uartx.UART
	switch u.ID {
	case "uart0":
		port = uartx.UART0
	case "uart1":
		port = uartx.UART1
	default:
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "rp2.serial", Msg: "unknown uart " + u.ID}
	}
	if err := port.Configure(uartx.UARTConfig{
		BaudRate: u.Baud,
		TX:       machine.Pin(u.TX),
		RX:       machine.Pin(u.RX),
	}); err != nil {
		return nil, err
	}
	return port, nil
}

func (peripherals) OpenBus(p hw.I2CPlan) (drivers.I2C, error) {
	var bus *machine.I2C
	switch p.ID {
	case "i2c0":
		bus = machine.I2C0
	case "i2c1":
		bus = machine.I2C1
	default:
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "rp2.bus", Msg: "unknown i2c " + p.ID}
	}
	sda := machine.Pin(p.SDA)
	scl := machine.Pin(p.SCL)
	sda.Configure(machine.PinConfig{Mode: machine.PinI2C})
	scl.Configure(machine.PinConfig{Mode: machine.PinI2C})
	if err := bus.Configure(machine.I2CConfig{SDA: sda, SCL: scl, Frequency: p.Hz}); err != nil {
		return nil, err
	}
	return bus, nil
}

func (peripherals) NewTimer() hw.Timer { return timer.NewCountdown() }

func (peripherals) Delay() hw.Delayer { return delay{} }

type delay struct{}

func (delay) Sleep(d time.Duration) { time.Sleep(d) }

// watchdog is the RP2040's only watchdog. It is off after a cold reset
// but a bootloader may have left it running.
type watchdog struct{}

func (watchdog) Name() string  { return "watchdog" }
func (watchdog) Disable()      { rp.WATCHDOG.CTRL.ClearBits(rp.WATCHDOG_CTRL_ENABLE) }
func (watchdog) Enabled() bool { return rp.WATCHDOG.CTRL.HasBits(rp.WATCHDOG_CTRL_ENABLE) }
