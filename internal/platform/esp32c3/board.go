//go:build esp32c3

// Package esp32c3 binds bring-up to the ESP32-C3. The chip leaves reset
// with four independent watchdogs running; all are write-protected, so each
// disable is an unlock, a write, and a relock.
package esp32c3

import (
	"device/esp"
	"io"
	"machine"
	"time"

	"envlogger-go/errcode"
	"envlogger-go/internal/hw"
	"envlogger-go/internal/timer"

	"tinygo.org/x/drivers"
)

// Board is the ESP32-C3 binding.
type Board struct{ once hw.TakeOnce }

// DevKit is the one board this image runs on.
var DevKit = &Board{}

func (*Board) Name() string { return "esp32c3" }

func (b *Board) Take() (hw.Peripherals, error) {
	if err := b.once.Claim(); err != nil {
		return nil, err
	}
	return peripherals{}, nil
}

type peripherals struct{}

// The runtime selects the PLL-derived CPU clock before main runs.
func (peripherals) ConfigureClock() error { return nil }

func (peripherals) Watchdogs() []hw.Watchdog {
	return []hw.Watchdog{
		mwdt{name: "rtc_wdt", protect: &esp.RTC_CNTL.RTC_WDTWPROTECT, config: &esp.RTC_CNTL.RTC_WDTCONFIG0},
		mwdt{name: "timg0_wdt", protect: &esp.TIMG0.WDTWPROTECT, config: &esp.TIMG0.WDTCONFIG0},
		mwdt{name: "timg1_wdt", protect: &esp.TIMG1.WDTWPROTECT, config: &esp.TIMG1.WDTCONFIG0},
		superWDT{protect: &esp.RTC_CNTL.RTC_SWD_WPROTECT, conf: &esp.RTC_CNTL.RTC_SWD_CONF},
	}
}

func (peripherals) OpenSerial(u hw.UARTPlan) (io.Writer, error) {
	if u.ID != "uart0" {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "esp32c3.serial", Msg: "unknown uart " + u.ID}
	}
	port := machine.UART0
	if err := port.Configure(machine.UARTConfig{
		BaudRate: u.Baud,
		TX:       machine.Pin(u.TX),
		RX:       machine.Pin(u.RX),
	}); err != nil {
		return nil, err
	}
	return port, nil
}

func (peripherals) OpenBus(p hw.I2CPlan) (drivers.I2C, error) {
	if p.ID != "i2c0" {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "esp32c3.bus", Msg: "unknown i2c " + p.ID}
	}
	bus := machine.I2C0
	if err := bus.Configure(machine.I2CConfig{
		SDA:       machine.Pin(p.SDA),
		SCL:       machine.Pin(p.SCL),
		Frequency: p.Hz,
	}); err != nil {
		return nil, err
	}
	return bus, nil
}

func (peripherals) NewTimer() hw.Timer { return timer.NewCountdown() }

func (peripherals) Delay() hw.Delayer { return delay{} }

type delay struct{}

func (delay) Sleep(d time.Duration) { time.Sleep(d) }
