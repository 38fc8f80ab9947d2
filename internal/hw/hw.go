// Package hw is the seam between the board-independent bring-up/acquisition
// code and a concrete hardware binding. A binding hands out its peripherals
// once; everything after that is expressed in terms of the interfaces here.
package hw

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"envlogger-go/errcode"

	"tinygo.org/x/drivers"
)

// Board is a hardware binding. Take transfers ownership of every peripheral
// to the caller and may succeed at most once per process.
type Board interface {
	Name() string
	Take() (Peripherals, error)
}

// Peripherals is the capability set a binding offers to bring-up.
type Peripherals interface {
	// ConfigureClock puts the system clock in its boot/default configuration.
	ConfigureClock() error
	// Watchdogs lists every independent watchdog on the device.
	Watchdogs() []Watchdog
	OpenSerial(p UARTPlan) (io.Writer, error)
	OpenBus(p I2CPlan) (drivers.I2C, error)
	NewTimer() Timer
	// Delay is the blocking delay source handed to the sensor driver.
	Delay() Delayer
}

// Watchdog is one independent watchdog instance.
type Watchdog interface {
	Name() string
	Disable()
	Enabled() bool
}

// Timer is a countdown. Start arms it with a period; Wait blocks until the
// current interval expires and re-arms for the next one.
type Timer interface {
	Start(period time.Duration)
	Wait(ctx context.Context) error
}

// Delayer blocks the caller for d.
type Delayer interface {
	Sleep(d time.Duration)
}

// TakeOnce guards a binding's Take.
type TakeOnce struct{ taken atomic.Bool }

// Claim returns errcode.AlreadyTaken on every call after the first.
func (t *TakeOnce) Claim() error {
	if !t.taken.CompareAndSwap(false, true) {
		return errcode.AlreadyTaken
	}
	return nil
}
