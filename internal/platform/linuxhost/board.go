//go:build linux

// Package linuxhost binds bring-up to a Linux single-board computer: the
// sensor sits on a /dev/i2c-* bus reached through periph, and reports go to
// a tty or to standard output.
package linuxhost

import (
	"io"
	"os"
	"sync"
	"time"

	"envlogger-go/errcode"
	"envlogger-go/internal/hw"
	"envlogger-go/internal/timer"

	"github.com/jacobsa/go-serial/serial"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
	"tinygo.org/x/drivers"
)

// Options overrides how the board reaches the host. Zero values use periph
// and the real serial ports.
type Options struct {
	Init       func() error
	OpenBus    func(name string) (i2c.BusCloser, error)
	OpenSerial func(serial.OpenOptions) (io.ReadWriteCloser, error)
	Stdout     io.Writer
}

// Board is the Linux binding. Close releases whatever bring-up opened.
type Board struct {
	once hw.TakeOnce
	opts Options

	mu      sync.Mutex
	closers []io.Closer
}

func New(opts Options) *Board {
	if opts.Init == nil {
		opts.Init = func() error {
			_, err := host.Init()
			return err
		}
	}
	if opts.OpenBus == nil {
		opts.OpenBus = i2creg.Open
	}
	if opts.OpenSerial == nil {
		opts.OpenSerial = serial.Open
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	return &Board{opts: opts}
}

func (*Board) Name() string { return "linux" }

func (b *Board) Take() (hw.Peripherals, error) {
	if err := b.once.Claim(); err != nil {
		return nil, err
	}
	return &peripherals{b: b}, nil
}

// Close closes the bus and serial port in reverse order of opening.
func (b *Board) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var first error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	b.closers = nil
	return first
}

func (b *Board) keep(c io.Closer) {
	b.mu.Lock()
	b.closers = append(b.closers, c)
	b.mu.Unlock()
}

type peripherals struct{ b *Board }

// ConfigureClock loads periph's host drivers; the kernel owns the clocks.
func (p *peripherals) ConfigureClock() error {
	if err := p.b.opts.Init(); err != nil {
		return errcode.Wrap(errcode.NotReady, "linuxhost.init", err)
	}
	return nil
}

// The kernel owns any hardware watchdog; nothing is armed on our behalf.
func (*peripherals) Watchdogs() []hw.Watchdog { return nil }

func (p *peripherals) OpenSerial(u hw.UARTPlan) (io.Writer, error) {
	if u.ID == "" || u.ID == "-" {
		return p.b.opts.Stdout, nil
	}
	port, err := p.b.opts.OpenSerial(serial.OpenOptions{
		PortName:        u.ID,
		BaudRate:        uint(u.Baud),
		DataBits:        8,
		StopBits:        1,
		ParityMode:      serial.PARITY_NONE,
		MinimumReadSize: 1,
	})
	if err != nil {
		return nil, errcode.Wrap(errcode.Bus, "linuxhost.serial", err)
	}
	p.b.keep(port)
	return port, nil
}

func (p *peripherals) OpenBus(c hw.I2CPlan) (drivers.I2C, error) {
	bus, err := p.b.opts.OpenBus(c.ID)
	if err != nil {
		return nil, errcode.Wrap(errcode.Bus, "linuxhost.bus", err)
	}
	if err := bus.SetSpeed(physic.Frequency(c.Hz) * physic.Hertz); err != nil {
		_ = bus.Close()
		return nil, errcode.Wrap(errcode.InvalidParams, "linuxhost.bus", err)
	}
	p.b.keep(bus)
	return bus, nil
}

func (*peripherals) NewTimer() hw.Timer { return timer.NewCountdown() }

func (*peripherals) Delay() hw.Delayer { return delay{} }

type delay struct{}

func (delay) Sleep(d time.Duration) { time.Sleep(d) }
