// Package sim is a host-side board: an emulated AHT20 on an in-memory bus,
// emulated watchdogs, and whatever writer and timer the caller supplies.
package sim

import (
	"io"
	"sync"
	"time"

	"envlogger-go/errcode"
	"envlogger-go/internal/hw"
	"envlogger-go/internal/timer"

	"tinygo.org/x/drivers"
)

// Options configures a simulated board. Zero values pick sensible defaults.
type Options struct {
	Out    io.Writer // serial sink; io.Discard when nil
	Timer  hw.Timer  // timer.NewCountdown() when nil
	Sensor *AHT20    // NewAHT20(21.5, 40) when nil
}

// Board is the simulated binding.
type Board struct {
	once   hw.TakeOnce
	opts   Options
	wds    []*Watchdog
	delay  *Delay
	mu     sync.Mutex
	events []string
}

// New builds a board with the ESP32-C3 watchdog topology, all enabled as
// after reset.
func New(opts Options) *Board {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Timer == nil {
		opts.Timer = timer.NewCountdown()
	}
	if opts.Sensor == nil {
		opts.Sensor = NewAHT20(defaultCelsius, defaultRH)
	}
	b := &Board{opts: opts, delay: &Delay{}}
	for _, n := range []string{"rtc_wdt", "timg0_wdt", "timg1_wdt", "super_wdt"} {
		b.wds = append(b.wds, &Watchdog{name: n, enabled: true, board: b})
	}
	return b
}

func (b *Board) Name() string { return "sim" }

func (b *Board) Take() (hw.Peripherals, error) {
	if err := b.once.Claim(); err != nil {
		return nil, err
	}
	return &peripherals{b: b}, nil
}

// Sensor returns the emulated sensor.
func (b *Board) Sensor() *AHT20 { return b.opts.Sensor }

// Delay returns the delay source handed to the sensor driver.
func (b *Board) Delay() *Delay { return b.delay }

// Events lists bring-up actions in the order the board saw them.
func (b *Board) Events() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.events...)
}

func (b *Board) record(ev string) {
	b.mu.Lock()
	b.events = append(b.events, ev)
	b.mu.Unlock()
}

type peripherals struct {
	b       *Board
	clocked bool
}

func (p *peripherals) ConfigureClock() error {
	p.clocked = true
	p.b.record("clock")
	return nil
}

func (p *peripherals) Watchdogs() []hw.Watchdog {
	out := make([]hw.Watchdog, len(p.b.wds))
	for i, w := range p.b.wds {
		out[i] = w
	}
	return out
}

func (p *peripherals) OpenSerial(u hw.UARTPlan) (io.Writer, error) {
	if !p.clocked {
		return nil, &errcode.E{C: errcode.NotReady, Op: "sim.serial", Msg: "clock not configured"}
	}
	p.b.record("serial")
	return p.b.opts.Out, nil
}

func (p *peripherals) OpenBus(c hw.I2CPlan) (drivers.I2C, error) {
	if !p.clocked {
		return nil, &errcode.E{C: errcode.NotReady, Op: "sim.bus", Msg: "clock not configured"}
	}
	if c.Hz == 0 || c.Hz > 1_000_000 {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "sim.bus", Msg: "unsupported bus rate"}
	}
	p.b.record("bus")
	return p.b.opts.Sensor, nil
}

func (p *peripherals) NewTimer() hw.Timer {
	p.b.record("timer")
	return p.b.opts.Timer
}

func (p *peripherals) Delay() hw.Delayer { return p.b.delay }

// Watchdog is an emulated independent watchdog.
type Watchdog struct {
	mu      sync.Mutex
	name    string
	enabled bool
	stuck   bool
	board   *Board
}

func (w *Watchdog) Name() string { return w.name }

func (w *Watchdog) Disable() {
	w.mu.Lock()
	if !w.stuck {
		w.enabled = false
	}
	w.mu.Unlock()
	w.board.record("watchdog:" + w.name)
}

func (w *Watchdog) Enabled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enabled
}

// Stick makes Disable ineffective, emulating a write-protected watchdog.
func (w *Watchdog) Stick() {
	w.mu.Lock()
	w.stuck = true
	w.mu.Unlock()
}

// Watchdogs exposes the emulated watchdogs for inspection.
func (b *Board) Watchdogs() []*Watchdog { return b.wds }

// Delay accumulates requested delays without sleeping.
type Delay struct {
	mu    sync.Mutex
	total time.Duration
}

func (d *Delay) Sleep(x time.Duration) {
	d.mu.Lock()
	d.total += x
	d.mu.Unlock()
}

// Total reports the summed delay requested so far.
func (d *Delay) Total() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.total
}
