package sim

import (
	"errors"
	"sync"

	"envlogger-go/drivers/aht20"
	"envlogger-go/errcode"
)

// ErrNack is returned for transactions to an address nobody answers.
var ErrNack = errors.New("sim: nack")

const (
	aht20Addr      = 0x38
	cmdTrigger     = 0xAC
	cmdInitialize  = 0xBE
	cmdStatus      = 0x71
	cmdSoftReset   = 0xBA
	stCalibrated   = 0x08
	stBusy         = 0x80
	rawFullScale   = 1 << 20
	defaultCelsius = 21.5
	defaultRH      = 40.0
)

// AHT20 emulates the sensor on an in-memory two-wire bus. It implements
// drivers.I2C for the whole bus: other addresses NACK.
type AHT20 struct {
	mu         sync.Mutex
	absent     bool
	calibrated bool
	busyPolls  int
	pending    int
	failReads  int
	hraw, traw uint32

	triggers int
	inits    int
}

// NewAHT20 returns a calibrated, present sensor reading celsius / rh.
func NewAHT20(celsius, rh float32) *AHT20 {
	a := &AHT20{calibrated: true}
	a.Set(celsius, rh)
	return a
}

// Set changes the conditions the next measurement reports.
func (a *AHT20) Set(celsius, rh float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hraw = clampRaw(float64(rh) / 100 * rawFullScale)
	a.traw = clampRaw((float64(celsius) + 50) / 200 * rawFullScale)
}

func clampRaw(v float64) uint32 {
	switch {
	case v < 0:
		return 0
	case v > rawFullScale-1:
		return rawFullScale - 1
	}
	return uint32(v + 0.5)
}

// SetAbsent makes every transaction time out, as if the sensor were unplugged.
func (a *AHT20) SetAbsent(absent bool) {
	a.mu.Lock()
	a.absent = absent
	a.mu.Unlock()
}

// SetUncalibrated clears the calibration bit; the init command sets it again.
func (a *AHT20) SetUncalibrated() {
	a.mu.Lock()
	a.calibrated = false
	a.mu.Unlock()
}

// SetBusyPolls makes each conversion report busy for n data reads.
func (a *AHT20) SetBusyPolls(n int) {
	a.mu.Lock()
	a.busyPolls = n
	a.mu.Unlock()
}

// FailNextReads makes the next n measurement reads time out on the bus.
func (a *AHT20) FailNextReads(n int) {
	a.mu.Lock()
	a.failReads = n
	a.mu.Unlock()
}

// Triggers reports how many measurements were started.
func (a *AHT20) Triggers() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.triggers
}

// Inits reports how many initialise commands were received.
func (a *AHT20) Inits() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inits
}

func (a *AHT20) Tx(addr uint16, w, r []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if addr != aht20Addr {
		return ErrNack
	}
	if a.absent {
		return errcode.Timeout
	}

	switch {
	case len(w) == 1 && w[0] == cmdStatus && len(r) == 1:
		r[0] = a.status()
	case len(w) == 3 && w[0] == cmdInitialize:
		a.inits++
		a.calibrated = true
	case len(w) == 1 && w[0] == cmdSoftReset:
		a.pending = 0
	case len(w) == 3 && w[0] == cmdTrigger:
		a.triggers++
		a.pending = a.busyPolls
	case len(w) == 0 && len(r) > 0:
		if a.failReads > 0 {
			a.failReads--
			return errcode.Timeout
		}
		frame := a.frame()
		if a.pending > 0 {
			frame[0] |= stBusy
			a.pending--
		}
		copy(r, frame[:])
	default:
		return &errcode.E{C: errcode.Unsupported, Op: "sim.tx"}
	}
	return nil
}

func (a *AHT20) status() byte {
	if a.calibrated {
		return stCalibrated
	}
	return 0
}

func (a *AHT20) frame() [7]byte {
	var b [7]byte
	h, t := a.hraw, a.traw
	b[0] = a.status()
	b[1] = byte(h >> 12)
	b[2] = byte(h >> 4)
	b[3] = byte((h&0xF)<<4) | byte((t>>16)&0x0F)
	b[4] = byte(t >> 8)
	b[5] = byte(t)
	b[6] = aht20.CRC8(b[:6])
	return b
}
