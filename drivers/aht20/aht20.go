// Package aht20 provides a driver for the AHT20 temperature/humidity sensor.
//
// Construction is fallible and touches the device:
//
//	dev, err := aht20.New(bus, aht20.SleepDelay{})
//	h, t, err := dev.Read()  // trigger + bounded polling
//
// The two-phase API is kept for callers that schedule their own waits:
//
//	d.Trigger()              // start a measurement (fast)
//	err := d.Collect(&s)     // fetch when ready; not_ready while busy
//
// NOTE: I2C.Tx MUST perform a write followed by a repeated-start read when both
// w and r are provided, without releasing the bus.
package aht20

import (
	"time"

	"envlogger-go/errcode"

	"tinygo.org/x/drivers"
)

// I2C address.
const Address = 0x38

// Commands and status bits (per datasheet/common driver practice).
const (
	cmdTrigger    = 0xAC
	cmdInitialize = 0xBE
	cmdSoftReset  = 0xBA
	cmdStatus     = 0x71

	statusBusy       = 0x80
	statusCalibrated = 0x08
)

// Delayer is the blocking delay source the driver waits on.
type Delayer interface {
	Sleep(d time.Duration)
}

// SleepDelay delays with time.Sleep.
type SleepDelay struct{}

func (SleepDelay) Sleep(d time.Duration) { time.Sleep(d) }

// Config controls non-hardware behaviour. All fields are optional.
type Config struct {
	// Address defaults to 0x38 if zero.
	Address uint16
	// PollInterval is used by Read() between Collect() attempts. Default 15 ms.
	PollInterval time.Duration
	// CollectTimeout bounds the polling in Read() after the trigger hint.
	// Default 250 ms.
	CollectTimeout time.Duration
	// TriggerHint is the nominal conversion time. Read() waits this long
	// before the first Collect. Default 80 ms.
	TriggerHint time.Duration
	// SkipCRC disables CRC-8 validation of measurement frames.
	SkipCRC bool
}

func (c Config) withDefaults() Config {
	if c.Address == 0 {
		c.Address = Address
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 15 * time.Millisecond
	}
	if c.CollectTimeout <= 0 {
		c.CollectTimeout = 250 * time.Millisecond
	}
	if c.TriggerHint <= 0 {
		c.TriggerHint = 80 * time.Millisecond
	}
	return c
}

// Device wraps an I2C connection to an AHT20 device.
type Device struct {
	bus   drivers.I2C
	delay Delayer
	cfg   Config

	buf      [7]byte // reuse buffer to avoid allocations
	humidity uint32  // last raw humidity sample
	temp     uint32  // last raw temperature sample
}

// New binds the driver to bus and makes sure the device is calibrated.
// It fails with a bus error when the status byte cannot be read and with
// uncalibrated when initialisation does not take.
func New(bus drivers.I2C, delay Delayer, cfgs ...Config) (*Device, error) {
	var c Config
	if len(cfgs) > 0 {
		c = cfgs[0]
	}
	if delay == nil {
		delay = SleepDelay{}
	}
	d := &Device{bus: bus, delay: delay, cfg: c.withDefaults()}

	st, err := d.Status()
	if err != nil {
		return nil, err
	}
	if st&statusCalibrated != 0 {
		return d, nil
	}
	if err := d.tx("aht20.init", []byte{cmdInitialize, 0x08, 0x00}, nil); err != nil {
		return nil, err
	}
	d.delay.Sleep(10 * time.Millisecond)

	st, err = d.Status()
	if err != nil {
		return nil, err
	}
	if st&statusCalibrated == 0 {
		return nil, &errcode.E{C: errcode.Uncalibrated, Op: "aht20.init"}
	}
	return d, nil
}

// Address returns the configured bus address.
func (d *Device) Address() uint16 { return d.cfg.Address }

func (d *Device) tx(op string, w, r []byte) error {
	if err := d.bus.Tx(d.cfg.Address, w, r); err != nil {
		return errcode.Wrap(errcode.Bus, op, err)
	}
	return nil
}

// Reset issues a soft reset. Give the device ~20ms afterwards before using.
func (d *Device) Reset() error {
	return d.tx("aht20.reset", []byte{cmdSoftReset}, nil)
}

// Status reads and returns the status byte.
func (d *Device) Status() (byte, error) {
	data := d.buf[:1]
	if err := d.tx("aht20.status", []byte{cmdStatus}, data); err != nil {
		return 0, err
	}
	return data[0], nil
}

// Trigger starts a measurement. It is a quick register write with no blocking.
// After Trigger, the device needs time to convert; see d.TriggerHint().
func (d *Device) Trigger() error {
	return d.tx("aht20.trigger", []byte{cmdTrigger, 0x33, 0x00}, nil)
}

// TriggerHint returns the nominal conversion time to wait before attempting Collect.
func (d *Device) TriggerHint() time.Duration { return d.cfg.TriggerHint }

// Collect attempts to read one measurement into the device cache and the
// provided sample. While the device is converting, errcode.NotReady is
// returned.
func (d *Device) Collect(out *Sample) error {
	data := d.buf[:]
	if err := d.tx("aht20.collect", nil, data); err != nil {
		return err
	}
	if data[0]&statusCalibrated == 0 {
		return &errcode.E{C: errcode.Uncalibrated, Op: "aht20.collect"}
	}
	if data[0]&statusBusy != 0 {
		return errcode.NotReady
	}
	if !d.cfg.SkipCRC && CRC8(data[:6]) != data[6] {
		return &errcode.E{C: errcode.Checksum, Op: "aht20.collect"}
	}
	hraw := (uint32(data[1]) << 12) | (uint32(data[2]) << 4) | (uint32(data[3]) >> 4)
	traw := (uint32(data[3]&0x0F) << 16) | (uint32(data[4]) << 8) | uint32(data[5])

	d.humidity = hraw
	d.temp = traw

	if out != nil {
		out.RawHumidity = hraw
		out.RawTemp = traw
	}
	return nil
}

// Read performs a full measurement cycle: Trigger, wait the trigger hint,
// then poll Collect until it succeeds or CollectTimeout worth of polling
// has been spent.
func (d *Device) Read() (Humidity, Temperature, error) {
	if err := d.Trigger(); err != nil {
		return 0, 0, err
	}
	d.delay.Sleep(d.cfg.TriggerHint)

	var waited time.Duration
	for {
		var s Sample
		err := d.Collect(&s)
		switch err {
		case nil:
			return s.Humidity(), s.Temperature(), nil
		case errcode.NotReady:
			if waited >= d.cfg.CollectTimeout {
				return 0, 0, &errcode.E{C: errcode.Timeout, Op: "aht20.read"}
			}
			d.delay.Sleep(d.cfg.PollInterval)
			waited += d.cfg.PollInterval
		default:
			return 0, 0, err
		}
	}
}

// CRC8 is the Sensirion-style CRC-8 (poly 0x31, init 0xFF) guarding
// measurement frames.
func CRC8(p []byte) byte {
	crc := byte(0xFF)
	for _, v := range p {
		crc ^= v
		for i := 0; i < 8; i++ {
			if crc&0x80 == 0 {
				crc <<= 1
			} else {
				crc = (crc << 1) ^ 0x31
			}
		}
	}
	return crc
}

// Sample holds raw readings.
type Sample struct {
	RawHumidity uint32
	RawTemp     uint32
}

func (s Sample) Humidity() Humidity       { return Humidity(s.RawHumidity) }
func (s Sample) Temperature() Temperature { return Temperature(s.RawTemp) }

// DeciRelHumidity returns tenths of %RH without floating point.
func (s Sample) DeciRelHumidity() int32 {
	return int32((int64(s.RawHumidity) * 1000) / 0x100000)
}

// DeciCelsius returns tenths of °C without floating point.
func (s Sample) DeciCelsius() int32 {
	return int32((int64(s.RawTemp)*2000)/0x100000) - 500
}

// Humidity is a raw 20-bit relative humidity reading.
type Humidity uint32

// RH returns relative humidity in percent.
func (h Humidity) RH() float32 { return (float32(h) * 100) / 0x100000 }

// Temperature is a raw 20-bit temperature reading.
type Temperature uint32

// Celsius returns °C.
func (t Temperature) Celsius() float32 { return (float32(t)*200.0)/0x100000 - 50 }

// Last returns the most recent raw sample seen by Collect.
func (d *Device) Last() Sample { return Sample{RawHumidity: d.humidity, RawTemp: d.temp} }
