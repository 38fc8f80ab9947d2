package hw

import "time"

// I2CPlan wires a bus controller to pins and sets its clock rate.
// On hosts ID names the bus (e.g. "1" for /dev/i2c-1) and pins are ignored.
type I2CPlan struct {
	ID       string
	SDA, SCL int
	Hz       uint32
}

// UARTPlan wires a serial controller to pins and sets its baud rate.
// On hosts ID is a device path; empty means standard output.
type UARTPlan struct {
	ID     string
	TX, RX int
	Baud   uint32
}

// Plan is everything a board needs at bring-up.
type Plan struct {
	Board  string
	I2C    I2CPlan
	UART   UARTPlan
	Period time.Duration
}
