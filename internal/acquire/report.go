package acquire

import (
	"io"

	"envlogger-go/x/strconvx"
)

// Reading is one humidity/temperature pair as reported by the driver.
type Reading struct {
	Humidity    float32 // %RH
	Temperature float32 // °C
}

// FormatReading renders the steady-state telemetry line (no newline).
func FormatReading(r Reading) string {
	return "relative humidity=" + num(r.Humidity) + "%; temperature=" + num(r.Temperature) + "C"
}

// FormatError renders a driver failure line (no newline).
func FormatError(err error) string {
	if err == nil {
		return "error: <nil>"
	}
	return "error: " + err.Error()
}

// num is the driver's float32 rendering: shortest form, no forced precision.
func num(v float32) string { return strconvx.FormatFloat(float64(v), 'f', -1, 32) }

func writeLine(w io.Writer, s string) error {
	_, err := io.WriteString(w, s+"\n")
	return err
}
