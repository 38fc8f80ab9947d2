package errcode

import "errors"

// Code is a stable, log-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK            Code = "ok"
	InvalidParams Code = "invalid_params"
	Unsupported   Code = "unsupported"

	// Transport / sensor
	Bus          Code = "bus"
	Timeout      Code = "timeout"
	Checksum     Code = "checksum"
	Uncalibrated Code = "uncalibrated"
	NotReady     Code = "not_ready"

	// Ownership / sequencing
	AlreadyTaken    Code = "already_taken"
	NotArmed        Code = "not_armed"
	WatchdogEnabled Code = "watchdog_enabled"

	Error Code = "error" // generic fallback
)

// E keeps context and a cause alongside a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	switch {
	case e.Msg != "":
		return string(e.C) + ": " + e.Msg
	case e.Err == nil:
		return string(e.C)
	case Of(e.Err) == e.C:
		// The cause already leads with this code.
		return e.Err.Error()
	}
	return string(e.C) + ": " + e.Err.Error()
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Wrap is shorthand for &E{C: c, Op: op, Err: err}.
func Wrap(c Code, op string, err error) error {
	return &E{C: c, Op: op, Err: err}
}

// Of extracts a Code from an error, defaulting to Error.
// The outermost coded error in the chain wins.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	type coder interface{ Code() Code }
	var x coder
	if errors.As(err, &x) {
		return x.Code()
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	return Error
}
