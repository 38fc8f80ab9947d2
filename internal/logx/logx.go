// Package logx is the diagnostic logging seam. Hosts pass a *slog.Logger;
// firmware uses Println, which goes through the builtin print so it works
// before (and without) any serial writer.
package logx

import (
	"time"

	"envlogger-go/x/strconvx"
)

// Logger is satisfied by *slog.Logger.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Discard drops everything.
var Discard Logger = discard{}

type discard struct{}

func (discard) Info(string, ...any)  {}
func (discard) Warn(string, ...any)  {}
func (discard) Error(string, ...any) {}

// Println returns a Logger that writes "[component] msg k=v ..." lines via
// the builtin println.
func Println(component string) Logger { return printer{prefix: "[" + component + "]"} }

type printer struct{ prefix string }

func (p printer) Info(msg string, args ...any)  { println(Line(p.prefix, msg, args...)) }
func (p printer) Warn(msg string, args ...any)  { println(Line(p.prefix, "WARN "+msg, args...)) }
func (p printer) Error(msg string, args ...any) { println(Line(p.prefix, "ERROR "+msg, args...)) }

// Line renders prefix, msg and key/value pairs the way Println prints them.
func Line(prefix, msg string, args ...any) string {
	s := prefix + " " + msg
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			s += " " + value(args[i])
			break
		}
		s += " " + value(args[i]) + "=" + value(args[i+1])
	}
	return s
}

func value(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case error:
		return x.Error()
	case int:
		return strconvx.Itoa(x)
	case int32:
		return strconvx.FormatInt(int64(x), 10)
	case int64:
		return strconvx.FormatInt(x, 10)
	case uint16:
		return strconvx.FormatUint(uint64(x), 10)
	case uint32:
		return strconvx.FormatUint(uint64(x), 10)
	case uint64:
		return strconvx.FormatUint(x, 10)
	case float32:
		return strconvx.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconvx.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "true"
		}
		return "false"
	case time.Duration:
		return x.String()
	case nil:
		return "<nil>"
	}
	return "?"
}
