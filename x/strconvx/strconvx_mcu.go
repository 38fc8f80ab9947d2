//go:build baremetal

package strconvx

// Same signatures as the host build, minus the strconv dependency.

func Itoa(i int) string                    { return formatInt(int64(i), 10) }
func FormatInt(i int64, base int) string   { return formatInt(i, base) }
func FormatUint(u uint64, base int) string { return formatUint(u, base) }

// FormatFloat supports 'f' only; other verbs are treated as 'f'. With
// prec < 0 and bitSize 32 it gives the shortest round-tripping digits, as
// strconv does, for |f| < 2^24. Outside that range, and for bitSize 64, it
// keeps 7 or 15 significant digits.
func FormatFloat(f float64, _ byte, prec, bitSize int) string {
	return formatFloat(f, prec, bitSize)
}
