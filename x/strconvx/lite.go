package strconvx

import "math"

// Allocation-light formatting used by the baremetal build. It lives in an
// untagged file so host tests exercise it too.

const digits = "0123456789abcdefghijklmnopqrstuvwxyz"

func formatInt(i int64, base int) string {
	if i < 0 {
		return "-" + formatUint(uint64(-i), base)
	}
	return formatUint(uint64(i), base)
}

func formatUint(u uint64, base int) string {
	if base < 2 || base > 36 {
		base = 10
	}
	if u == 0 {
		return "0"
	}
	var buf [64]byte
	i := len(buf)
	b := uint64(base)
	for u > 0 {
		i--
		buf[i] = digits[u%b]
		u /= b
	}
	return string(buf[i:])
}

func formatFloat(f float64, prec, bitSize int) string {
	switch {
	case f != f:
		return "NaN"
	case f > 1.7976931348623157e308:
		return "+Inf"
	case f < -1.7976931348623157e308:
		return "-Inf"
	}
	if prec >= 0 {
		return fixed(f, prec)
	}
	if bitSize == 32 {
		if s, ok := shortest32(float32(f)); ok {
			return s
		}
	}
	sig := 15
	if bitSize == 32 {
		sig = 7
	}
	a := f
	if a < 0 {
		a = -a
	}
	intDigits := 1
	for p := 10.0; a >= p && intDigits < 20; p *= 10 {
		intDigits++
	}
	prec = sig - intDigits
	if prec < 0 {
		prec = 0
	}
	return trimZeros(fixed(f, prec))
}

// shortest32 renders v with the fewest fraction digits that still parse
// back to v, choosing the nearest candidate at that length. All arithmetic
// is on integers, so it agrees with strconv for |v| < 2^24. ok is false for
// larger or vanishingly small magnitudes.
func shortest32(v float32) (s string, ok bool) {
	b := math.Float32bits(v)
	neg := b>>31 != 0
	e := int(b>>23) & 0xFF
	m := uint64(b & (1<<23 - 1))
	switch e {
	case 0xFF:
		return "", false
	case 0:
		e = 1 // subnormal
	default:
		m |= 1 << 23
	}
	if m == 0 {
		if neg {
			return "-0", true
		}
		return "0", true
	}
	// v = m / 2^shift
	shift := 150 - e
	if shift < 0 {
		return "", false
	}
	// At a power of two the next value down is half as far away.
	narrow := m == 1<<23 && e > 1

	p5 := uint64(1)
	for p := 0; p <= shift && p <= 17; p++ {
		if p > 0 {
			p5 *= 5
		}
		// Candidate q/10^p against v: scale both by 5^p * 2^shift.
		num := m * p5
		sh := uint(shift - p)
		var q, d uint64
		below := false
		switch {
		case sh == 0:
			q = num
		case sh < 64:
			q = num >> sh
			rem := num & (1<<sh - 1)
			if rem >= 1<<(sh-1) {
				q++
				d = 1<<sh - rem
			} else {
				d = rem
				below = rem != 0
			}
		case sh == 64 && num >= 1<<63:
			q, d = 1, -num
		default:
			q, d, below = 0, num, true
		}
		// Round-trips iff |q/10^p - v| is under half the gap to the
		// neighbour on that side. 5^p is odd, so there are no ties.
		if below && narrow {
			ok = d < 1<<61 && 4*d < p5
		} else {
			ok = d < 1<<62 && 2*d < p5
		}
		if ok {
			return place(neg, q, p), true
		}
	}
	return "", false
}

// place renders q/10^p with exactly p fraction digits.
func place(neg bool, q uint64, p int) string {
	ds := formatUint(q, 10)
	for len(ds) <= p {
		ds = "0" + ds
	}
	if p > 0 {
		ds = ds[:len(ds)-p] + "." + ds[len(ds)-p:]
	}
	if neg {
		ds = "-" + ds
	}
	return ds
}

func fixed(f float64, prec int) string {
	neg := f < 0
	if neg {
		f = -f
	}
	if prec > 18 {
		prec = 18
	}
	pow := uint64(1)
	for i := 0; i < prec; i++ {
		pow *= 10
	}
	if f >= 1e18/float64(pow) {
		// Out of fixed-point range; integer part only.
		s := formatUint(uint64(f), 10)
		if neg {
			s = "-" + s
		}
		return s
	}
	scaled := uint64(f*float64(pow) + 0.5)
	ip, fp := scaled/pow, scaled%pow

	s := formatUint(ip, 10)
	if prec > 0 {
		fs := formatUint(fp, 10)
		var pad []byte
		for i := len(fs); i < prec; i++ {
			pad = append(pad, '0')
		}
		s += "." + string(pad) + fs
	}
	if neg && scaled != 0 {
		s = "-" + s
	}
	return s
}

func trimZeros(s string) string {
	dot := -1
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			dot = i
			break
		}
	}
	if dot < 0 {
		return s
	}
	end := len(s)
	for end > dot+1 && s[end-1] == '0' {
		end--
	}
	if end == dot+1 {
		end = dot
	}
	return s[:end]
}
