// Package ieee754 decodes the IEEE 754-2008 binary16 ("half precision")
// bit pattern a cbev.Context hands back from Context.Float16Bits, per
// RFC 8949 §3.3's reference to that standard for major-7 floats.
// cbev itself only surfaces the raw 16 bits (spec.md §6); widening them
// to a float32 or float64 is host policy, not parser policy, so it lives
// here rather than in the core.
package ieee754

import "math"

// ToFloat32 widens a binary16 bit pattern to the nearest float32,
// preserving NaN payloads, infinities and subnormals exactly.
func ToFloat32(bits uint16) float32 {
	sign := uint32(bits>>15) & 0x1
	exp := uint32(bits>>10) & 0x1f
	frac := uint32(bits) & 0x3ff

	var outExp, outFrac uint32
	switch {
	case exp == 0x1f: // inf or NaN
		outExp = 0xff
		outFrac = frac << 13
	case exp == 0: // zero or subnormal
		if frac == 0 {
			outExp, outFrac = 0, 0
		} else {
			// normalize: shift the fractional bits left until the
			// implicit leading 1 lands in bit 10, counting shifts so
			// the biased exponent (127-15+1, adjusted for the half's
			// missing implicit bit) can be corrected by the same amount.
			e := int32(0)
			f := frac
			for f&0x400 == 0 {
				f <<= 1
				e--
			}
			f &= 0x3ff
			outExp = uint32(int32(127-15+1) + e)
			outFrac = f << 13
		}
	default: // normalized
		outExp = exp - 15 + 127
		outFrac = frac << 13
	}

	return math.Float32frombits(sign<<31 | outExp<<23 | outFrac)
}

// ToFloat64 widens a binary16 bit pattern to float64 via ToFloat32; a
// half's entire range and precision fit losslessly in either width, so
// going through float32 first costs nothing.
func ToFloat64(bits uint16) float64 {
	return float64(ToFloat32(bits))
}

// IsNaN reports whether bits encodes a half-precision NaN.
func IsNaN(bits uint16) bool {
	return bits&0x7c00 == 0x7c00 && bits&0x03ff != 0
}

// IsInf reports whether bits encodes positive (sign > 0) or negative
// (sign < 0) half-precision infinity; sign == 0 matches either.
func IsInf(bits uint16, sign int) bool {
	if bits&0x7fff != 0x7c00 {
		return false
	}
	negative := bits&0x8000 != 0
	switch {
	case sign > 0:
		return !negative
	case sign < 0:
		return negative
	default:
		return true
	}
}
