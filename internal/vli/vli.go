// Package vli implements JPEG's variable-length-integer encoding for DC
// differences and AC coefficients: a "category" (bit length) plus a
// "bitcode" (the category's worth of bits, sign-folded).
package vli

// Category returns ceil(log2(|v|+1)), the number of bits needed to
// represent v in JPEG's variable-length-integer form. Category(0) is 0.
func Category(v int32) uint8 {
	if v < 0 {
		v = -v
	}
	var cat uint8
	for v != 0 {
		cat++
		v >>= 1
	}
	return cat
}

// Bitcode returns the numeric code JPEG stores for v, given its category.
// Positive values pass through unchanged; negative values are folded into
// the lower half of the category's range: bitcode(v) = v if v>=0, else
// (2^category - 1 + v).
func Bitcode(v int32, cat uint8) uint32 {
	if v >= 0 {
		return uint32(v)
	}
	return uint32((int32(1)<<cat)-1+v)
}

// Extend recovers the signed value from a decoded bitcode of the given
// category (JPEG Annex F's EXTEND procedure).
func Extend(bits uint32, cat uint8) int32 {
	if cat == 0 {
		return 0
	}
	vt := int32(1) << (cat - 1)
	v := int32(bits)
	if v < vt {
		return v - (int32(1)<<cat - 1)
	}
	return v
}

// Offset is the table offset used when indexing a [-32767, 32767] range
// lookup by signed value, per spec.md's data model ("indexed with offset
// 32767 + v").
const Offset = 32767
