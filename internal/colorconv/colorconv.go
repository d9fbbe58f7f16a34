// Package colorconv converts between RGB and YCbCr pixel representations
// using the fixed-point ITU-T T.871 coefficients, for the pixel-domain
// encode path (spec.md §4.7's encode_rgba).
package colorconv

// RGBToYCbCr converts one 8-bit RGB triple to YCbCr using the standard
// JFIF/JPEG (ITU-T T.871) full-range coefficients.
func RGBToYCbCr(r, g, b uint8) (y, cb, cr uint8) {
	ri, gi, bi := int32(r), int32(g), int32(b)

	// Fixed point, scaled by 2^16, rounded to nearest.
	const half = 1 << 15
	yy := (19595*ri + 38470*gi + 7471*bi + half) >> 16
	cbv := (-11059*ri - 21709*gi + 32768*bi + half) >> 16
	crv := (32768*ri - 27439*gi - 5329*bi + half) >> 16

	return clamp8(yy), clamp8(cbv + 128), clamp8(crv + 128)
}

// YCbCrToRGB converts one YCbCr triple back to RGB.
func YCbCrToRGB(y, cb, cr uint8) (r, g, b uint8) {
	yy := int32(y)
	cbv := int32(cb) - 128
	crv := int32(cr) - 128

	const half = 1 << 15
	rr := yy + ((91881*crv + half) >> 16)
	gg := yy - ((22554*cbv + 46802*crv + half) >> 16)
	bb := yy + ((116130*cbv + half) >> 16)

	return clamp8(rr), clamp8(gg), clamp8(bb)
}

func clamp8(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// GrayToY converts a single grayscale sample directly to a luma sample
// (identity -- grayscale JPEGs store the sample as Y directly).
func GrayToY(gray uint8) uint8 { return gray }
