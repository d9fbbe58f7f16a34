// Package quant implements JPEG quantization tables: the ITU-T T.81
// Annex K base tables, quality->scale-factor derivation, and table
// scaling.
package quant

// BaseLuminance and BaseChrominance are the standard Annex K.1 tables, in
// zigzag (natural storage) order -- the same order a DQT segment carries
// on the wire.
var (
	BaseLuminance = [64]int{
		16, 11, 12, 14, 12, 10, 16, 14,
		13, 14, 18, 17, 16, 19, 24, 40,
		26, 24, 22, 22, 24, 49, 35, 37,
		29, 40, 58, 51, 61, 60, 57, 51,
		56, 55, 64, 72, 92, 78, 64, 68,
		87, 69, 55, 56, 80, 109, 81, 87,
		95, 98, 103, 104, 103, 62, 77, 113,
		121, 112, 100, 120, 92, 101, 103, 99,
	}

	BaseChrominance = [64]int{
		17, 18, 18, 24, 21, 24, 47, 26,
		26, 47, 99, 66, 56, 66, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
	}
)

// ScaleFactor computes JPEG's quality->scale-factor mapping (spec.md §3):
// sf = floor(5000/q) when q<50, else sf = 200-2q.
func ScaleFactor(quality int) int {
	if quality <= 0 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}
	if quality < 50 {
		return 5000 / quality
	}
	return 200 - 2*quality
}

// Clamp restricts v to [1, 255], the valid range for a quantization
// table entry.
func Clamp(v int) int {
	if v < 1 {
		return 1
	}
	if v > 255 {
		return 255
	}
	return v
}

// Scale derives a quality-scaled table from a base table:
// t_i = clamp(1, 255, floor((base_i*sf + 50) / 100)).
func Scale(base [64]int, quality int) [64]int {
	sf := ScaleFactor(quality)
	var out [64]int
	for i, b := range base {
		out[i] = Clamp((b*sf + 50) / 100)
	}
	return out
}

// BuildLumaChroma returns the quality-scaled luminance and chrominance
// tables for the given quality (1..100), both in zigzag order.
func BuildLumaChroma(quality int) (luma, chroma [64]int) {
	return Scale(BaseLuminance, quality), Scale(BaseChrominance, quality)
}
