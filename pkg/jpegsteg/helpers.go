package jpegsteg

import (
	"github.com/nullpixel/jpegsteg/internal/jpegmodel"
	"github.com/nullpixel/jpegsteg/internal/quality"
)

// maxSampledBlocks bounds how many luma blocks feed the high-frequency
// activity measurement, keeping Embed's quality analysis O(1) against
// arbitrarily large images.
const maxSampledBlocks = 256

// recommendQuality derives a Recommendation from a parsed Jpeg's own
// quantization tables and a bounded sample of its luma coefficients.
func recommendQuality(jp *jpegmodel.Jpeg) quality.Recommendation {
	luma := jp.Frame.Components[0]
	lumaTable := quantTableFor(jp, luma)

	chromaTable := lumaTable
	if len(jp.Frame.Components) > 1 {
		chromaTable = quantTableFor(jp, jp.Frame.Components[1])
	}

	stats := quality.ComputeStats(lumaTable, chromaTable, sampleLumaBlocks(luma))
	return quality.Recommend(stats)
}

// quantTableFor resolves a component's quantization table, falling back
// to an all-ones table if the frame never populated one (e.g. a
// synthetic Jpeg built directly from quantized blocks).
func quantTableFor(jp *jpegmodel.Jpeg, c *jpegmodel.Component) [64]int {
	idx := c.QTableIndex
	if int(idx) < len(jp.QuantTables) && jp.QuantTables[idx] != nil {
		return *jp.QuantTables[idx]
	}
	var t [64]int
	for i := range t {
		t[i] = 1
	}
	return t
}

// sampleLumaBlocks flattens up to maxSampledBlocks blocks, in raster
// scan order, for the high-frequency activity measurement.
func sampleLumaBlocks(luma *jpegmodel.Component) [][64]int32 {
	var out [][64]int32
	for _, row := range luma.Blocks {
		for _, blk := range row {
			out = append(out, [64]int32(blk))
			if len(out) >= maxSampledBlocks {
				return out
			}
		}
	}
	return out
}
