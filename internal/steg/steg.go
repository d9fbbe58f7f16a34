// Package steg implements the coefficient-level steganography core:
// a single shared predicate deciding which quantized luma AC coefficients
// carry message bits, and the embed/extract walks that traverse them in
// lockstep. Grounded on spec.md §4.9/§9 ("the single largest footgun in
// the current design is that two call sites compute the usable
// predicate"); no example repo does LSB steganography, so this package
// is hand-built directly from the specification's invariant rather than
// adapted from a teacher file (see DESIGN.md).
package steg

import (
	"github.com/nullpixel/jpegsteg/internal/jpegmodel"
	"github.com/nullpixel/jpegsteg/internal/zigzag"
)

// Usable is the single source of truth for which coefficients carry
// message bits. A coefficient c at zigzag position k is usable iff:
//
//	k >= 1 AND c != 0 AND |c| >= 2
//
// Both Embed and Extract call this exact function; do not duplicate its
// logic anywhere else.
func Usable(k int, c int32) bool {
	if k < 1 {
		return false
	}
	if c == 0 {
		return false
	}
	if c < 0 {
		return c <= -2
	}
	return c >= 2
}

// Weight is a perceptual weight for a usable coefficient, exposed as a
// statistic only. Per spec.md's Open Question resolution, weights are
// computed but never consulted by Usable -- preserve the predicate
// exactly and do not let a weight gate selection.
func Weight(k int) float64 {
	// The weight falls off with zigzag position, 1/(1+k/8). It is only
	// summed into EmbedResult.WeightSum; neither the selection nor
	// EstimateCapacity reads it.
	return 1.0 / (1.0 + float64(k)/8.0)
}

// CoefficientOrder yields a luma component's usable coefficient
// positions in the fixed traversal order Embed and Extract both use: row
// major over the block grid, ascending zigzag index 1..63 within each
// block. visit is called for every coefficient the predicate accepts,
// in order, and stops early if visit returns false.
func CoefficientOrder(luma *jpegmodel.Component, visit func(blk *jpegmodel.Block, k int, raster int) bool) {
	for row := 0; row < luma.BlocksPerColumn; row++ {
		for col := 0; col < luma.BlocksPerLine; col++ {
			blk := luma.BlockAt(row, col)
			for k := 1; k <= 63; k++ {
				raster := zigzag.Natural[k]
				if !Usable(k, blk[raster]) {
					continue
				}
				if !visit(blk, k, raster) {
					return
				}
			}
		}
	}
}
