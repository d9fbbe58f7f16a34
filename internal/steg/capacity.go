package steg

import "github.com/nullpixel/jpegsteg/internal/jpegerr"

func insufficientCapacity(bytesDone int) error {
	return jpegerr.New(jpegerr.InsufficientCapacity, "not enough usable luma coefficients for the message").WithBytesDone(bytesDone)
}

func extractionIncomplete(bytesDone int) error {
	return jpegerr.New(jpegerr.ExtractionIncomplete, "fewer usable coefficients than the expected message length").WithBytesDone(bytesDone)
}

// CapacityEstimate reports an advisory capacity, in bytes, for auto
// detection when no expected length is supplied (spec.md §4.9's "this is
// advisory only").
type CapacityEstimate struct {
	Plain      int // floor(totalLumaCoefficients * 0.10 / 8)
	Weighted   int // floor(totalLumaCoefficients * 0.05 / 8)
	TotalCoefs int
}

// EstimateCapacity counts the AC positions of a luma grid of the given
// size (63 per block) without reading any coefficient, so it reports
// total positions rather than how many are currently usable -- the
// heuristic is a coarse, fast estimate, per spec.md.
func EstimateCapacity(blocksPerLine, blocksPerColumn int) CapacityEstimate {
	total := blocksPerLine * blocksPerColumn * 63
	return CapacityEstimate{
		Plain:      int(float64(total) * 0.10 / 8),
		Weighted:   int(float64(total) * 0.05 / 8),
		TotalCoefs: total,
	}
}
