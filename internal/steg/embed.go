package steg

import "github.com/nullpixel/jpegsteg/internal/jpegmodel"

// EmbedResult reports how much of the message was written.
type EmbedResult struct {
	BitsWritten  int
	CoefsVisited int
	WeightSum    float64 // sum of Weight(k) over every coefficient actually written into
}

// Embed writes message (MSB-first within each byte) into luma's usable
// AC coefficients, in the fixed traversal order CoefficientOrder
// defines. Sign is preserved; only the magnitude's LSB is set:
//
//	c > 0: c' = (c & ~1) | bit
//	c < 0: c' = -((|c| & ~1) | bit)
//
// If capacity runs out before the whole message is written, Embed
// returns a partial EmbedResult and an InsufficientCapacity error
// carrying the number of bytes embedded so far.
func Embed(luma *jpegmodel.Component, message []byte) (EmbedResult, error) {
	totalBits := len(message) * 8
	bitIdx := 0
	visited := 0
	var weightSum float64

	CoefficientOrder(luma, func(blk *jpegmodel.Block, k int, raster int) bool {
		visited++
		if bitIdx >= totalBits {
			return false
		}
		bit := messageBit(message, bitIdx)
		c := blk[raster]
		if c > 0 {
			blk[raster] = (c &^ 1) | int32(bit)
		} else {
			mag := -c
			mag = (mag &^ 1) | int32(bit)
			blk[raster] = -mag
		}
		weightSum += Weight(k)
		bitIdx++
		return true
	})

	res := EmbedResult{BitsWritten: bitIdx, CoefsVisited: visited, WeightSum: weightSum}
	if bitIdx < totalBits {
		return res, insufficientCapacity(bitIdx / 8)
	}
	return res, nil
}

// Extract reads expectedLen bytes back out of luma's usable AC
// coefficients, walking the identical order Embed uses. It returns
// ExtractionIncomplete if fewer usable coefficients exist than
// 8*expectedLen.
func Extract(luma *jpegmodel.Component, expectedLen int) ([]byte, error) {
	out := make([]byte, expectedLen)
	totalBits := expectedLen * 8
	bitIdx := 0

	CoefficientOrder(luma, func(blk *jpegmodel.Block, k int, raster int) bool {
		if bitIdx >= totalBits {
			return false
		}
		c := blk[raster]
		mag := c
		if mag < 0 {
			mag = -mag
		}
		bit := byte(mag & 1)
		byteIdx := bitIdx / 8
		shift := 7 - uint(bitIdx%8)
		out[byteIdx] |= bit << shift
		bitIdx++
		return true
	})

	if bitIdx < totalBits {
		return out[:bitIdx/8], extractionIncomplete(bitIdx / 8)
	}
	return out, nil
}

func messageBit(message []byte, bitIdx int) byte {
	b := message[bitIdx/8]
	shift := 7 - uint(bitIdx%8)
	return (b >> shift) & 1
}
