// Package quality estimates a source JPEG's encoding quality from its
// quantization tables and luma coefficient statistics, and derives a
// recommended re-encoding quality plus adapted quantization tables.
// Grounded on spec.md §4.8; no example repo implements this kind of
// heuristic, so the derivation is built directly from the formulas
// spec.md specifies rather than adapted from a teacher file (see
// DESIGN.md).
package quality

import (
	"github.com/nullpixel/jpegsteg/internal/quant"
	"github.com/nullpixel/jpegsteg/internal/zigzag"
)

// Stats summarizes a parsed frame's quantization tables and luma
// high-frequency energy, the inputs the estimator and recommender
// consume.
type Stats struct {
	AvgQuantY  float64
	MaxQuantY  int
	AvgQuantC  float64
	HFActivity float64 // average |coef| at zigzag positions 32..63
}

// ComputeStats derives Stats from a luma quantization table (natural
// order), a chroma quantization table (natural order), and a sample of
// luma blocks (raster order, 64 entries each).
func ComputeStats(lumaTable, chromaTable [64]int, lumaBlocks [][64]int32) Stats {
	var sumY, maxY, sumC int
	for _, v := range lumaTable {
		sumY += v
		if v > maxY {
			maxY = v
		}
	}
	for _, v := range chromaTable {
		sumC += v
	}

	var hfSum int64
	var hfCount int
	for _, blk := range lumaBlocks {
		for zz := 32; zz < 64; zz++ {
			v := blk[zigzag.Natural[zz]]
			if v < 0 {
				v = -v
			}
			hfSum += int64(v)
			hfCount++
		}
	}
	var hfActivity float64
	if hfCount > 0 {
		hfActivity = float64(hfSum) / float64(hfCount)
	}

	return Stats{
		AvgQuantY:  float64(sumY) / 64.0,
		MaxQuantY:  maxY,
		AvgQuantC:  float64(sumC) / 64.0,
		HFActivity: hfActivity,
	}
}

// maxBaseLumaQ50 is max(base_luma_table) at the reference quality the
// estimator's formula is calibrated against (spec.md §4.8).
var maxBaseLumaQ50 = func() int {
	m := 0
	for _, v := range quant.BaseLuminance {
		if v > m {
			m = v
		}
	}
	return m
}()

// EstimateQuality recovers an approximate source encoding quality from
// the average luma quantization table entry, clamped to 1..100.
func EstimateQuality(s Stats) int {
	denom := float64(maxBaseLumaQ50 - 1)
	est := 100.0 - (s.AvgQuantY-1.0)/denom*50.0
	return clampInt(int(est+0.5), 1, 100)
}

// Recommendation is the output of the quality recommender, including the
// adapted tables that must be written verbatim to DQT on re-encode
// (spec.md's "Open Question" resolution: adapted tables are ground
// truth).
type Recommendation struct {
	EstimatedQuality   int
	RecommendedQuality int
	HasFineDetails     bool
	Strategy           string
	LumaTable          [64]int
	ChromaTable        [64]int
}

// Recommend derives a recommended re-encoding quality from frame
// statistics, per spec.md §4.8's decision tree, then builds the adapted
// quantization tables for that quality.
func Recommend(s Stats) Recommendation {
	estimate := EstimateQuality(s)
	highQuality := estimate > 70 && s.MaxQuantY < 50
	hasFineDetails := s.HFActivity > 10

	var rq int
	switch {
	case highQuality:
		rq = maxInt(75, estimate-10)
	case estimate < 30: // "very low" source quality
		rq = maxInt(30, estimate+5)
	default:
		rq = estimate
	}
	if hasFineDetails {
		rq += 5
	}
	rq = clampInt(rq, 25, 95)

	luma, chroma := quant.BuildLumaChroma(rq)
	return Recommendation{
		EstimatedQuality:   estimate,
		RecommendedQuality: rq,
		HasFineDetails:     hasFineDetails,
		Strategy:           "adaptive",
		LumaTable:          luma,
		ChromaTable:        chroma,
	}
}

// TargetSize nudges a recommendation's quality to bias toward a target
// output file size, relabeling the strategy, per spec.md §4.8's optional
// size-targeting pass. sizeHint is typically width*height*3 (an
// uncompressed-size proxy); targetBytes is the caller's desired file
// size.
func TargetSize(rec Recommendation, sizeHint, targetBytes int64) Recommendation {
	if targetBytes <= 0 || sizeHint <= 0 {
		return rec
	}
	ratio := float64(targetBytes) / float64(sizeHint)

	rq := rec.RecommendedQuality
	switch {
	case ratio < 0.05:
		rq -= 20
		rec.Strategy = "size-optimized"
	case ratio < 0.10:
		rq -= 10
		rec.Strategy = "size-optimized"
	case ratio > 0.40:
		rq += 20
		rec.Strategy = "quality-optimized"
	case ratio > 0.25:
		rq += 10
		rec.Strategy = "quality-optimized"
	default:
		if rec.HasFineDetails {
			rec.Strategy = "detail-preserving"
		} else {
			rec.Strategy = "artifact-minimizing"
		}
	}
	rq = clampInt(rq, 25, 95)

	rec.RecommendedQuality = rq
	rec.LumaTable, rec.ChromaTable = quant.BuildLumaChroma(rq)
	return rec
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
