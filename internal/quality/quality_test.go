package quality

import "testing"

func TestEstimateQualityAtBaseTable(t *testing.T) {
	// The base luminance table itself is the Q50 reference table, so its
	// average should estimate back close to quality 50.
	var blocks [][64]int32
	s := ComputeStats(baseLuma(), baseChroma(), blocks)
	q := EstimateQuality(s)
	if q < 30 || q > 70 {
		t.Fatalf("expected an estimate near 50 for the base table, got %d", q)
	}
}

func TestRecommendClampsToRange(t *testing.T) {
	s := Stats{AvgQuantY: 1, MaxQuantY: 1, AvgQuantC: 1, HFActivity: 0}
	rec := Recommend(s)
	if rec.RecommendedQuality < 25 || rec.RecommendedQuality > 95 {
		t.Fatalf("recommended quality out of range: %d", rec.RecommendedQuality)
	}
}

func TestRecommendAddsForFineDetails(t *testing.T) {
	low := Stats{AvgQuantY: 40, MaxQuantY: 60, AvgQuantC: 40, HFActivity: 0}
	high := low
	high.HFActivity = 20

	lowRec := Recommend(low)
	highRec := Recommend(high)
	if highRec.RecommendedQuality <= lowRec.RecommendedQuality {
		t.Fatalf("expected fine-detail bonus: low=%d high=%d", lowRec.RecommendedQuality, highRec.RecommendedQuality)
	}
	if !highRec.HasFineDetails {
		t.Fatal("expected HasFineDetails to be true")
	}
}

func TestTargetSizeRelabelsStrategy(t *testing.T) {
	s := Stats{AvgQuantY: 20, MaxQuantY: 30, AvgQuantC: 20, HFActivity: 2}
	rec := Recommend(s)
	nudged := TargetSize(rec, 1_000_000, 20_000) // tiny target -> size-optimized
	if nudged.Strategy != "size-optimized" {
		t.Fatalf("expected size-optimized strategy, got %s", nudged.Strategy)
	}
	if nudged.RecommendedQuality >= rec.RecommendedQuality {
		t.Fatalf("expected quality to drop for a tiny target size")
	}
}

func baseLuma() [64]int {
	return [64]int{
		16, 11, 12, 14, 12, 10, 16, 14,
		13, 14, 18, 17, 16, 19, 24, 40,
		26, 24, 22, 22, 24, 49, 35, 37,
		29, 40, 58, 51, 61, 60, 57, 51,
		56, 55, 64, 72, 92, 78, 64, 68,
		87, 69, 55, 56, 80, 109, 81, 87,
		95, 98, 103, 104, 103, 62, 77, 113,
		121, 112, 100, 120, 92, 101, 103, 99,
	}
}

func baseChroma() [64]int {
	return [64]int{
		17, 18, 18, 24, 21, 24, 47, 26,
		26, 47, 99, 66, 56, 66, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
	}
}
