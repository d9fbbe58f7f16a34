package jpegsteg

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// checkerboardRGBA builds pixel data with enough AC energy per block for
// the steganography layer to have usable coefficients to write into.
func checkerboardRGBA(w, h int) []byte {
	out := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := (y*w + x) * 4
			v := uint8(30)
			if (x/4+y/4)%2 == 0 {
				v = 220
			}
			out[off] = v
			out[off+1] = v / 2
			out[off+2] = 255 - v
			out[off+3] = 255
		}
	}
	return out
}

func TestEmbedExtractRoundTripThroughEncodeRGBA(t *testing.T) {
	img, err := EncodeRGBA(checkerboardRGBA(64, 64), 64, 64, 90, nil, nil)
	if err != nil {
		t.Fatalf("EncodeRGBA: %v", err)
	}

	msg := "hello jpeg"
	out, err := Embed(img, msg, Options{Quality: 90})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if out.Stats.QualityUsed != 90 {
		t.Fatalf("expected quality 90, got %d", out.Stats.QualityUsed)
	}

	n := len(msg)
	got, err := Extract(out.ImageBytes, &n, Options{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != msg {
		t.Fatalf("round trip mismatch: got %q want %q", got, msg)
	}
}

func TestEmbedPreservesOriginalSizeStat(t *testing.T) {
	img, err := EncodeRGBA(checkerboardRGBA(32, 32), 32, 32, 80, nil, nil)
	if err != nil {
		t.Fatalf("EncodeRGBA: %v", err)
	}

	out, err := Embed(img, "hi", Options{Quality: 80})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	want := EmbedStats{
		CoefficientsUsed:        out.Stats.CoefficientsUsed, // not asserted here
		OriginalSize:            len(img),
		FinalSize:               out.Stats.FinalSize, // not asserted here
		QualityUsed:             80,
		AverageCoefficientWeight: out.Stats.AverageCoefficientWeight, // not asserted here
	}
	got := out.Stats
	got.CoefficientsUsed = want.CoefficientsUsed
	got.FinalSize = want.FinalSize
	got.AverageCoefficientWeight = want.AverageCoefficientWeight
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestEstimateCapacityReportsBothHeuristics(t *testing.T) {
	img, err := EncodeRGBA(checkerboardRGBA(64, 64), 64, 64, 90, nil, nil)
	if err != nil {
		t.Fatalf("EncodeRGBA: %v", err)
	}

	report, err := EstimateCapacity(img)
	if err != nil {
		t.Fatalf("EstimateCapacity: %v", err)
	}
	if report.PlainBytes <= report.WeightedBytes {
		t.Fatalf("expected plain estimate (%d) > weighted estimate (%d)", report.PlainBytes, report.WeightedBytes)
	}
}

func TestExtractWithExactLenRoundTrips(t *testing.T) {
	img, err := EncodeRGBA(checkerboardRGBA(64, 64), 64, 64, 90, nil, nil)
	if err != nil {
		t.Fatalf("EncodeRGBA: %v", err)
	}
	report, err := EstimateCapacity(img)
	if err != nil {
		t.Fatalf("EstimateCapacity: %v", err)
	}
	if report.PlainBytes < 4 {
		t.Skip("checkerboard image too small to carry a message at this size")
	}

	msg := "ok!!"
	out, err := Embed(img, msg, Options{Quality: 90})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	n := len(msg)
	got, err := Extract(out.ImageBytes, &n, Options{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != msg {
		t.Fatalf("round trip mismatch: got %q want %q", got, msg)
	}
}
