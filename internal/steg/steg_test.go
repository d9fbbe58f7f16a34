package steg

import (
	"bytes"
	"testing"

	"github.com/nullpixel/jpegsteg/internal/jpegmodel"
)

func TestUsablePredicateBoundary(t *testing.T) {
	cases := []struct {
		k    int
		c    int32
		want bool
	}{
		{0, 5, false},  // DC excluded regardless of magnitude
		{1, 0, false},  // zero excluded
		{1, 1, false},  // |c|<2 excluded
		{1, -1, false}, // |c|<2 excluded
		{1, 2, true},
		{1, -2, true},
		{63, 100, true},
	}
	for _, c := range cases {
		got := Usable(c.k, c.c)
		if got != c.want {
			t.Errorf("Usable(%d, %d) = %v, want %v", c.k, c.c, got, c.want)
		}
	}
}

func buildLumaComponent(blocksX, blocksY int, fill func(row, col, raster int) int32) *jpegmodel.Component {
	c := &jpegmodel.Component{ID: 1, H: 1, V: 1, BlocksPerLine: blocksX, BlocksPerColumn: blocksY}
	c.AllocBlocks()
	for row := 0; row < blocksY; row++ {
		for col := 0; col < blocksX; col++ {
			for raster := 0; raster < 64; raster++ {
				c.Blocks[row][col][raster] = fill(row, col, raster)
			}
		}
	}
	return c
}

func denseLuma(blocksX, blocksY int) *jpegmodel.Component {
	return buildLumaComponent(blocksX, blocksY, func(row, col, raster int) int32 {
		if raster == 0 {
			return 50 // DC, never usable
		}
		return int32(2 + (raster % 5)) // always |c|>=2
	})
}

func TestEmbedExtractRoundTrip(t *testing.T) {
	luma := denseLuma(4, 4)
	msg := []byte("Hello, world!")

	res, err := Embed(luma, msg)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if res.BitsWritten != len(msg)*8 {
		t.Fatalf("expected %d bits written, got %d", len(msg)*8, res.BitsWritten)
	}

	got, err := Extract(luma, len(msg))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !bytes.Equal(got, msg) {
		t.Fatalf("round trip mismatch: got %q, want %q", got, msg)
	}
}

func TestEmbedInsufficientCapacity(t *testing.T) {
	luma := denseLuma(1, 1) // 63 usable AC slots at most
	msg := bytes.Repeat([]byte{0x55}, 20) // 160 bits, needs >63 usable coefficients

	_, err := Embed(luma, msg)
	if err == nil {
		t.Fatal("expected InsufficientCapacity error")
	}
}

func TestExtractionIncomplete(t *testing.T) {
	luma := denseLuma(1, 1)
	_, err := Extract(luma, 20)
	if err == nil {
		t.Fatal("expected ExtractionIncomplete error")
	}
}

// TestSelectorSymmetry checks property #9 through the walk Embed and
// Extract share: the (k, raster) sequence CoefficientOrder yields before
// Embed mutates the grid must equal the sequence it yields afterwards,
// which is the one Extract then follows.
func TestSelectorSymmetry(t *testing.T) {
	luma := denseLuma(3, 2)
	msg := []byte("hi")

	var embedOrder [][3]int
	CoefficientOrder(luma, func(blk *jpegmodel.Block, k int, raster int) bool {
		embedOrder = append(embedOrder, [3]int{k, raster, 0})
		return true
	})

	if _, err := Embed(luma, msg); err != nil {
		t.Fatalf("Embed: %v", err)
	}

	var extractOrder [][3]int
	CoefficientOrder(luma, func(blk *jpegmodel.Block, k int, raster int) bool {
		extractOrder = append(extractOrder, [3]int{k, raster, 0})
		return true
	})

	if len(embedOrder) != len(extractOrder) {
		t.Fatalf("visit count differs: %d vs %d", len(embedOrder), len(extractOrder))
	}
	for i := range embedOrder {
		if embedOrder[i] != extractOrder[i] {
			t.Fatalf("order differs at %d: %v vs %v", i, embedOrder[i], extractOrder[i])
		}
	}
}

func TestEstimateCapacity(t *testing.T) {
	est := EstimateCapacity(4, 4)
	if est.TotalCoefs != 4*4*63 {
		t.Fatalf("unexpected total coefficients: %d", est.TotalCoefs)
	}
	if est.Plain <= est.Weighted {
		t.Fatalf("expected plain estimate > weighted estimate: %d vs %d", est.Plain, est.Weighted)
	}
}
