package jpegencode

import (
	"testing"

	"github.com/nullpixel/jpegsteg/internal/jpegmodel"
	"github.com/nullpixel/jpegsteg/internal/jpegparse"
	"github.com/nullpixel/jpegsteg/internal/quant"
)

func buildTinyJpeg(w, h int) *jpegmodel.Jpeg {
	blocksX := ceilDiv(w, 8)
	blocksY := ceilDiv(h, 8)
	frame := &jpegmodel.Frame{Precision: 8, Width: w, Height: h, MaxH: 1, MaxV: 1,
		MCUsPerLine: blocksX, MCUsPerCol: blocksY}
	y := &jpegmodel.Component{ID: 1, H: 1, V: 1, BlocksPerLine: blocksX, BlocksPerColumn: blocksY}
	cb := &jpegmodel.Component{ID: 2, H: 1, V: 1, BlocksPerLine: blocksX, BlocksPerColumn: blocksY}
	cr := &jpegmodel.Component{ID: 3, H: 1, V: 1, BlocksPerLine: blocksX, BlocksPerColumn: blocksY}
	y.AllocBlocks()
	cb.AllocBlocks()
	cr.AllocBlocks()
	frame.Components = []*jpegmodel.Component{y, cb, cr}

	for row := 0; row < blocksY; row++ {
		for col := 0; col < blocksX; col++ {
			y.Blocks[row][col][0] = 100
			y.Blocks[row][col][1] = 4
			cb.Blocks[row][col][0] = 10
			cr.Blocks[row][col][0] = -10
		}
	}
	return &jpegmodel.Jpeg{Frame: frame}
}

func TestFromQuantizedAcceptsSelfOutput(t *testing.T) {
	jp := buildTinyJpeg(16, 16)
	luma, chroma := quant.BuildLumaChroma(80)

	out, err := FromQuantized(jp, luma, chroma, Options{})
	if err != nil {
		t.Fatalf("FromQuantized: %v", err)
	}

	parsed, err := jpegparse.ParseDefault(out)
	if err != nil {
		t.Fatalf("re-parsing encoder output failed: %v", err)
	}
	if parsed.Frame.Width != 16 || parsed.Frame.Height != 16 {
		t.Fatalf("dimensions mismatch: got %dx%d", parsed.Frame.Width, parsed.Frame.Height)
	}
	if len(parsed.Frame.Components) != 3 {
		t.Fatalf("expected 3 components, got %d", len(parsed.Frame.Components))
	}
	yc := parsed.Frame.Components[0]
	if yc.BlocksPerLine != 2 || yc.BlocksPerColumn != 2 {
		t.Fatalf("unexpected Y block grid: %dx%d", yc.BlocksPerLine, yc.BlocksPerColumn)
	}
	if yc.Blocks[0][0][0] != 100 {
		t.Fatalf("DC value did not round trip: got %d", yc.Blocks[0][0][0])
	}
	if yc.Blocks[0][0][1] != 4 {
		t.Fatalf("AC value did not round trip: got %d", yc.Blocks[0][0][1])
	}
}

func TestEncodeRGBAThenParse(t *testing.T) {
	w, h := 8, 8
	rgba := make([]byte, w*h*4)
	for i := range rgba {
		if i%4 == 3 {
			rgba[i] = 255
		} else {
			rgba[i] = 128
		}
	}
	out, err := EncodeRGBA(rgba, w, h, 85, Options{})
	if err != nil {
		t.Fatalf("EncodeRGBA: %v", err)
	}
	parsed, err := jpegparse.ParseDefault(out)
	if err != nil {
		t.Fatalf("re-parsing EncodeRGBA output failed: %v", err)
	}
	if parsed.Frame.Width != w || parsed.Frame.Height != h {
		t.Fatalf("dimensions mismatch: got %dx%d", parsed.Frame.Width, parsed.Frame.Height)
	}
}
