package jpegencode

import (
	"github.com/nullpixel/jpegsteg/internal/bitio"
	"github.com/nullpixel/jpegsteg/internal/huffman"
	"github.com/nullpixel/jpegsteg/internal/jpegmodel"
	"github.com/nullpixel/jpegsteg/internal/vli"
	"github.com/nullpixel/jpegsteg/internal/zigzag"
)

// emitBlock entropy-codes one 8x8 block of quantized coefficients
// (stored in raster order) through the zigzag scan order, per spec.md
// §4.7's per-block emission procedure. Returns the block's DC value, to
// become the next block's predictor.
func emitBlock(w *bitio.Writer, dc, ac *huffman.Table, blk jpegmodel.Block, predictor int32) int32 {
	dcVal := blk[zigzag.Natural[0]]
	diff := dcVal - predictor
	cat := vli.Category(diff)
	code, length, _ := dc.Code(cat)
	w.WriteBits(uint32(code), length)
	if cat > 0 {
		w.WriteBits(vli.Bitcode(diff, cat), cat)
	}

	lastNonzero := 0
	for k := 1; k <= 63; k++ {
		if blk[zigzag.Natural[k]] != 0 {
			lastNonzero = k
		}
	}

	run := 0
	for k := 1; k <= lastNonzero; k++ {
		v := blk[zigzag.Natural[k]]
		if v == 0 {
			run++
			if run == 16 {
				code, length, _ := ac.Code(0xF0) // ZRL
				w.WriteBits(uint32(code), length)
				run = 0
			}
			continue
		}
		vcat := vli.Category(v)
		sym := uint8(run<<4) | vcat
		code, length, _ := ac.Code(sym)
		w.WriteBits(uint32(code), length)
		w.WriteBits(vli.Bitcode(v, vcat), vcat)
		run = 0
	}
	if lastNonzero < 63 {
		code, length, _ := ac.Code(0x00) // EOB
		w.WriteBits(uint32(code), length)
	}

	return dcVal
}
