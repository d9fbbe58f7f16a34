// Package jpegencode re-emits a compliant baseline JPEG bitstream from
// quantized DCT blocks, or from raw RGBA pixels by running them through
// color conversion and the forward DCT first. Grounded on the teacher's
// segment-emission ordering (lepton/jpeg_writer.go) and bit-writer
// alignment (lepton/bit_writer.go), generalized from Lepton's
// recompression-only "reproduce the original bytes" goal to a standalone
// emitter that always writes Annex K.3 standard Huffman tables (spec.md
// §9: "optimized Huffman is a separate pass").
package jpegencode

import (
	"github.com/nullpixel/jpegsteg/internal/bitio"
	"github.com/nullpixel/jpegsteg/internal/colorconv"
	"github.com/nullpixel/jpegsteg/internal/huffman"
	"github.com/nullpixel/jpegsteg/internal/idct"
	"github.com/nullpixel/jpegsteg/internal/jpegerr"
	"github.com/nullpixel/jpegsteg/internal/jpegmodel"
	"github.com/nullpixel/jpegsteg/internal/quant"
	"github.com/nullpixel/jpegsteg/internal/zigzag"
)

// Options configures one encode call.
type Options struct {
	Quality         int // 1..100, recorded only; EncodeRGBA takes its quality as a parameter and FromQuantized uses the tables it is given
	Comments        []string
	EXIF            []byte
	RestartInterval int
}

// FromQuantized emits a baseline JPEG from an already-quantized Jpeg
// object -- the steganography path. luma and chroma are the quantization
// tables to declare in DQT (in zigzag/natural-storage order); the block
// coefficients themselves are emitted exactly as stored, never rescaled,
// per spec.md §9's "Implementers MUST NOT rescale coefficients."
//
// The emitter always declares 1x1 sampling (spec.md §4.7): if any
// non-luma component's block grid is smaller than the luma grid, its
// blocks are upsampled by replication to match before emission.
func FromQuantized(jp *jpegmodel.Jpeg, luma, chroma [64]int, opts Options) ([]byte, error) {
	if jp.Frame == nil || len(jp.Frame.Components) == 0 {
		return nil, jpegerr.New(jpegerr.TruncatedSegment, "cannot encode a Jpeg with no frame")
	}
	comps := jp.Frame.Components
	width, height := jp.Frame.Width, jp.Frame.Height

	lumaComp := comps[0]
	lumaBlocksX, lumaBlocksY := lumaComp.BlocksPerLine, lumaComp.BlocksPerColumn

	grids := make([][][]jpegmodel.Block, len(comps))
	grids[0] = lumaComp.Blocks
	for i := 1; i < len(comps); i++ {
		grids[i] = upsampleByReplication(comps[i].Blocks, lumaBlocksX, lumaBlocksY)
	}

	dcLuma, dcChroma, acLuma, acChroma := huffman.StandardTables()

	w := bitio.NewWriter()
	writeSOI(w)
	writeJFIF(w)
	if len(opts.EXIF) > 0 {
		writeEXIF(w, opts.EXIF)
	}
	for _, c := range opts.Comments {
		writeCOM(w, c)
	}
	writeDQT(w, 0, luma)
	if len(comps) > 1 {
		writeDQT(w, 1, chroma)
	}
	writeSOF0(w, width, height, len(comps))
	writeDHT(w, 0, huffman.StdDCLuminanceCounts, huffman.StdDCLuminanceValues)
	writeDHT(w, 0x10, huffman.StdACLuminanceCounts, huffman.StdACLuminanceValues)
	if len(comps) > 1 {
		writeDHT(w, 1, huffman.StdDCChrominanceCounts, huffman.StdDCChrominanceValues)
		writeDHT(w, 0x11, huffman.StdACChrominanceCounts, huffman.StdACChrominanceValues)
	}
	writeSOS(w, len(comps))

	var predictors [4]int32
	tableFor := func(i int) (*huffman.Table, *huffman.Table) {
		if i == 0 {
			return dcLuma, acLuma
		}
		return dcChroma, acChroma
	}

	rows, cols := lumaBlocksY, lumaBlocksX
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			for i := range comps {
				dc, ac := tableFor(i)
				blk := grids[i][row][col]
				predictors[i] = emitBlock(w, dc, ac, blk, predictors[i])
			}
		}
	}

	w.AlignFlush()
	writeEOI(w)
	return w.Bytes(), nil
}

// EncodeRGBA encodes raw interleaved RGBA pixels (row-major, 4 bytes per
// pixel) into a baseline JPEG at the given quality, per spec.md §4.5/§4.7
// (the "encode_rgba" entry point, used when there are no pre-existing
// quantized blocks to preserve).
func EncodeRGBA(rgba []byte, width, height, quality int, opts Options) ([]byte, error) {
	if len(rgba) < width*height*4 {
		return nil, jpegerr.New(jpegerr.TruncatedSegment, "RGBA buffer shorter than width*height*4")
	}

	lumaQ, chromaQ := quant.BuildLumaChroma(quality)
	var lumaRaster, chromaRaster [64]int
	for zz := 0; zz < 64; zz++ {
		lumaRaster[zigzag.Natural[zz]] = lumaQ[zz]
		chromaRaster[zigzag.Natural[zz]] = chromaQ[zz]
	}

	blocksX := ceilDiv(width, 8)
	blocksY := ceilDiv(height, 8)

	frame := &jpegmodel.Frame{Precision: 8, Width: width, Height: height, MaxH: 1, MaxV: 1,
		MCUsPerLine: blocksX, MCUsPerCol: blocksY}
	y := &jpegmodel.Component{ID: 1, H: 1, V: 1, BlocksPerLine: blocksX, BlocksPerColumn: blocksY}
	cb := &jpegmodel.Component{ID: 2, H: 1, V: 1, BlocksPerLine: blocksX, BlocksPerColumn: blocksY}
	cr := &jpegmodel.Component{ID: 3, H: 1, V: 1, BlocksPerLine: blocksX, BlocksPerColumn: blocksY}
	y.AllocBlocks()
	cb.AllocBlocks()
	cr.AllocBlocks()
	frame.Components = []*jpegmodel.Component{y, cb, cr}

	for by := 0; by < blocksY; by++ {
		for bx := 0; bx < blocksX; bx++ {
			var ySamples, cbSamples, crSamples [64]uint8
			for dy := 0; dy < 8; dy++ {
				for dx := 0; dx < 8; dx++ {
					px, py := bx*8+dx, by*8+dy
					if px >= width {
						px = width - 1
					}
					if py >= height {
						py = height - 1
					}
					off := (py*width + px) * 4
					yy, cbv, crv := colorconv.RGBToYCbCr(rgba[off], rgba[off+1], rgba[off+2])
					idx := dy*8 + dx
					ySamples[idx] = yy
					cbSamples[idx] = cbv
					crSamples[idx] = crv
				}
			}
			y.Blocks[by][bx] = idct.Quantize(idct.FDCT(ySamples), lumaRaster)
			cb.Blocks[by][bx] = idct.Quantize(idct.FDCT(cbSamples), chromaRaster)
			cr.Blocks[by][bx] = idct.Quantize(idct.FDCT(crSamples), chromaRaster)
		}
	}

	jp := &jpegmodel.Jpeg{Frame: frame}
	opts.Quality = quality
	return FromQuantized(jp, lumaQ, chromaQ, opts)
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

// upsampleByReplication returns a dstX x dstY block grid where each
// destination block is src[row*srcRows/dstY][col*srcCols/dstX], per
// spec.md §4.7's documented chroma fidelity compromise.
func upsampleByReplication(src [][]jpegmodel.Block, dstX, dstY int) [][]jpegmodel.Block {
	srcY := len(src)
	srcX := 0
	if srcY > 0 {
		srcX = len(src[0])
	}
	if srcX == dstX && srcY == dstY {
		return src
	}
	out := make([][]jpegmodel.Block, dstY)
	for row := 0; row < dstY; row++ {
		out[row] = make([]jpegmodel.Block, dstX)
		srow := row * srcY / dstY
		if srow >= srcY {
			srow = srcY - 1
		}
		for col := 0; col < dstX; col++ {
			scol := col * srcX / dstX
			if scol >= srcX {
				scol = srcX - 1
			}
			out[row][col] = src[srow][scol]
		}
	}
	return out
}
