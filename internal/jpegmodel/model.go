// Package jpegmodel holds the data model shared by the parser and the
// encoder: quantization/Huffman tables, frame/component descriptors, and
// the quantized-block grids the steganography layer mutates in place.
// Grounded on lepton's JpegHeader/ComponentInfo/BlockBasedImage shape
// (lepton/jpeg_header.go, lepton/component_info.go,
// lepton/block_based_image.go), generalized from Lepton's
// recompression-only fields to the full parse/mutate/re-encode lifecycle
// spec.md §3 describes.
package jpegmodel

import "github.com/nullpixel/jpegsteg/internal/huffman"

// Block is one 8x8 block of quantized DCT coefficients in raster
// (row-major) order; zigzag.Natural maps a zigzag index into it.
type Block [64]int32

// Component describes one color component (Y, Cb, Cr, ...).
type Component struct {
	ID           uint8
	H, V         int // horizontal/vertical sampling factors, 1..4
	QTableIndex  uint8
	DCTableIndex uint8
	ACTableIndex uint8

	BlocksPerLine   int
	BlocksPerColumn int

	// Blocks is a BlocksPerColumn x BlocksPerLine grid, row-major.
	Blocks [][]Block

	// dcPredictor is the running DC predictor used during decode (the
	// encoder keeps its own predictors).
	// It is reset to 0 at the start of a scan and on every restart marker.
	dcPredictor int32
}

// DCPredictor returns the component's current running DC predictor.
func (c *Component) DCPredictor() int32 { return c.dcPredictor }

// SetDCPredictor sets the component's running DC predictor.
func (c *Component) SetDCPredictor(v int32) { c.dcPredictor = v }

// ResetDCPredictor zeroes the running DC predictor (on scan start or RST).
func (c *Component) ResetDCPredictor() { c.dcPredictor = 0 }

// BlockAt returns the block at (row, col), or nil if out of range.
func (c *Component) BlockAt(row, col int) *Block {
	if row < 0 || row >= len(c.Blocks) {
		return nil
	}
	if col < 0 || col >= len(c.Blocks[row]) {
		return nil
	}
	return &c.Blocks[row][col]
}

// AllocBlocks allocates the component's block grid according to
// BlocksPerColumn/BlocksPerLine.
func (c *Component) AllocBlocks() {
	c.Blocks = make([][]Block, c.BlocksPerColumn)
	for i := range c.Blocks {
		c.Blocks[i] = make([]Block, c.BlocksPerLine)
	}
}

// Frame describes the decoded/encoded image's geometry.
type Frame struct {
	Precision    uint8 // must be 8
	Width        int
	Height       int
	Components   []*Component
	MaxH, MaxV   int
	MCUsPerLine  int
	MCUsPerCol   int
	Progressive  bool
}

// ComponentByID returns the component with the given JPEG component ID.
func (f *Frame) ComponentByID(id uint8) *Component {
	for _, c := range f.Components {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// JFIF holds a parsed APP0 JFIF record.
type JFIF struct {
	VersionMajor, VersionMinor uint8
	DensityUnits               uint8
	DensityX, DensityY         uint16
	ThumbnailWidth             uint8
	ThumbnailHeight            uint8
}

// Adobe holds a parsed APP14 Adobe record.
type Adobe struct {
	Version       uint8
	Flags0        uint16
	Flags1        uint16
	ColorTransform uint8
}

// Jpeg is the top-level parsed-or-to-be-encoded object: a frame plus its
// supporting tables and optional metadata.
type Jpeg struct {
	Frame *Frame

	QuantTables [4]*[64]int // indexed 0..3, natural (zigzag-storage) order
	DCTables    [4]*huffman.Table
	ACTables    [4]*huffman.Table

	JFIF     *JFIF
	Adobe    *Adobe
	EXIF     []byte // raw APP1 payload tail, after "Exif\0"
	Comments []string

	RestartInterval int
}
