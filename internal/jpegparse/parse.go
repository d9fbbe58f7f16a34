// Package jpegparse decodes baseline and progressive JPEG bitstreams into
// the shared jpegmodel representation, exposing the quantized DCT blocks
// the steganography layer needs rather than only reconstructed pixels.
// Grounded on the teacher's marker-driven header scan
// (lepton/jpeg_read.go's parseJpegHeaderFull) and entropy-decode loop
// (lepton/jpeg_read.go's readBaselineScan), generalized from Lepton's
// recompression-only needs to full SOF0/1/2 + DQT/DHT/SOS/DRI/APPn/COM
// parsing and both baseline and progressive entropy decode.
package jpegparse

import (
	"github.com/nullpixel/jpegsteg/internal/huffman"
	"github.com/nullpixel/jpegsteg/internal/jpegerr"
	"github.com/nullpixel/jpegsteg/internal/jpegmodel"
)

const (
	markerSOI   = 0xD8
	markerEOI   = 0xD9
	markerSOF0  = 0xC0
	markerSOF1  = 0xC1
	markerSOF2  = 0xC2
	markerDHT   = 0xC4
	markerDQT   = 0xDB
	markerDRI   = 0xDD
	markerSOS   = 0xDA
	markerDNL   = 0xDC
	markerCOM   = 0xFE
	markerAPP0  = 0xE0
	markerAPP1  = 0xE1
	markerAPP14 = 0xEE
	markerRST0  = 0xD0
	markerTEM   = 0x01
)

// Limits bounds how much memory and how many pixels a single Parse call
// may consume. It is reset at the start of every Parse call, matching
// spec.md §5's "allocated_bytes counter ... reset before every top-level
// decode call" -- a Parser is not safe to share across concurrent Parse
// calls for that reason.
type Limits struct {
	MaxMemoryBytes      int64
	MaxResolutionPixels int64
}

// DefaultLimits comfortably covers ordinary photographs while rejecting
// pathological inputs, e.g. a crafted SOF claiming a multi-gigapixel
// frame.
var DefaultLimits = Limits{
	MaxMemoryBytes:      256 << 20,
	MaxResolutionPixels: 64_000_000,
}

// Parser decodes JPEG bitstreams under a resettable resource budget.
type Parser struct {
	limits    Limits
	allocated int64
	tolerant  bool
}

// New creates a Parser with the given limits.
func New(limits Limits) *Parser {
	return &Parser{limits: limits}
}

// SetTolerant enables tolerant mode: a truncated entropy segment mid-scan
// is accepted as a short decode instead of failing the whole parse
// (spec.md §4.12).
func (p *Parser) SetTolerant(v bool) { p.tolerant = v }

func (p *Parser) account(n int64) error {
	p.allocated += n
	if p.limits.MaxMemoryBytes > 0 && p.allocated > p.limits.MaxMemoryBytes {
		return jpegerr.New(jpegerr.ResourceLimitExceeded, "allocation budget exceeded")
	}
	return nil
}

// ParseDefault decodes data using DefaultLimits.
func ParseDefault(data []byte) (*jpegmodel.Jpeg, error) {
	return New(DefaultLimits).Parse(data)
}

// Parse decodes a complete JPEG byte stream into a Jpeg object.
func (p *Parser) Parse(data []byte) (*jpegmodel.Jpeg, error) {
	p.allocated = 0

	if len(data) < 2 || data[0] != 0xFF || data[1] != markerSOI {
		return nil, jpegerr.New(jpegerr.MissingSOI, "input does not start with SOI").AtOffset(0)
	}

	jp := &jpegmodel.Jpeg{}
	pos := 2
	var sawSOF, sawSOS bool

	for {
		if pos+1 >= len(data) {
			if !sawSOF {
				return nil, jpegerr.New(jpegerr.MissingSOF, "stream ended before a SOF segment").AtOffset(int64(pos))
			}
			if p.tolerant && sawSOS {
				return jp, nil // input ended inside or after a scan: keep the partial decode
			}
			return nil, jpegerr.New(jpegerr.TruncatedSegment, "truncated after marker scan").AtOffset(int64(pos))
		}
		if data[pos] != 0xFF {
			return nil, jpegerr.New(jpegerr.UnknownMarker, "expected a marker").AtOffset(int64(pos))
		}

		mpos := pos
		for mpos < len(data) && data[mpos] == 0xFF {
			mpos++
		}
		if mpos >= len(data) {
			if !sawSOF {
				return nil, jpegerr.New(jpegerr.MissingSOF, "stream ended inside a marker").AtOffset(int64(pos))
			}
			return nil, jpegerr.New(jpegerr.TruncatedSegment, "truncated marker").AtOffset(int64(pos))
		}
		marker := data[mpos]
		pos = mpos + 1

		switch {
		case marker == markerTEM || (marker >= markerRST0 && marker <= markerRST0+7):
			continue // standalone or stray markers with no length field

		case marker == markerEOI:
			if !sawSOF {
				return nil, jpegerr.New(jpegerr.MissingSOF, "EOI reached before any SOF segment").AtOffset(int64(pos))
			}
			return jp, nil

		case marker == markerSOF0 || marker == markerSOF1 || marker == markerSOF2:
			seg, np, err := readSegment(data, pos)
			if err != nil {
				return nil, err
			}
			if err := p.parseSOF(jp, seg, marker == markerSOF2); err != nil {
				return nil, err
			}
			sawSOF = true
			pos = np

		case marker == markerDQT:
			seg, np, err := readSegment(data, pos)
			if err != nil {
				return nil, err
			}
			if err := p.parseDQT(jp, seg); err != nil {
				return nil, err
			}
			pos = np

		case marker == markerDHT:
			seg, np, err := readSegment(data, pos)
			if err != nil {
				return nil, err
			}
			if err := p.parseDHT(jp, seg); err != nil {
				return nil, err
			}
			pos = np

		case marker == markerDRI:
			seg, np, err := readSegment(data, pos)
			if err != nil {
				return nil, err
			}
			if len(seg) < 2 {
				return nil, jpegerr.New(jpegerr.TruncatedSegment, "DRI segment too short").AtOffset(int64(pos))
			}
			jp.RestartInterval = int(seg[0])<<8 | int(seg[1])
			pos = np

		case marker == markerDNL:
			_, np, err := readSegment(data, pos)
			if err != nil {
				return nil, err
			}
			pos = np // DNL is ignored, per spec.md's marker table

		case marker == markerAPP0:
			seg, np, err := readSegment(data, pos)
			if err != nil {
				return nil, err
			}
			p.parseAPP0(jp, seg)
			pos = np

		case marker == markerAPP1:
			seg, np, err := readSegment(data, pos)
			if err != nil {
				return nil, err
			}
			p.parseAPP1(jp, seg)
			pos = np

		case marker == markerAPP14:
			seg, np, err := readSegment(data, pos)
			if err != nil {
				return nil, err
			}
			p.parseAPP14(jp, seg)
			pos = np

		case marker == markerCOM:
			seg, np, err := readSegment(data, pos)
			if err != nil {
				return nil, err
			}
			jp.Comments = append(jp.Comments, string(seg))
			pos = np

		case marker >= 0xE2 && marker <= 0xEF:
			_, np, err := readSegment(data, pos)
			if err != nil {
				return nil, err
			}
			pos = np

		case marker == markerSOS:
			if !sawSOF {
				return nil, jpegerr.New(jpegerr.MissingSOF, "SOS reached before any SOF segment").AtOffset(int64(pos))
			}
			seg, np, err := readSegment(data, pos)
			if err != nil {
				return nil, err
			}
			comps, ss, se, ah, al, err := p.parseSOS(jp, seg)
			if err != nil {
				return nil, err
			}
			np2, err := p.decodeScan(jp, data, np, comps, ss, se, ah, al)
			if err != nil {
				return nil, err
			}
			sawSOS = true
			pos = np2

		default:
			if marker >= 0xC3 && marker <= 0xCF && marker != markerDHT {
				return nil, jpegerr.New(jpegerr.UnsupportedMode, "arithmetic, hierarchical or unsupported SOF variant").AtOffset(int64(pos)).AtMarker(marker)
			}
			return nil, jpegerr.New(jpegerr.UnknownMarker, "unrecognized marker").AtOffset(int64(pos)).AtMarker(marker)
		}
	}
}

// readSegment reads a standard 2-byte-length-prefixed marker segment
// starting right after the marker byte, returning its payload (excluding
// the length field) and the offset of the byte following the segment.
func readSegment(data []byte, pos int) ([]byte, int, error) {
	if pos+2 > len(data) {
		return nil, 0, jpegerr.New(jpegerr.TruncatedSegment, "missing segment length").AtOffset(int64(pos))
	}
	length := int(data[pos])<<8 | int(data[pos+1])
	if length < 2 {
		return nil, 0, jpegerr.New(jpegerr.TruncatedSegment, "segment length too small").AtOffset(int64(pos))
	}
	end := pos + length
	if end > len(data) {
		return nil, 0, jpegerr.New(jpegerr.TruncatedSegment, "segment runs past end of input").AtOffset(int64(pos))
	}
	return data[pos+2 : end], end, nil
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// scanComponent binds a scan's per-component table selectors to the
// component and its Huffman tables, resolved once per SOS segment.
type scanComponent struct {
	comp    *jpegmodel.Component
	dcTable *huffman.Table
	acTable *huffman.Table
}
