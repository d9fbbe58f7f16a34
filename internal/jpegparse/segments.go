package jpegparse

import (
	"github.com/nullpixel/jpegsteg/internal/huffman"
	"github.com/nullpixel/jpegsteg/internal/jpegerr"
	"github.com/nullpixel/jpegsteg/internal/jpegmodel"
)

// parseSOF parses an SOF0/SOF1/SOF2 segment and allocates every
// component's block grid.
func (p *Parser) parseSOF(jp *jpegmodel.Jpeg, seg []byte, progressive bool) error {
	if len(seg) < 6 {
		return jpegerr.New(jpegerr.TruncatedSegment, "SOF segment too short")
	}
	if jp.Frame != nil {
		return jpegerr.New(jpegerr.TruncatedSegment, "multiple SOF segments")
	}

	precision := seg[0]
	if precision != 8 {
		return jpegerr.New(jpegerr.UnsupportedMode, "only 8-bit sample precision is supported")
	}

	height := int(seg[1])<<8 | int(seg[2])
	width := int(seg[3])<<8 | int(seg[4])
	nComp := int(seg[5])
	if len(seg) < 6+nComp*3 {
		return jpegerr.New(jpegerr.TruncatedSegment, "SOF component list truncated")
	}
	if p.limits.MaxResolutionPixels > 0 && int64(width)*int64(height) > p.limits.MaxResolutionPixels {
		return jpegerr.New(jpegerr.ResourceLimitExceeded, "frame resolution exceeds budget")
	}

	frame := &jpegmodel.Frame{Precision: precision, Width: width, Height: height, Progressive: progressive}
	maxH, maxV := 1, 1
	seen := map[uint8]bool{}
	for i := 0; i < nComp; i++ {
		b := seg[6+i*3:]
		id := b[0]
		h := int(b[1] >> 4)
		v := int(b[1] & 0x0F)
		qIdx := b[2]
		if h < 1 || h > 4 || v < 1 || v > 4 {
			return jpegerr.New(jpegerr.InvalidSamplingFactor, "component sampling factor out of range")
		}
		if seen[id] {
			return jpegerr.New(jpegerr.TruncatedSegment, "duplicate component identifier in SOF")
		}
		seen[id] = true
		if h > maxH {
			maxH = h
		}
		if v > maxV {
			maxV = v
		}
		frame.Components = append(frame.Components, &jpegmodel.Component{ID: id, H: h, V: v, QTableIndex: qIdx})
	}

	frame.MaxH, frame.MaxV = maxH, maxV
	frame.MCUsPerLine = ceilDiv(width, 8*maxH)
	frame.MCUsPerCol = ceilDiv(height, 8*maxV)

	for _, c := range frame.Components {
		c.BlocksPerLine = frame.MCUsPerLine * c.H
		c.BlocksPerColumn = frame.MCUsPerCol * c.V
		nBlocks := int64(c.BlocksPerLine) * int64(c.BlocksPerColumn)
		if err := p.account(nBlocks * 64 * 4); err != nil {
			return err
		}
		c.AllocBlocks()
	}

	jp.Frame = frame
	return nil
}

// parseDQT parses one or more quantization tables out of a DQT segment.
func (p *Parser) parseDQT(jp *jpegmodel.Jpeg, seg []byte) error {
	pos := 0
	for pos < len(seg) {
		pq := seg[pos] >> 4
		tq := seg[pos] & 0x0F
		pos++
		if tq > 3 {
			return jpegerr.New(jpegerr.TruncatedSegment, "quantization table selector out of range")
		}

		table := &[64]int{}
		if pq == 0 {
			if pos+64 > len(seg) {
				return jpegerr.New(jpegerr.TruncatedSegment, "8-bit DQT table truncated")
			}
			for i := 0; i < 64; i++ {
				table[i] = int(seg[pos+i])
			}
			pos += 64
		} else {
			if pos+128 > len(seg) {
				return jpegerr.New(jpegerr.TruncatedSegment, "16-bit DQT table truncated")
			}
			for i := 0; i < 64; i++ {
				table[i] = int(seg[pos+2*i])<<8 | int(seg[pos+2*i+1])
			}
			pos += 128
		}
		jp.QuantTables[tq] = table
	}
	return nil
}

// parseDHT parses one or more Huffman tables out of a DHT segment.
func (p *Parser) parseDHT(jp *jpegmodel.Jpeg, seg []byte) error {
	pos := 0
	for pos < len(seg) {
		if pos+17 > len(seg) {
			return jpegerr.New(jpegerr.TruncatedSegment, "DHT table header truncated")
		}
		class := seg[pos] >> 4 // 0 = DC, 1 = AC
		id := seg[pos] & 0x0F
		pos++
		if id > 3 {
			return jpegerr.New(jpegerr.TruncatedSegment, "Huffman table selector out of range")
		}

		var counts [16]uint8
		total := 0
		for i := 0; i < 16; i++ {
			counts[i] = seg[pos+i]
			total += int(counts[i])
		}
		pos += 16
		if pos+total > len(seg) {
			return jpegerr.New(jpegerr.TruncatedSegment, "DHT value list truncated")
		}
		values := append([]uint8(nil), seg[pos:pos+total]...)
		pos += total

		tbl, err := huffman.Build(counts, values)
		if err != nil {
			return err
		}
		if err := p.account(int64(total) + 512); err != nil {
			return err
		}

		if class == 0 {
			jp.DCTables[id] = tbl
		} else {
			jp.ACTables[id] = tbl
		}
	}
	return nil
}

// parseSOS parses a scan header, resolving each scan component against
// the already-parsed frame and Huffman tables, and returns the spectral
// selection / successive-approximation parameters.
func (p *Parser) parseSOS(jp *jpegmodel.Jpeg, seg []byte) (comps []*scanComponent, ss, se, ah, al int, err error) {
	if jp.Frame == nil {
		return nil, 0, 0, 0, 0, jpegerr.New(jpegerr.MissingSOF, "SOS without a preceding SOF")
	}
	if len(seg) < 1 {
		return nil, 0, 0, 0, 0, jpegerr.New(jpegerr.TruncatedSegment, "SOS segment empty")
	}
	ns := int(seg[0])
	if ns < 1 || ns > 4 || len(seg) < 1+ns*2+3 {
		return nil, 0, 0, 0, 0, jpegerr.New(jpegerr.TruncatedSegment, "SOS component list truncated")
	}

	for i := 0; i < ns; i++ {
		b := seg[1+i*2:]
		id := b[0]
		dcSel := b[1] >> 4
		acSel := b[1] & 0x0F
		c := jp.Frame.ComponentByID(id)
		if c == nil {
			return nil, 0, 0, 0, 0, jpegerr.New(jpegerr.TruncatedSegment, "SOS references an unknown component id")
		}
		c.DCTableIndex, c.ACTableIndex = dcSel, acSel
		comps = append(comps, &scanComponent{comp: c, dcTable: jp.DCTables[dcSel], acTable: jp.ACTables[acSel]})
	}

	tail := seg[1+ns*2:]
	ss = int(tail[0])
	se = int(tail[1])
	ah = int(tail[2] >> 4)
	al = int(tail[2] & 0x0F)
	if ss < 0 || se > 63 || ss > se {
		return nil, 0, 0, 0, 0, jpegerr.New(jpegerr.TruncatedSegment, "invalid spectral selection in SOS")
	}
	return comps, ss, se, ah, al, nil
}

func (p *Parser) parseAPP0(jp *jpegmodel.Jpeg, seg []byte) {
	if len(seg) < 5 || string(seg[:5]) != "JFIF\x00" {
		return
	}
	j := &jpegmodel.JFIF{}
	if len(seg) >= 14 {
		j.VersionMajor, j.VersionMinor = seg[5], seg[6]
		j.DensityUnits = seg[7]
		j.DensityX = uint16(seg[8])<<8 | uint16(seg[9])
		j.DensityY = uint16(seg[10])<<8 | uint16(seg[11])
		j.ThumbnailWidth = seg[12]
		j.ThumbnailHeight = seg[13]
	}
	jp.JFIF = j
}

func (p *Parser) parseAPP1(jp *jpegmodel.Jpeg, seg []byte) {
	if len(seg) < 5 || string(seg[:5]) != "Exif\x00" {
		return
	}
	jp.EXIF = append([]byte(nil), seg[5:]...)
}

func (p *Parser) parseAPP14(jp *jpegmodel.Jpeg, seg []byte) {
	if len(seg) < 6 || string(seg[:6]) != "Adobe\x00" {
		return
	}
	a := &jpegmodel.Adobe{}
	if len(seg) >= 12 {
		a.Version = seg[6]
		a.Flags0 = uint16(seg[7])<<8 | uint16(seg[8])
		a.Flags1 = uint16(seg[9])<<8 | uint16(seg[10])
		a.ColorTransform = seg[11]
	}
	jp.Adobe = a
}
