package jpegparse

import (
	"github.com/nullpixel/jpegsteg/internal/bitio"
	"github.com/nullpixel/jpegsteg/internal/jpegerr"
	"github.com/nullpixel/jpegsteg/internal/jpegmodel"
	"github.com/nullpixel/jpegsteg/internal/vli"
	"github.com/nullpixel/jpegsteg/internal/zigzag"
)

// decodeScan drives one entropy-coded scan -- the whole image for a
// baseline SOS, or one spectral/successive-approximation pass for a
// progressive one -- starting right after the SOS segment, and returns
// the offset of the marker that follows the entropy data.
func (p *Parser) decodeScan(jp *jpegmodel.Jpeg, data []byte, start int, comps []*scanComponent, ss, se, ah, al int) (int, error) {
	r := bitio.NewReader(data, start)

	var err error
	switch {
	case !jp.Frame.Progressive:
		for _, sc := range comps {
			sc.comp.ResetDCPredictor()
		}
		err = p.decodeBaselineScan(data, r, jp.Frame, comps, jp.RestartInterval)
	case ss == 0:
		err = p.decodeProgressiveDCScan(data, jp.Frame, r, comps, ah, al, jp.RestartInterval)
	default:
		err = p.decodeProgressiveACScan(data, r, comps[0], ss, se, ah, al, jp.RestartInterval)
	}
	if err != nil {
		return 0, err
	}
	return r.Pos(), nil
}

func isTruncation(err error) bool {
	je, ok := err.(*jpegerr.Error)
	return ok && je.Code == jpegerr.UnexpectedEOF
}

// expectRestart discards any unread bits left in the current entropy
// byte, then requires and consumes an RSTm marker at the reader's
// current position.
func expectRestart(data []byte, r *bitio.Reader) error {
	r.AlignToByte()
	pos := r.Pos()
	if pos+1 >= len(data) {
		return jpegerr.New(jpegerr.UnexpectedEOF, "truncated restart marker").AtOffset(int64(pos))
	}
	if data[pos] != 0xFF || data[pos+1] < markerRST0 || data[pos+1] > markerRST0+7 {
		return jpegerr.New(jpegerr.TruncatedSegment, "expected a restart marker").AtOffset(int64(pos))
	}
	r.SeekMarker(pos + 2)
	return nil
}

// decodeBaselineScan decodes every block of a non-progressive scan, in
// MCU order for interleaved (multi-component) scans or directly in
// block-grid order for a single-component scan.
func (p *Parser) decodeBaselineScan(data []byte, r *bitio.Reader, frame *jpegmodel.Frame, comps []*scanComponent, restart int) error {
	n := 0

	onUnitDone := func() error {
		n++
		if restart > 0 && n%restart == 0 {
			if err := expectRestart(data, r); err != nil {
				return err
			}
			for _, sc := range comps {
				sc.comp.ResetDCPredictor()
			}
		}
		return nil
	}

	if len(comps) == 1 {
		sc := comps[0]
		for row := 0; row < sc.comp.BlocksPerColumn; row++ {
			for col := 0; col < sc.comp.BlocksPerLine; col++ {
				if err := decodeBaselineBlock(r, sc, sc.comp.BlockAt(row, col)); err != nil {
					if p.tolerant && isTruncation(err) {
						return nil
					}
					return err
				}
				if err := onUnitDone(); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for mcuRow := 0; mcuRow < frame.MCUsPerCol; mcuRow++ {
		for mcuCol := 0; mcuCol < frame.MCUsPerLine; mcuCol++ {
			for _, sc := range comps {
				for dy := 0; dy < sc.comp.V; dy++ {
					for dx := 0; dx < sc.comp.H; dx++ {
						blk := sc.comp.BlockAt(mcuRow*sc.comp.V+dy, mcuCol*sc.comp.H+dx)
						if blk == nil {
							continue
						}
						if err := decodeBaselineBlock(r, sc, blk); err != nil {
							if p.tolerant && isTruncation(err) {
								return nil
							}
							return err
						}
					}
				}
			}
			if err := onUnitDone(); err != nil {
				return err
			}
		}
	}
	return nil
}

// decodeBaselineBlock decodes one full 8x8 block: DC difference then the
// AC run/category sequence up to EOB, per spec.md §4.6.
func decodeBaselineBlock(r *bitio.Reader, sc *scanComponent, blk *jpegmodel.Block) error {
	t, err := sc.dcTable.Decode(r)
	if err != nil {
		return err
	}
	var diff int32
	if t > 0 {
		bits, err := r.ReadN(t)
		if err != nil {
			return err
		}
		diff = vli.Extend(bits, t)
	}
	pred := sc.comp.DCPredictor() + diff
	sc.comp.SetDCPredictor(pred)
	blk[zigzag.Natural[0]] = pred

	k := 1
	for k <= 63 {
		rs, err := sc.acTable.Decode(r)
		if err != nil {
			return err
		}
		s := rs & 0x0F
		run := rs >> 4
		if s == 0 {
			if run == 15 {
				k += 16
				continue
			}
			break // EOB
		}
		k += int(run)
		if k > 63 {
			return jpegerr.New(jpegerr.InvalidHuffmanCode, "AC run exceeded block length")
		}
		bits, err := r.ReadN(s)
		if err != nil {
			return err
		}
		blk[zigzag.Natural[k]] = vli.Extend(bits, s)
		k++
	}
	return nil
}

// decodeProgressiveDCScan handles Ss=Se=0 progressive scans: the DC
// first pass (Ah=0) or a DC refinement pass (Ah>0, a single raw bit per
// block).
func (p *Parser) decodeProgressiveDCScan(data []byte, frame *jpegmodel.Frame, r *bitio.Reader, comps []*scanComponent, ah, al, restart int) error {
	if ah == 0 {
		for _, sc := range comps {
			sc.comp.ResetDCPredictor()
		}
	}

	decodeUnit := func(sc *scanComponent, blk *jpegmodel.Block) error {
		if ah == 0 {
			t, err := sc.dcTable.Decode(r)
			if err != nil {
				return err
			}
			var diff int32
			if t > 0 {
				bits, err := r.ReadN(t)
				if err != nil {
					return err
				}
				diff = vli.Extend(bits, t)
			}
			pred := sc.comp.DCPredictor() + diff
			sc.comp.SetDCPredictor(pred)
			blk[zigzag.Natural[0]] = pred << uint(al)
			return nil
		}
		bit, err := r.ReadBit()
		if err != nil {
			return err
		}
		if bit != 0 {
			blk[zigzag.Natural[0]] |= 1 << uint(al)
		}
		return nil
	}

	n := 0
	onUnitDone := func() error {
		n++
		if restart > 0 && n%restart == 0 {
			if err := expectRestart(data, r); err != nil {
				return err
			}
			if ah == 0 {
				for _, sc := range comps {
					sc.comp.ResetDCPredictor()
				}
			}
		}
		return nil
	}

	if len(comps) == 1 {
		sc := comps[0]
		for row := 0; row < sc.comp.BlocksPerColumn; row++ {
			for col := 0; col < sc.comp.BlocksPerLine; col++ {
				if err := decodeUnit(sc, sc.comp.BlockAt(row, col)); err != nil {
					if p.tolerant && isTruncation(err) {
						return nil
					}
					return err
				}
				if err := onUnitDone(); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for mcuRow := 0; mcuRow < frame.MCUsPerCol; mcuRow++ {
		for mcuCol := 0; mcuCol < frame.MCUsPerLine; mcuCol++ {
			for _, sc := range comps {
				for dy := 0; dy < sc.comp.V; dy++ {
					for dx := 0; dx < sc.comp.H; dx++ {
						blk := sc.comp.BlockAt(mcuRow*sc.comp.V+dy, mcuCol*sc.comp.H+dx)
						if blk == nil {
							continue
						}
						if err := decodeUnit(sc, blk); err != nil {
							if p.tolerant && isTruncation(err) {
								return nil
							}
							return err
						}
					}
				}
			}
			if err := onUnitDone(); err != nil {
				return err
			}
		}
	}
	return nil
}

// decodeProgressiveACScan handles Ss>=1 progressive scans, which are
// always single-component and non-interleaved.
func (p *Parser) decodeProgressiveACScan(data []byte, r *bitio.Reader, sc *scanComponent, ss, se, ah, al, restart int) error {
	eobrun := 0
	n := 0
	for row := 0; row < sc.comp.BlocksPerColumn; row++ {
		for col := 0; col < sc.comp.BlocksPerLine; col++ {
			blk := sc.comp.BlockAt(row, col)
			var err error
			if ah == 0 {
				err = decodeACFirstBlock(r, sc, blk, ss, se, al, &eobrun)
			} else {
				err = decodeACRefineBlock(r, sc, blk, ss, se, al, &eobrun)
			}
			if err != nil {
				if p.tolerant && isTruncation(err) {
					return nil
				}
				return err
			}
			n++
			if restart > 0 && n%restart == 0 {
				if err := expectRestart(data, r); err != nil {
					return err
				}
				eobrun = 0
			}
		}
	}
	return nil
}

// decodeACFirstBlock is the spectral-selection first pass (Ah=0): decode
// run/category pairs from Ss to Se, or start an end-of-band run.
func decodeACFirstBlock(r *bitio.Reader, sc *scanComponent, blk *jpegmodel.Block, ss, se, al int, eobrun *int) error {
	if *eobrun > 0 {
		*eobrun--
		return nil
	}

	k := ss
	for k <= se {
		rs, err := sc.acTable.Decode(r)
		if err != nil {
			return err
		}
		s := rs & 0x0F
		run := int(rs >> 4)
		if s == 0 {
			if run != 15 {
				*eobrun = (1 << uint(run)) - 1
				if run > 0 {
					bits, err := r.ReadN(uint8(run))
					if err != nil {
						return err
					}
					*eobrun += int(bits)
				}
				break
			}
			k += 16
			continue
		}
		k += run
		if k > se {
			return jpegerr.New(jpegerr.InvalidHuffmanCode, "AC run exceeded spectral band")
		}
		bits, err := r.ReadN(s)
		if err != nil {
			return err
		}
		blk[zigzag.Natural[k]] = vli.Extend(bits, s) << uint(al)
		k++
	}
	return nil
}

// decodeACRefineBlock is the spectral-selection refinement pass (Ah>0):
// new nonzero coefficients are introduced as ±(1<<Al), and every
// already-nonzero coefficient in the band may receive one correction
// bit, per the standard progressive-JPEG AC-refine algorithm.
func decodeACRefineBlock(r *bitio.Reader, sc *scanComponent, blk *jpegmodel.Block, ss, se, al int, eobrun *int) error {
	p1 := int32(1) << uint(al)
	m1 := -p1
	k := ss

	if *eobrun == 0 {
		for k <= se {
			rs, err := sc.acTable.Decode(r)
			if err != nil {
				return err
			}
			s := rs & 0x0F
			run := int(rs >> 4)
			var newVal int32

			if s == 0 {
				if run != 15 {
					*eobrun = 1 << uint(run)
					if run > 0 {
						bits, err := r.ReadN(uint8(run))
						if err != nil {
							return err
						}
						*eobrun += int(bits)
					}
					break
				}
				// run == 15: ZRL, skip 16 zero coefficients (applying
				// correction bits to any nonzero ones it passes over).
			} else {
				bit, err := r.ReadBit()
				if err != nil {
					return err
				}
				if bit != 0 {
					newVal = p1
				} else {
					newVal = m1
				}
			}

			for k <= se {
				pos := zigzag.Natural[k]
				if blk[pos] != 0 {
					bit, err := r.ReadBit()
					if err != nil {
						return err
					}
					if bit != 0 && (blk[pos]&p1) == 0 {
						if blk[pos] > 0 {
							blk[pos] += p1
						} else {
							blk[pos] += m1
						}
					}
				} else {
					if run == 0 {
						if s != 0 {
							blk[pos] = newVal
						}
						k++
						break
					}
					run--
				}
				k++
			}
		}
	}

	if *eobrun > 0 {
		for ; k <= se; k++ {
			pos := zigzag.Natural[k]
			if blk[pos] != 0 {
				bit, err := r.ReadBit()
				if err != nil {
					return err
				}
				if bit != 0 && (blk[pos]&p1) == 0 {
					if blk[pos] > 0 {
						blk[pos] += p1
					} else {
						blk[pos] += m1
					}
				}
			}
		}
		*eobrun--
	}
	return nil
}
