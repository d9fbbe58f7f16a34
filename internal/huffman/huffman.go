// Package huffman builds canonical JPEG Huffman tables from
// (code-lengths, values) pairs, for both decode (bit-at-a-time tree walk)
// and encode (symbol -> code/length map).
package huffman

import (
	"github.com/nullpixel/jpegsteg/internal/bitio"
	"github.com/nullpixel/jpegsteg/internal/jpegerr"
)

// code pairs a canonical Huffman code with its bit length.
type code struct {
	value  uint16
	length uint8
}

// Table is a constructed Huffman table usable for both decode and encode.
// Decode uses minCode/maxCode/valPtr (the classic JPEG Annex C/F derived
// tables); encode uses codes, a direct symbol -> (code,length) map.
type Table struct {
	counts  [17]uint8 // counts[l] = number of codes of length l (1..16)
	symbols []uint8   // symbols in code order
	minCode [17]int32
	maxCode [17]int32 // -1 means no codes of this length
	valPtr  [17]int32
	codes   [256]code // encode map, indexed by symbol
	hasCode [256]bool
}

// Build constructs a Table from JPEG's standard DHT representation:
// counts[1..16] is the number of codes of each bit length, and values is
// the flat list of symbols in code-assignment order.
func Build(counts [16]uint8, values []uint8) (*Table, error) {
	total := 0
	for _, c := range counts {
		total += int(c)
	}
	if total != len(values) {
		return nil, jpegerr.New(jpegerr.HuffmanMalformed, "code length counts do not match value count")
	}
	if total > 256 {
		return nil, jpegerr.New(jpegerr.HuffmanOverflow, "too many symbols for a Huffman table")
	}

	t := &Table{symbols: append([]uint8(nil), values...)}
	for i, c := range counts {
		t.counts[i+1] = c
	}

	// Canonical code assignment: walk lengths 1..16, each code is the
	// previous incremented, left-shifted when length grows.
	var c int32
	symIdx := 0
	for length := 1; length <= 16; length++ {
		n := int(t.counts[length])
		t.minCode[length] = c
		t.valPtr[length] = int32(symIdx) - c
		if n > 0 {
			t.maxCode[length] = c + int32(n) - 1
			if t.maxCode[length] >= (int32(1) << uint(length)) {
				return nil, jpegerr.New(jpegerr.HuffmanOverflow, "canonical code overflowed its bit length")
			}
			for i := 0; i < n; i++ {
				sym := t.symbols[symIdx]
				t.codes[sym] = code{value: uint16(c), length: uint8(length)}
				t.hasCode[sym] = true
				c++
				symIdx++
			}
		} else {
			t.maxCode[length] = -1
		}
		c <<= 1
	}

	return t, nil
}

// Code returns the (code, length) for symbol sym, for the encoder.
func (t *Table) Code(sym uint8) (value uint16, length uint8, ok bool) {
	if !t.hasCode[sym] {
		return 0, 0, false
	}
	c := t.codes[sym]
	return c.value, c.length, true
}

// Decode walks r one bit at a time and returns the next symbol.
func (t *Table) Decode(r *bitio.Reader) (uint8, error) {
	var code int32
	for length := 1; length <= 16; length++ {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		code = (code << 1) | int32(bit)
		if t.maxCode[length] >= 0 && code <= t.maxCode[length] && code >= t.minCode[length] {
			idx := t.valPtr[length] + code
			if idx < 0 || int(idx) >= len(t.symbols) {
				return 0, jpegerr.New(jpegerr.InvalidHuffmanCode, "decoded index out of range")
			}
			return t.symbols[idx], nil
		}
	}
	return 0, jpegerr.New(jpegerr.InvalidHuffmanCode, "no matching code after 16 bits")
}
