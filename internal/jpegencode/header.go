package jpegencode

import "github.com/nullpixel/jpegsteg/internal/bitio"

func writeMarker(w *bitio.Writer, marker byte) {
	w.WriteByte(0xFF)
	w.WriteByte(marker)
}

func writeSOI(w *bitio.Writer) { writeMarker(w, 0xD8) }
func writeEOI(w *bitio.Writer) { writeMarker(w, 0xD9) }

// writeJFIF emits the standard APP0 JFIF segment: version 1.1, density
// 1x1, no thumbnail, per spec.md §6.
func writeJFIF(w *bitio.Writer) {
	writeMarker(w, 0xE0)
	w.WriteWord(16) // length includes itself
	w.WriteBytes([]byte("JFIF\x00"))
	w.WriteByte(1) // version major
	w.WriteByte(1) // version minor
	w.WriteByte(0) // density units: none
	w.WriteWord(1) // Xdensity
	w.WriteWord(1) // Ydensity
	w.WriteByte(0) // thumbnail width
	w.WriteByte(0) // thumbnail height
}

// writeEXIF emits an APP1 segment carrying raw EXIF payload bytes (the
// "Exif\0" tag plus whatever TIFF-structured tail the caller supplied).
func writeEXIF(w *bitio.Writer, exif []byte) {
	writeMarker(w, 0xE1)
	w.WriteWord(uint16(2 + 5 + len(exif)))
	w.WriteBytes([]byte("Exif\x00"))
	w.WriteBytes(exif)
}

func writeCOM(w *bitio.Writer, comment string) {
	writeMarker(w, 0xFE)
	w.WriteWord(uint16(2 + len(comment)))
	w.WriteBytes([]byte(comment))
}

// writeDQT emits a single 8-bit-precision quantization table at selector
// id, in natural (zigzag-storage) order.
func writeDQT(w *bitio.Writer, id uint8, table [64]int) {
	writeMarker(w, 0xDB)
	w.WriteWord(uint16(2 + 1 + 64))
	w.WriteByte(id & 0x0F) // Pq=0 (8-bit), Tq=id
	for _, v := range table {
		if v < 1 {
			v = 1
		}
		if v > 255 {
			v = 255
		}
		w.WriteByte(byte(v))
	}
}

// writeSOF0 emits a baseline SOF0 segment for a non-interleaved 1x1
// sampling layout, with the quant-table selectors spec.md §6 prescribes:
// component 1 (Y) uses table 0, components 2/3 (Cb/Cr) use table 1.
func writeSOF0(w *bitio.Writer, width, height, numComponents int) {
	writeMarker(w, 0xC0)
	w.WriteWord(uint16(8 + 3*numComponents))
	w.WriteByte(8) // precision
	w.WriteWord(uint16(height))
	w.WriteWord(uint16(width))
	w.WriteByte(byte(numComponents))
	for i := 0; i < numComponents; i++ {
		id := byte(i + 1)
		qsel := byte(0)
		if i > 0 {
			qsel = 1
		}
		w.WriteByte(id)
		w.WriteByte(0x11) // H=1,V=1
		w.WriteByte(qsel)
	}
}

// writeDHT emits one Huffman table. classAndID packs class in bit 4
// (0=DC,1=AC) and selector in bits 0-3, matching the wire format.
func writeDHT(w *bitio.Writer, classAndID byte, counts [16]uint8, values []uint8) {
	writeMarker(w, 0xC4)
	w.WriteWord(uint16(2 + 1 + 16 + len(values)))
	w.WriteByte(classAndID)
	for _, c := range counts {
		w.WriteByte(c)
	}
	w.WriteBytes(values)
}

// writeSOS emits a scan header declaring numComponents components with
// the DC/AC table selectors spec.md §6 prescribes ({Y:0,0, Cb:1,1,
// Cr:1,1}), a full-spectrum non-progressive scan (Ss=0,Se=63,Ah=Al=0).
func writeSOS(w *bitio.Writer, numComponents int) {
	writeMarker(w, 0xDA)
	w.WriteWord(uint16(6 + 2*numComponents))
	w.WriteByte(byte(numComponents))
	for i := 0; i < numComponents; i++ {
		id := byte(i + 1)
		sel := byte(0)
		if i > 0 {
			sel = 0x11
		}
		w.WriteByte(id)
		w.WriteByte(sel)
	}
	w.WriteByte(0)  // Ss
	w.WriteByte(63) // Se
	w.WriteByte(0)  // Ah|Al
}
