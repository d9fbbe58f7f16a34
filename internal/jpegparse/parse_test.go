package jpegparse

import (
	"testing"

	"github.com/nullpixel/jpegsteg/internal/jpegerr"
	"github.com/nullpixel/jpegsteg/internal/jpegmodel"
)

func expectCode(t *testing.T, err error, code jpegerr.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %s, got nil", code)
	}
	je, ok := err.(*jpegerr.Error)
	if !ok {
		t.Fatalf("expected *jpegerr.Error, got %T: %v", err, err)
	}
	if je.Code != code {
		t.Fatalf("expected code %s, got %s (%v)", code, je.Code, err)
	}
}

func TestParseMinimalSOIAloneIsMissingSOF(t *testing.T) {
	_, err := ParseDefault([]byte{0xFF, 0xD8})
	expectCode(t, err, jpegerr.MissingSOF)
}

func TestParseSOIThenEOIIsMissingSOF(t *testing.T) {
	_, err := ParseDefault([]byte{0xFF, 0xD8, 0xFF, 0xD9})
	expectCode(t, err, jpegerr.MissingSOF)
}

func TestParseRejectsMissingSOI(t *testing.T) {
	_, err := ParseDefault([]byte{0x00, 0x01, 0x02})
	expectCode(t, err, jpegerr.MissingSOI)
}

func TestParseDQT8Bit(t *testing.T) {
	seg := make([]byte, 65)
	seg[0] = 0x00 // Pq=0, Tq=0
	for i := 0; i < 64; i++ {
		seg[1+i] = byte(i + 1)
	}
	jp := &jpegmodel.Jpeg{}
	p := New(DefaultLimits)
	if err := p.parseDQT(jp, seg); err != nil {
		t.Fatalf("parseDQT: %v", err)
	}
	if jp.QuantTables[0] == nil {
		t.Fatal("expected table 0 to be set")
	}
	if jp.QuantTables[0][0] != 1 || jp.QuantTables[0][63] != 64 {
		t.Fatalf("unexpected table contents: %v", jp.QuantTables[0])
	}
}

func TestParseSOFRejectsBadSamplingFactor(t *testing.T) {
	seg := []byte{
		8,      // precision
		0, 8,   // height
		0, 8,   // width
		1,      // components
		1, 0x00, 0, // H=0,V=0 invalid
	}
	p := New(DefaultLimits)
	jp := &jpegmodel.Jpeg{}
	err := p.parseSOF(jp, seg, false)
	expectCode(t, err, jpegerr.InvalidSamplingFactor)
}
