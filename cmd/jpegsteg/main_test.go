package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeEmptyFile(dir, name string) error {
	return os.WriteFile(filepath.Join(dir, name), nil, 0o644)
}

func TestExitCodeForMapsKnownCodes(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{errors.New("jpegsteg: embed: InsufficientCapacity: not enough usable luma coefficients"), exitInsufficientCapacity},
		{errors.New("jpegsteg: extract: ExtractionIncomplete: fewer usable coefficients"), exitExtractionFailed},
		{errors.New("jpegsteg: extract: InvalidUTF8: extracted bytes are not valid UTF-8"), exitExtractionFailed},
		{errors.New("jpegsteg: parse: ResourceLimitExceeded: image exceeds configured limits"), exitResourceLimit},
		{errors.New("jpegsteg: parse: MissingSOI: not a JPEG"), exitUnrecognizedInput},
	}
	for _, c := range cases {
		if got := exitCodeFor(c.err); got != c.want {
			t.Errorf("exitCodeFor(%q) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestJpegFilesInFiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "b.JPEG", "c.txt", "d.png"} {
		if err := writeEmptyFile(dir, name); err != nil {
			t.Fatalf("writeEmptyFile: %v", err)
		}
	}

	got, err := jpegFilesIn(dir)
	if err != nil {
		t.Fatalf("jpegFilesIn: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 jpeg files, got %d: %v", len(got), got)
	}
}
