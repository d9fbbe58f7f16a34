// Package jpegsteg is the public orchestrator: parse -> embed ->
// re-encode, and parse -> extract. Together with the cmd/jpegsteg CLI it
// is the only layer in this module that logs (via zap), and it wraps
// errors with stack traces (via github.com/pkg/errors); the codec
// packages under internal/ stay pure and
// return bare *jpegerr.Error, per SPEC_FULL.md §10.1/§10.2. Grounded on
// the teacher's cmd/verify driver, which is the only place in the
// teacher repo that logs progress and wraps lepton's bare errors for a
// human-facing caller.
package jpegsteg

import (
	"unicode/utf8"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nullpixel/jpegsteg/internal/jpegencode"
	"github.com/nullpixel/jpegsteg/internal/jpegerr"
	"github.com/nullpixel/jpegsteg/internal/jpegmodel"
	"github.com/nullpixel/jpegsteg/internal/jpegparse"
	"github.com/nullpixel/jpegsteg/internal/logging"
	"github.com/nullpixel/jpegsteg/internal/quality"
	"github.com/nullpixel/jpegsteg/internal/quant"
	"github.com/nullpixel/jpegsteg/internal/steg"
)

// Options configures Embed and Extract, mirroring spec.md §6's
// configuration table.
type Options struct {
	Quality         int   // 1..100, forces the re-encode quality if set
	PreserveQuality bool  // floor the chosen quality at the estimated source quality
	MaxFileSize     int64 // hint biasing the quality chooser
	Tolerant        bool  // accept a truncated scan as a partial decode
	Logger          *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logging.New(logging.Options{})
}

// EmbedStats reports what happened during an Embed call, per spec.md
// §6's EmbedOutput.stats.
type EmbedStats struct {
	CoefficientsUsed int
	OriginalSize     int
	FinalSize        int
	QualityUsed      int

	// AverageCoefficientWeight is the mean perceptual weight (steg.Weight)
	// across every coefficient written into. Observability only -- it
	// never influenced which coefficients were selected.
	AverageCoefficientWeight float64
}

// EmbedOutput is the result of a successful Embed call.
type EmbedOutput struct {
	ImageBytes []byte
	Stats      EmbedStats
}

// Embed hides message inside img's luminance AC coefficients and
// re-encodes a compliant JPEG, per spec.md §4.10.
func Embed(img []byte, message string, opts Options) (*EmbedOutput, error) {
	log := opts.logger()

	parser := jpegparse.New(jpegparse.DefaultLimits)
	parser.SetTolerant(opts.Tolerant)
	jp, err := parser.Parse(img)
	if err != nil {
		log.Error("parse failed", zap.Error(err))
		return nil, errors.Wrap(err, "jpegsteg: parse")
	}
	if jp.Frame == nil || len(jp.Frame.Components) == 0 {
		return nil, errors.New("jpegsteg: decoded frame has no components")
	}
	luma := jp.Frame.Components[0]

	rec := recommendQuality(jp)
	if opts.MaxFileSize > 0 {
		rec = quality.TargetSize(rec, int64(jp.Frame.Width*jp.Frame.Height*3), opts.MaxFileSize)
	}

	chosenQuality := rec.RecommendedQuality
	if opts.Quality > 0 {
		chosenQuality = clampQuality(opts.Quality)
	}
	if opts.PreserveQuality && chosenQuality < rec.EstimatedQuality {
		chosenQuality = rec.EstimatedQuality
	}
	log.Info("quality chosen",
		zap.Int("estimated_quality", rec.EstimatedQuality),
		zap.Int("recommended_quality", rec.RecommendedQuality),
		zap.Int("chosen_quality", chosenQuality),
		zap.String("strategy", rec.Strategy),
	)

	// Adapted tables become the ground truth written to DQT on
	// emission (spec.md's Open Question resolution); the coefficients
	// embedded below are never rescaled to match them.
	lumaTable, chromaTable := quant.BuildLumaChroma(chosenQuality)

	res, embedErr := steg.Embed(luma, []byte(message))
	if embedErr != nil {
		log.Error("embed failed", zap.Error(embedErr))
		return nil, errors.Wrap(embedErr, "jpegsteg: embed")
	}

	out, err := jpegencode.FromQuantized(jp, lumaTable, chromaTable, jpegencode.Options{
		Quality:         chosenQuality,
		Comments:        jp.Comments,
		EXIF:            jp.EXIF,
		RestartInterval: jp.RestartInterval,
	})
	if err != nil {
		log.Error("encode failed", zap.Error(err))
		return nil, errors.Wrap(err, "jpegsteg: encode")
	}

	var avgWeight float64
	if res.BitsWritten > 0 {
		avgWeight = res.WeightSum / float64(res.BitsWritten)
	}

	log.Info("embed complete",
		zap.Int("coefficients_used", res.BitsWritten),
		zap.Int("original_size", len(img)),
		zap.Int("final_size", len(out)),
		zap.Float64("average_coefficient_weight", avgWeight),
	)

	return &EmbedOutput{
		ImageBytes: out,
		Stats: EmbedStats{
			CoefficientsUsed:        res.BitsWritten,
			OriginalSize:            len(img),
			FinalSize:               len(out),
			QualityUsed:             chosenQuality,
			AverageCoefficientWeight: avgWeight,
		},
	}, nil
}

// Extract recovers a message previously hidden by Embed. When
// expectedLen is nil, the plain capacity heuristic is used to bound the
// read (spec.md §4.9's "advisory only" estimate).
func Extract(img []byte, expectedLen *int, opts Options) (string, error) {
	log := opts.logger()

	parser := jpegparse.New(jpegparse.DefaultLimits)
	parser.SetTolerant(opts.Tolerant)
	jp, err := parser.Parse(img)
	if err != nil {
		log.Error("parse failed", zap.Error(err))
		return "", errors.Wrap(err, "jpegsteg: parse")
	}
	if jp.Frame == nil || len(jp.Frame.Components) == 0 {
		return "", errors.New("jpegsteg: decoded frame has no components")
	}
	luma := jp.Frame.Components[0]

	n := 0
	if expectedLen != nil {
		n = *expectedLen
	} else {
		est := steg.EstimateCapacity(luma.BlocksPerLine, luma.BlocksPerColumn)
		n = est.Plain
	}

	raw, err := steg.Extract(luma, n)
	if err != nil {
		log.Error("extract failed", zap.Error(err))
		return "", errors.Wrap(err, "jpegsteg: extract")
	}
	if !utf8.Valid(raw) {
		return "", errors.Wrap(jpegerr.New(jpegerr.InvalidUTF8, "extracted bytes are not valid UTF-8"), "jpegsteg: extract")
	}

	log.Info("extract complete", zap.Int("bytes_extracted", len(raw)))
	return string(raw), nil
}

// EncodeRGBA encodes raw RGBA pixels into a baseline JPEG, per spec.md
// §6's encode_rgba.
func EncodeRGBA(rgba []byte, width, height, quality int, comments []string, exif []byte) ([]byte, error) {
	out, err := jpegencode.EncodeRGBA(rgba, width, height, clampQuality(quality), jpegencode.Options{
		Comments: comments,
		EXIF:     exif,
	})
	if err != nil {
		return nil, errors.Wrap(err, "jpegsteg: encode_rgba")
	}
	return out, nil
}

// EncodeFromQuantized re-emits a JPEG directly from an already-quantized
// Jpeg object at the given quality, per spec.md §6's
// encode_from_quantized.
func EncodeFromQuantized(jp *jpegmodel.Jpeg, q int) ([]byte, error) {
	lumaTable, chromaTable := quant.BuildLumaChroma(clampQuality(q))
	out, err := jpegencode.FromQuantized(jp, lumaTable, chromaTable, jpegencode.Options{
		Quality:  clampQuality(q),
		Comments: jp.Comments,
		EXIF:     jp.EXIF,
	})
	if err != nil {
		return nil, errors.Wrap(err, "jpegsteg: encode_from_quantized")
	}
	return out, nil
}

// CapacityReport surfaces both capacity heuristics spec.md §4.9
// describes, as a read-only pre-flight check.
type CapacityReport struct {
	PlainBytes    int
	WeightedBytes int
}

// EstimateCapacity parses img and reports its advisory steganography
// capacity without mutating anything.
func EstimateCapacity(img []byte) (CapacityReport, error) {
	jp, err := jpegparse.ParseDefault(img)
	if err != nil {
		return CapacityReport{}, errors.Wrap(err, "jpegsteg: parse")
	}
	if jp.Frame == nil || len(jp.Frame.Components) == 0 {
		return CapacityReport{}, errors.New("jpegsteg: decoded frame has no components")
	}
	luma := jp.Frame.Components[0]
	est := steg.EstimateCapacity(luma.BlocksPerLine, luma.BlocksPerColumn)
	return CapacityReport{PlainBytes: est.Plain, WeightedBytes: est.Weighted}, nil
}

func clampQuality(q int) int {
	if q < 1 {
		return 1
	}
	if q > 100 {
		return 100
	}
	return q
}
