// Command jpegsteg embeds and extracts text payloads in JPEG files from
// the command line, plus a batch directory mode for running either
// operation over many images at once. Flag parsing and the worker-pool
// batch mode are grounded on the teacher's cmd/verify driver -- the
// only place in the teacher repo that drives its core package from a
// CLI instead of a library call.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/nullpixel/jpegsteg/internal/logging"
	"github.com/nullpixel/jpegsteg/pkg/jpegsteg"
)

const (
	exitSuccess             = 0
	exitUnrecognizedInput   = 2
	exitInsufficientCapacity = 3
	exitExtractionFailed    = 4
	exitResourceLimit       = 5
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(exitUnrecognizedInput)
	}

	sub := os.Args[1]
	args := os.Args[2:]

	switch sub {
	case "embed":
		os.Exit(runEmbed(args))
	case "extract":
		os.Exit(runExtract(args))
	case "capacity":
		os.Exit(runCapacity(args))
	default:
		usage()
		os.Exit(exitUnrecognizedInput)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: jpegsteg <embed|extract|capacity> [flags]")
}

func runEmbed(args []string) int {
	fs := flag.NewFlagSet("embed", flag.ExitOnError)
	in := fs.String("in", "", "input JPEG file")
	out := fs.String("out", "", "output JPEG file")
	dir := fs.String("dir", "", "batch mode: directory of JPEG files")
	outDir := fs.String("outdir", "", "batch mode: directory to write embedded copies into")
	message := fs.String("message", "", "text to embed")
	quality := fs.Int("quality", 0, "force re-encode quality (1-100, 0 = auto)")
	preserveQuality := fs.Bool("preserve-quality", false, "floor quality at the estimated source quality")
	maxFileSize := fs.Int64("max-file-size", 0, "hint biasing the quality chooser, in bytes")
	tolerant := fs.Bool("tolerant", false, "accept a truncated scan as a partial decode")
	workers := fs.Int("workers", 8, "batch mode: number of parallel workers")
	logFile := fs.String("log-file", "", "rotating log file path")
	debug := fs.Bool("debug", false, "enable debug-level logging")
	fs.Parse(args)

	log := logging.New(logging.Options{FilePath: *logFile, Debug: *debug})
	defer log.Sync()

	opts := jpegsteg.Options{
		Quality:         *quality,
		PreserveQuality: *preserveQuality,
		MaxFileSize:     *maxFileSize,
		Tolerant:        *tolerant,
		Logger:          log,
	}

	if *dir != "" {
		return runEmbedBatch(*dir, *outDir, *message, opts, *workers, log)
	}

	if *in == "" || *out == "" || *message == "" {
		usage()
		return exitUnrecognizedInput
	}

	img, err := os.ReadFile(*in)
	if err != nil {
		log.Error("read input failed", zap.Error(err))
		return exitUnrecognizedInput
	}

	result, err := jpegsteg.Embed(img, *message, opts)
	if err != nil {
		return exitCodeFor(err)
	}
	if err := os.WriteFile(*out, result.ImageBytes, 0o644); err != nil {
		log.Error("write output failed", zap.Error(err))
		return exitUnrecognizedInput
	}

	fmt.Printf("embedded %d bytes, quality=%d, %d -> %d bytes\n",
		len(*message), result.Stats.QualityUsed, result.Stats.OriginalSize, result.Stats.FinalSize)
	return exitSuccess
}

func runEmbedBatch(dir, outDir, message string, opts jpegsteg.Options, workers int, log *zap.Logger) int {
	if outDir == "" {
		fmt.Fprintln(os.Stderr, "-outdir is required in batch embed mode")
		return exitUnrecognizedInput
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		log.Error("create outdir failed", zap.Error(err))
		return exitUnrecognizedInput
	}

	files, err := jpegFilesIn(dir)
	if err != nil {
		log.Error("read directory failed", zap.Error(err))
		return exitUnrecognizedInput
	}

	var ok, fail int64
	var mu sync.Mutex
	var failures []string

	jobs := make(chan string, len(files))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range jobs {
				img, err := os.ReadFile(filepath.Join(dir, name))
				if err != nil {
					atomic.AddInt64(&fail, 1)
					mu.Lock()
					failures = append(failures, fmt.Sprintf("%s: read: %v", name, err))
					mu.Unlock()
					continue
				}
				result, err := jpegsteg.Embed(img, message, opts)
				if err != nil {
					atomic.AddInt64(&fail, 1)
					mu.Lock()
					failures = append(failures, fmt.Sprintf("%s: embed: %v", name, err))
					mu.Unlock()
					continue
				}
				if err := os.WriteFile(filepath.Join(outDir, name), result.ImageBytes, 0o644); err != nil {
					atomic.AddInt64(&fail, 1)
					mu.Lock()
					failures = append(failures, fmt.Sprintf("%s: write: %v", name, err))
					mu.Unlock()
					continue
				}
				atomic.AddInt64(&ok, 1)
			}
		}()
	}
	for _, f := range files {
		jobs <- f
	}
	close(jobs)
	wg.Wait()

	fmt.Printf("embed batch: %d/%d succeeded\n", ok, len(files))
	for _, f := range failures {
		fmt.Println("  " + f)
	}
	if fail > 0 {
		return exitInsufficientCapacity
	}
	return exitSuccess
}

func runExtract(args []string) int {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	in := fs.String("in", "", "input JPEG file")
	dir := fs.String("dir", "", "batch mode: directory of JPEG files")
	expectedLen := fs.Int("len", 0, "expected message length in bytes (0 = use capacity estimate)")
	tolerant := fs.Bool("tolerant", false, "accept a truncated scan as a partial decode")
	workers := fs.Int("workers", 8, "batch mode: number of parallel workers")
	logFile := fs.String("log-file", "", "rotating log file path")
	debug := fs.Bool("debug", false, "enable debug-level logging")
	fs.Parse(args)

	log := logging.New(logging.Options{FilePath: *logFile, Debug: *debug})
	defer log.Sync()

	opts := jpegsteg.Options{Tolerant: *tolerant, Logger: log}
	var lenPtr *int
	if *expectedLen > 0 {
		lenPtr = expectedLen
	}

	if *dir != "" {
		return runExtractBatch(*dir, lenPtr, opts, *workers, log)
	}

	if *in == "" {
		usage()
		return exitUnrecognizedInput
	}
	img, err := os.ReadFile(*in)
	if err != nil {
		log.Error("read input failed", zap.Error(err))
		return exitUnrecognizedInput
	}

	msg, err := jpegsteg.Extract(img, lenPtr, opts)
	if err != nil {
		return exitCodeFor(err)
	}
	fmt.Println(msg)
	return exitSuccess
}

func runExtractBatch(dir string, expectedLen *int, opts jpegsteg.Options, workers int, log *zap.Logger) int {
	files, err := jpegFilesIn(dir)
	if err != nil {
		log.Error("read directory failed", zap.Error(err))
		return exitUnrecognizedInput
	}

	var ok, fail int64
	var mu sync.Mutex
	var results []string

	jobs := make(chan string, len(files))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range jobs {
				img, err := os.ReadFile(filepath.Join(dir, name))
				if err != nil {
					atomic.AddInt64(&fail, 1)
					mu.Lock()
					results = append(results, fmt.Sprintf("%s: read: %v", name, err))
					mu.Unlock()
					continue
				}
				msg, err := jpegsteg.Extract(img, expectedLen, opts)
				if err != nil {
					atomic.AddInt64(&fail, 1)
					mu.Lock()
					results = append(results, fmt.Sprintf("%s: extract: %v", name, err))
					mu.Unlock()
					continue
				}
				atomic.AddInt64(&ok, 1)
				mu.Lock()
				results = append(results, fmt.Sprintf("%s: %s", name, msg))
				mu.Unlock()
			}
		}()
	}
	for _, f := range files {
		jobs <- f
	}
	close(jobs)
	wg.Wait()

	for _, r := range results {
		fmt.Println(r)
	}
	fmt.Printf("extract batch: %d/%d succeeded\n", ok, len(files))
	if fail > 0 {
		return exitExtractionFailed
	}
	return exitSuccess
}

func runCapacity(args []string) int {
	fs := flag.NewFlagSet("capacity", flag.ExitOnError)
	in := fs.String("in", "", "input JPEG file")
	fs.Parse(args)

	if *in == "" {
		usage()
		return exitUnrecognizedInput
	}
	img, err := os.ReadFile(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read input: %v\n", err)
		return exitUnrecognizedInput
	}

	report, err := jpegsteg.EstimateCapacity(img)
	if err != nil {
		return exitCodeFor(err)
	}
	fmt.Printf("plain: %d bytes, weighted: %d bytes\n", report.PlainBytes, report.WeightedBytes)
	return exitSuccess
}

func jpegFilesIn(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		lower := strings.ToLower(e.Name())
		if strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg") {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

// exitCodeFor maps a wrapped orchestrator error to spec.md §6's exit
// codes by looking for a taxonomy code's name in the error text.
func exitCodeFor(err error) int {
	switch {
	case hasCode(err, "InsufficientCapacity"):
		return exitInsufficientCapacity
	case hasCode(err, "ExtractionIncomplete"), hasCode(err, "InvalidUTF8"):
		return exitExtractionFailed
	case hasCode(err, "ResourceLimitExceeded"):
		return exitResourceLimit
	default:
		return exitUnrecognizedInput
	}
}

func hasCode(err error, code string) bool {
	return strings.Contains(err.Error(), code)
}
