package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"go.uber.org/zap"

	"github.com/palemoky/zhconv/internal/converter"
	"github.com/palemoky/zhconv/internal/logger"
)

const (
	// Error reporting limits
	MaxErrorsToCollect = 100 // Maximum number of errors to collect
	SampleErrorCount   = 5   // Number of sample errors to log
)

// DefaultExtensions are converted by PlanDirectory when no list is given.
var DefaultExtensions = []string{".txt", ".md", ".srt", ".ass", ".html", ".htm", ".csv", ".json"}

// getOptimalConfig returns channel buffer sizes based on system resources
func getOptimalConfig() (workBuffer, errorBuffer int) {
	cpuCount := runtime.NumCPU()

	switch {
	case cpuCount <= 2:
		// GitHub Actions, low-end CI
		return 16, 32
	case cpuCount <= 8:
		return 64, 64
	default:
		return 256, MaxErrorsToCollect
	}
}

// Job converts one input file into one output file.
type Job struct {
	Input  string
	Output string
}

// Result summarizes a Process run.
type Result struct {
	Files    int
	Failed   int
	Bytes    int64 // input bytes of converted files
	Errors   []error
	Duration time.Duration
}

// Processor converts files concurrently with a single converter.
type Processor struct {
	conv     *converter.Converter
	workers  int
	progress io.Writer
	log      *zap.Logger
}

// NewProcessor creates a processor. workers <= 0 uses one worker per CPU.
func NewProcessor(conv *converter.Converter, workers int) *Processor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Processor{
		conv:     conv,
		workers:  workers,
		progress: os.Stderr,
		log:      logger.Named("processor"),
	}
}

// SetProgressOutput redirects the progress bar. io.Discard hides it.
func (p *Processor) SetProgressOutput(w io.Writer) {
	p.progress = w
}

// Workers returns the number of concurrent workers.
func (p *Processor) Workers() int {
	return p.workers
}

// Process converts every job with concurrent workers. It keeps going after a
// failed job and returns an error summarizing the failures. Cancelling ctx
// stops workers between lines.
func (p *Processor) Process(ctx context.Context, jobs []Job) (*Result, error) {
	start := time.Now()
	total := len(jobs)
	p.log.Info("Converting files",
		zap.Int("files", total),
		zap.Int("workers", p.workers),
		zap.String("profile", p.conv.Name()),
	)
	if total == 0 {
		return &Result{Duration: time.Since(start)}, nil
	}

	// Create progress container
	progress := mpb.New(
		mpb.WithOutput(p.progress),
		mpb.WithWidth(60),
		mpb.WithRefreshRate(100*time.Millisecond),
	)

	bar := progress.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name("Converting: ", decor.WC{W: 12, C: decor.DindentRight}),
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WC{W: 5}),
			decor.Name(" | "),
			decor.AverageETA(decor.ET_STYLE_GO, decor.WC{W: 6}),
			decor.Name(" | "),
			decor.AverageSpeed(0, "%.0f files/s", decor.WC{W: 12}),
		),
	)

	workBuffer, errorBuffer := getOptimalConfig()
	workCh := make(chan Job, workBuffer)
	errorCh := make(chan error, errorBuffer)
	var wg sync.WaitGroup

	var (
		processed  atomic.Int64
		errorCount atomic.Int64
		bytes      atomic.Int64
	)

	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for job := range workCh {
				n, err := p.processFile(ctx, job)
				if err != nil {
					errorCount.Add(1)
					// Non-blocking error recording
					select {
					case errorCh <- fmt.Errorf("worker %d: %s: %w", workerID, job.Input, err):
					default:
					}
				} else {
					bytes.Add(n)
				}
				processed.Add(1)
				bar.Increment()
			}
		}(i)
	}

	// Send work to workers
	go func() {
		defer close(workCh)
		for _, job := range jobs {
			select {
			case workCh <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(errorCh)

	// Jobs skipped by cancellation never reached a worker
	if processed.Load() < int64(total) {
		bar.SetTotal(-1, true)
	}
	progress.Wait()

	var errs []error
	for err := range errorCh {
		errs = append(errs, err)
		if len(errs) >= MaxErrorsToCollect {
			break
		}
	}

	result := &Result{
		Files:    int(processed.Load() - errorCount.Load()),
		Failed:   int(errorCount.Load()),
		Bytes:    bytes.Load(),
		Errors:   errs,
		Duration: time.Since(start),
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("conversion cancelled after %d/%d files: %w", processed.Load(), total, err)
	}

	if result.Failed > 0 {
		p.log.Warn("Conversion finished with errors",
			zap.Int("converted", result.Files),
			zap.Int("failed", result.Failed),
		)
		for i := 0; i < min(len(errs), SampleErrorCount); i++ {
			p.log.Warn("Sample error", zap.Int("n", i+1), zap.Error(errs[i]))
		}
		return result, fmt.Errorf("conversion completed with %d errors", result.Failed)
	}

	p.log.Info("Converted all files",
		zap.Int("files", total),
		zap.Int64("bytes", result.Bytes),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

func (p *Processor) processFile(ctx context.Context, job Job) (int64, error) {
	if sameFile(job.Input, job.Output) {
		return 0, errors.New("input and output are the same file")
	}
	return ConvertFile(ctx, p.conv, job.Input, job.Output)
}

// ConvertFile converts input into output and returns the input size. The
// result is written to a temporary file next to output and renamed into place
// once the conversion succeeds, so output may name the input file itself.
func ConvertFile(ctx context.Context, conv *converter.Converter, input, output string) (int64, error) {
	in, err := os.Open(input)
	if err != nil {
		return 0, fmt.Errorf("failed to open input: %w", err)
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat input: %w", err)
	}

	dir := filepath.Dir(output)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(output)+".*")
	if err != nil {
		return 0, fmt.Errorf("failed to create output: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := conv.ConvertReader(ctx, in, tmp); err != nil {
		_ = tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to close output: %w", err)
	}
	if err := os.Chmod(tmp.Name(), info.Mode().Perm()); err != nil {
		return 0, fmt.Errorf("failed to set output mode: %w", err)
	}
	if err := os.Rename(tmp.Name(), output); err != nil {
		return 0, fmt.Errorf("failed to write output: %w", err)
	}

	return info.Size(), nil
}

func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

// PlanDirectory walks inDir and returns one job per file whose extension is in
// exts, mirroring the tree under outDir. Hidden files and directories are
// skipped. Jobs are sorted by input path.
func PlanDirectory(inDir, outDir string, exts []string) ([]Job, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	allowed := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = struct{}{}
	}

	absIn, err := filepath.Abs(inDir)
	if err != nil {
		return nil, err
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return nil, err
	}
	if absIn == absOut {
		return nil, errors.New("input and output directories must differ")
	}

	var jobs []Job
	err = filepath.WalkDir(inDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := d.Name()
		if path != inDir && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			// Don't descend into the output tree when it lives inside the input
			if abs, err := filepath.Abs(path); err == nil && abs == absOut {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := allowed[strings.ToLower(filepath.Ext(name))]; !ok {
			return nil
		}

		rel, err := filepath.Rel(inDir, path)
		if err != nil {
			return err
		}
		jobs = append(jobs, Job{Input: path, Output: filepath.Join(outDir, rel)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", inDir, err)
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Input < jobs[j].Input })
	return jobs, nil
}
