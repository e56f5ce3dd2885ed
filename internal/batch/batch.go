// Package batch scans many receipt images concurrently through a shared
// pipeline. Files are discovered from paths and directories, distributed
// over a worker pool, and the per-file outcomes collected in input order.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/slipscan/slipscan/internal/pipeline"
)

// Config holds batch processing settings.
type Config struct {
	Workers         int
	ContinueOnError bool

	// File discovery settings
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// Output settings
	Format     string
	OutputFile string
	OutputDir  string
	Quiet      bool
}

// DefaultConfig returns batch defaults.
func DefaultConfig() Config {
	return Config{
		Workers:         4,
		ContinueOnError: true,
		Format:          "json",
	}
}

// FileResult is the outcome of scanning one file.
type FileResult struct {
	Path   string               `json:"path"`
	Result *pipeline.ScanResult `json:"result,omitempty"`
	Error  string               `json:"error,omitempty"`
}

// Result holds the outcome of a batch run.
type Result struct {
	Files       []FileResult  `json:"files"`
	Duration    time.Duration `json:"duration_ns"`
	WorkerCount int           `json:"workers"`
	Succeeded   int           `json:"succeeded"`
	Failed      int           `json:"failed"`
}

// ProgressFunc is invoked after each file completes.
type ProgressFunc func(done, total int, path string, err error)

// Processor runs batches against a shared pipeline.
type Processor struct {
	pipeline *pipeline.Pipeline
	cfg      Config
	progress ProgressFunc
}

// NewProcessor creates a batch processor. The pipeline is shared by all
// workers; it must be safe for concurrent use.
func NewProcessor(pl *pipeline.Pipeline, cfg Config) *Processor {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	return &Processor{pipeline: pl, cfg: cfg}
}

// WithProgress sets the per-file progress callback.
func (p *Processor) WithProgress(fn ProgressFunc) *Processor {
	p.progress = fn
	return p
}

// Process discovers receipt images under the given paths and scans them.
// With ContinueOnError set, per-file failures are recorded and processing
// continues; otherwise the first failure cancels the remaining work.
func (p *Processor) Process(ctx context.Context, paths []string) (*Result, error) {
	files, err := discoverImageFiles(paths, p.cfg.Recursive, p.cfg.IncludePatterns, p.cfg.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("discovering image files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no image files found")
	}

	workers := p.cfg.Workers
	if workers > len(files) {
		workers = len(files)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := time.Now()
	results := make([]FileResult, len(files))

	type job struct {
		idx  int
		path string
	}
	jobs := make(chan job)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				res, err := p.processFile(ctx, j.path)
				fr := FileResult{Path: j.path, Result: res}
				if err != nil {
					fr.Error = err.Error()
					if !p.cfg.ContinueOnError {
						cancel()
					}
				}
				results[j.idx] = fr

				mu.Lock()
				done++
				n := done
				mu.Unlock()
				if p.progress != nil {
					p.progress(n, len(files), j.path, err)
				}
			}
		}()
	}

feed:
	for i, f := range files {
		select {
		case jobs <- job{idx: i, path: f}:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	out := &Result{
		Files:       results,
		Duration:    time.Since(start),
		WorkerCount: workers,
	}
	for i := range out.Files {
		if out.Files[i].Path == "" {
			// never scheduled (canceled before dispatch)
			out.Files[i] = FileResult{Path: files[i], Error: context.Canceled.Error()}
		}
		if out.Files[i].Error == "" {
			out.Succeeded++
		} else {
			out.Failed++
		}
	}

	slog.Info("batch completed",
		"files", len(files),
		"succeeded", out.Succeeded,
		"failed", out.Failed,
		"workers", workers,
		"duration_ms", out.Duration.Milliseconds())

	if !p.cfg.ContinueOnError && out.Failed > 0 {
		return out, fmt.Errorf("batch failed on %d of %d files", out.Failed, len(files))
	}
	return out, nil
}

// processFile loads one image and runs it through the pipeline.
func (p *Processor) processFile(ctx context.Context, path string) (*pipeline.ScanResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := loadImage(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	res, err := p.pipeline.ProcessContext(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return res, nil
}
