// Package batch provides multi-image batch scanning.
package batch

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/MeKo-Tech/symscan/internal/pipeline"
	"github.com/MeKo-Tech/symscan/internal/utils"
)

// FileResult is the outcome of scanning one file.
type FileResult struct {
	Path   string                 `json:"path" yaml:"path"`
	Result *pipeline.DecodeResult `json:"result,omitempty" yaml:"result,omitempty"`
	Error  string                 `json:"error,omitempty" yaml:"error,omitempty"`
}

// Result aggregates a batch run.
type Result struct {
	Files       []FileResult  `json:"files" yaml:"files"`
	Found       int           `json:"found" yaml:"found"`
	NotFound    int           `json:"not_found" yaml:"not_found"`
	Errored     int           `json:"errored" yaml:"errored"`
	Duration    time.Duration `json:"duration_ns" yaml:"duration_ns"`
	WorkerCount int           `json:"worker_count" yaml:"worker_count"`
}

// ProcessBatch scans a batch of images with the given configuration.
func ProcessBatch(ctx context.Context, paths []string, config *Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	files, err := discoverImageFiles(paths, config.Recursive, config.IncludePatterns, config.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to discover image files: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no image files found")
	}

	pl, err := pipeline.NewBuilder().
		WithFamily(config.Pipeline.Family).
		WithPlan(config.Pipeline.Plan).
		WithPolicy(config.Pipeline.Policy).
		WithTimeout(config.Pipeline.Timeout).
		WithWorkers(config.Pipeline.MaxWorkers).
		WithZBar(config.Pipeline.ZBarEnabled, config.Pipeline.ZBar.Binary).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build scan pipeline: %w", err)
	}

	startTime := time.Now()
	results := scanFilesParallel(ctx, pl, files, config)

	res := &Result{
		Files:       results,
		Duration:    time.Since(startTime),
		WorkerCount: config.Workers,
	}
	for _, fr := range results {
		switch {
		case fr.Result != nil:
			res.Found++
		case fr.Error == pipeline.ErrNotFound.Error():
			res.NotFound++
		default:
			res.Errored++
		}
	}
	return res, nil
}

// scanFilesParallel scans files with a bounded worker pool, returning
// results in input order.
func scanFilesParallel(ctx context.Context, pl *pipeline.Pipeline, files []string, config *Config) []FileResult {
	workers := config.Workers
	if workers > len(files) {
		workers = len(files)
	}

	type job struct {
		index int
		path  string
	}
	jobs := make(chan job)
	results := make([]FileResult, len(files))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.index] = scanFile(ctx, pl, j.path, config)
			}
		}()
	}

	for i, path := range files {
		jobs <- job{index: i, path: path}
	}
	close(jobs)
	wg.Wait()

	return results
}

// scanFile loads, scans and (optionally) annotates a single file.
func scanFile(ctx context.Context, pl *pipeline.Pipeline, path string, config *Config) FileResult {
	img, meta, err := utils.LoadImage(path)
	if err != nil {
		return FileResult{Path: path, Error: err.Error()}
	}

	res, err := pl.Scan(ctx, img)
	if err != nil {
		return FileResult{Path: path, Error: err.Error()}
	}

	if config.OverlayDir != "" {
		ov := pipeline.RenderOverlay(img, res, color.RGBA{G: 255, A: 255})
		base := strings.TrimSuffix(filepath.Base(meta.Path), filepath.Ext(meta.Path))
		out := filepath.Join(config.OverlayDir, base+"_overlay.png")
		if err := utils.SavePNG(ov, out); err != nil {
			slog.Warn("failed to save overlay", "file", out, "error", err)
		}
	}

	return FileResult{Path: path, Result: res}
}
