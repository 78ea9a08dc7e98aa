// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"runtime"
	"time"

	"crosscheck/internal/observability"
	"crosscheck/internal/preprocessors"
)

// maxWorkers caps the pool to avoid resource exhaustion on large machines
const maxWorkers = 8

// ParallelProcessor runs the first extraction pass over many documents
type ParallelProcessor struct {
	workers  int
	observer *observability.StandardObserver
}

// ProcessingStats summarizes one extraction pass
type ProcessingStats struct {
	TotalFiles     int           `json:"total_files"`
	ProcessedFiles int           `json:"processed_files"`
	FailedFiles    int           `json:"failed_files"`
	TotalDuration  time.Duration `json:"total_duration_ms"`
	WorkerCount    int           `json:"worker_count"`
}

// NewParallelProcessor creates a processor sized to the machine. The debug
// trace is indented per step, so debug runs use a single worker.
func NewParallelProcessor(observer *observability.StandardObserver) *ParallelProcessor {
	workers := runtime.NumCPU()
	if workers > maxWorkers {
		workers = maxWorkers
	}
	if observer != nil && observer.DebugObserver != nil {
		workers = 1
	}
	return &ParallelProcessor{workers: workers, observer: observer}
}

// WithWorkers overrides the worker count
func (pp *ParallelProcessor) WithWorkers(n int) *ParallelProcessor {
	if n > 0 {
		pp.workers = n
	}
	return pp
}

// ExtractAll extracts every path without a credential. Contents come back in
// path order; entries for paths that were never processed because ctx was
// cancelled are nil and the context error is returned.
func (pp *ParallelProcessor) ExtractAll(ctx context.Context, extractor Extractor, filePaths []string) ([]*preprocessors.ProcessedContent, *ProcessingStats, error) {
	start := time.Now()
	contents := make([]*preprocessors.ProcessedContent, len(filePaths))
	stats := &ProcessingStats{TotalFiles: len(filePaths), WorkerCount: pp.workers}

	if len(filePaths) == 0 {
		return contents, stats, ctx.Err()
	}

	pool := NewWorkerPool(ctx, pp.workers, extractor, pp.observer)
	pool.Start()

	// Submit in a separate goroutine so results can drain
	go func() {
		defer pool.Close()
		for i, path := range filePaths {
			if !pool.Submit(&Job{Index: i, FilePath: path}) {
				return
			}
		}
	}()

	go pool.Stop()

	for result := range pool.Results() {
		contents[result.Index] = result.Content
		stats.ProcessedFiles++
		if !result.Content.OK() {
			stats.FailedFiles++
		}
	}
	stats.TotalDuration = time.Since(start)

	return contents, stats, ctx.Err()
}
