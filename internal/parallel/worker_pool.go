// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"sync"
	"time"

	"crosscheck/internal/observability"
	"crosscheck/internal/preprocessors"
)

// Extractor turns a file into processed content. Implementations must be
// safe for concurrent use.
type Extractor interface {
	Extract(filePath, credential string) *preprocessors.ProcessedContent
}

// WorkerPool extracts documents on a fixed number of goroutines
type WorkerPool struct {
	workers   int
	extractor Extractor
	jobs      chan *Job
	results   chan *Result
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	observer  *observability.StandardObserver
}

// Job is one document to extract
type Job struct {
	Index    int // Position in the caller's path list
	FilePath string
}

// Result is the extraction outcome of one job
type Result struct {
	Index    int
	FilePath string
	Content  *preprocessors.ProcessedContent
	Duration time.Duration
}

// NewWorkerPool creates a pool bound to ctx
func NewWorkerPool(ctx context.Context, workers int, extractor Extractor, observer *observability.StandardObserver) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		workers:   workers,
		extractor: extractor,
		jobs:      make(chan *Job, workers*2),
		results:   make(chan *Result, workers*2),
		ctx:       ctx,
		cancel:    cancel,
		observer:  observer,
	}
}

// Start initializes worker goroutines
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Close stops accepting jobs; workers drain what is queued
func (wp *WorkerPool) Close() {
	close(wp.jobs)
}

// Stop waits for the workers and closes the results channel
func (wp *WorkerPool) Stop() {
	wp.wg.Wait()
	close(wp.results)
	wp.cancel()
}

// Submit queues a job. It reports false when the pool's context is done.
func (wp *WorkerPool) Submit(job *Job) bool {
	select {
	case wp.jobs <- job:
		return true
	case <-wp.ctx.Done():
		return false
	}
}

// Results returns the results channel
func (wp *WorkerPool) Results() <-chan *Result {
	return wp.results
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobs {
		// Queued jobs are dropped once the run is cancelled
		if wp.ctx.Err() != nil {
			continue
		}
		result := wp.processJob(job, id)

		select {
		case wp.results <- result:
		case <-wp.ctx.Done():
			return
		}
	}
}

func (wp *WorkerPool) processJob(job *Job, workerID int) *Result {
	start := time.Now()

	var finishTiming func(bool, map[string]interface{})
	if wp.observer != nil {
		finishTiming = wp.observer.StartTiming("worker_pool", "extract", job.FilePath)
	}

	content := wp.extractor.Extract(job.FilePath, "")
	duration := time.Since(start)

	if finishTiming != nil {
		finishTiming(content.OK(), map[string]interface{}{
			"worker_id":   workerID,
			"status":      content.Status.String(),
			"duration_ms": duration.Milliseconds(),
		})
	}

	return &Result{
		Index:    job.Index,
		FilePath: job.FilePath,
		Content:  content,
		Duration: duration,
	}
}
