package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	jobTracer          = otel.Tracer("emailsummary/scheduler")
	jobMeter           = otel.Meter("emailsummary/scheduler")
	jobDuration, _     = jobMeter.Float64Histogram("scheduler.job.duration", metric.WithDescription("Job execution duration in seconds"), metric.WithUnit("s"))
	jobTotal, _        = jobMeter.Int64Counter("scheduler.job.total", metric.WithDescription("Total jobs executed by status"))
	jobQueueDropped, _ = jobMeter.Int64Counter("scheduler.job.queue_dropped", metric.WithDescription("Jobs dropped due to full queue"))
)

// DefaultJobTimeout bounds a single job. A digest run walks every recipient
// sequentially behind the upstream pacer.
const DefaultJobTimeout = 30 * time.Minute

// ErrPoolClosed is returned by Submit once shutdown has begun.
var ErrPoolClosed = errors.New("worker pool is shut down")

// WorkerPool runs jobs from a buffered queue on a fixed number of goroutines.
type WorkerPool struct {
	workerCount int
	jobDelay    time.Duration
	jobTimeout  time.Duration

	mu     sync.Mutex
	closed bool
	jobs   chan Job

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewWorkerPool creates a pool. jobDelay is slept after each job; queueSize
// is the channel buffer beyond which Submit drops jobs.
func NewWorkerPool(workerCount int, jobDelay time.Duration, queueSize int) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		workerCount: workerCount,
		jobDelay:    jobDelay,
		jobTimeout:  DefaultJobTimeout,
		jobs:        make(chan Job, queueSize),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start() {
	log.Printf("Worker pool: starting %d workers", wp.workerCount)

	wp.wg.Add(wp.workerCount)
	for id := 1; id <= wp.workerCount; id++ {
		go wp.worker(id)
	}
}

// worker exits when the queue is closed and drained, or on cancellation.
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobs {
		if wp.ctx.Err() != nil {
			return
		}
		wp.run(id, job)
		if !wp.pause() {
			return
		}
	}
}

// pause sleeps jobDelay and reports false if the pool was cancelled meanwhile.
func (wp *WorkerPool) pause() bool {
	if wp.jobDelay <= 0 {
		return true
	}
	t := time.NewTimer(wp.jobDelay)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-wp.ctx.Done():
		return false
	}
}

func (wp *WorkerPool) run(workerID int, job Job) {
	desc := job.Description()

	ctx, cancel := context.WithTimeout(wp.ctx, wp.jobTimeout)
	defer cancel()

	ctx, span := jobTracer.Start(ctx, "job.execute", trace.WithAttributes(
		attribute.Int("worker.id", workerID),
		attribute.String("job.description", desc),
	))
	defer span.End()

	start := time.Now()
	err := job.Execute(ctx)

	status := "success"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Printf("Worker %d: %s failed after %s: %v", workerID, desc, time.Since(start).Round(time.Millisecond), err)
	} else {
		log.Printf("Worker %d: %s done in %s", workerID, desc, time.Since(start).Round(time.Millisecond))
	}

	jobTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	jobDuration.Record(ctx, time.Since(start).Seconds())
}

// Submit queues a job without blocking. A full queue drops the job.
func (wp *WorkerPool) Submit(job Job) error {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.closed {
		return ErrPoolClosed
	}

	select {
	case wp.jobs <- job:
		return nil
	default:
		jobQueueDropped.Add(context.Background(), 1)
		return fmt.Errorf("job queue full, dropping %s", job.Description())
	}
}

// SubmitBatch queues jobs in order and returns how many were accepted.
func (wp *WorkerPool) SubmitBatch(jobs []Job) int {
	accepted := 0
	for _, job := range jobs {
		if err := wp.Submit(job); err != nil {
			log.Printf("Worker pool: %v", err)
			continue
		}
		accepted++
	}
	if accepted < len(jobs) {
		log.Printf("Worker pool: accepted %d of %d jobs", accepted, len(jobs))
	}
	return accepted
}

// Shutdown stops intake and waits for the queue to drain.
func (wp *WorkerPool) Shutdown() {
	wp.drain(0)
}

// ShutdownWithTimeout stops intake and waits up to timeout for the queue to
// drain, then cancels whatever is still running.
func (wp *WorkerPool) ShutdownWithTimeout(timeout time.Duration) {
	wp.drain(timeout)
}

func (wp *WorkerPool) drain(timeout time.Duration) {
	wp.mu.Lock()
	if !wp.closed {
		wp.closed = true
		close(wp.jobs)
	}
	wp.mu.Unlock()

	if !waitTimeout(&wp.wg, timeout) {
		log.Printf("Worker pool: jobs still running after %v, cancelling", timeout)
	}
	wp.cancel()
	log.Println("Worker pool: stopped")
}

// waitTimeout waits for wg and reports whether it finished in time. A
// non-positive timeout waits indefinitely.
func waitTimeout(wg *sync.WaitGroup, timeout time.Duration) bool {
	if timeout <= 0 {
		wg.Wait()
		return true
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-done:
		return true
	case <-t.C:
		return false
	}
}
