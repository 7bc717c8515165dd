package async

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/joseph-ayodele/docparse/constants"
	"github.com/joseph-ayodele/docparse/internal/async"
	"github.com/joseph-ayodele/docparse/internal/common"
	"github.com/joseph-ayodele/docparse/internal/core"
	"github.com/joseph-ayodele/docparse/internal/metrics"
)

// ErrClosed is returned by Enqueue after Shutdown.
var ErrClosed = errors.New("queue is shutting down")

// DocumentProcessor is the part of core.Processor the queue drives.
type DocumentProcessor interface {
	Process(ctx context.Context, path string, class constants.DocClass) (*core.Outcome, error)
}

// Result is delivered to the result handler once per job.
type Result struct {
	Job     async.Job
	Status  constants.JobStatus // JobStatusExtracted or JobStatusFailed
	Outcome *core.Outcome
	Err     error
}

// ProcessorQueue runs documents through a processor on a fixed worker pool.
// Documents are independent; one failing never stops the others.
type ProcessorQueue struct {
	proc    DocumentProcessor
	logger  *slog.Logger
	metrics *metrics.Metrics
	onDone  func(Result)
	workers int
	timeout time.Duration

	ch   chan async.Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.RWMutex
	closed bool
}

var _ async.Queue = (*ProcessorQueue)(nil)

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan async.Job, n)
		}
	}
}

// WithProcessTimeout bounds the layout load of each document.
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithResultHandler is called from the worker goroutine after each job.
func WithResultHandler(fn func(Result)) Option {
	return func(q *ProcessorQueue) { q.onDone = fn }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(q *ProcessorQueue) { q.metrics = m }
}

func NewProcessorQueue(proc DocumentProcessor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan async.Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					q.metrics.SetQueueDepth(len(q.ch))
					q.handle(workerID, job)
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) handle(workerID int, job async.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	if job.TraceID != "" {
		ctx = common.WithRunID(ctx, job.TraceID)
	}
	q.logger.Debug("processing document", "worker_id", workerID, "path", job.Path, "status", constants.JobStatusRunning)
	out, err := q.run(ctx, job)
	cancel()

	st := constants.JobStatusExtracted
	if err != nil {
		st = constants.JobStatusFailed
		q.logger.Error("processing failed", "worker_id", workerID, "path", job.Path, "status", st, "error", err)
	} else {
		q.logger.Info("processed document", "worker_id", workerID, "path", job.Path, "status", st,
			"doc_id", out.DocID, "template", out.Record.Template,
			"queued_ms", time.Since(job.SubmittedAt).Milliseconds())
	}
	if q.onDone != nil {
		q.onDone(Result{Job: job, Status: st, Outcome: out, Err: err})
	}
}

// run converts a panic in one document into an error for that document.
func (q *ProcessorQueue) run(ctx context.Context, job async.Job) (out *core.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			q.metrics.RecordFailure("worker")
			out, err = nil, common.NewAppError("INTERNAL", "document processing panicked", fmt.Errorf("%v", r))
		}
	}()
	return q.proc.Process(ctx, job.Path, job.Class)
}

// Enqueue blocks while the queue is full until there is room or ctx ends.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job async.Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "path", job.Path)
		return ErrClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued document for processing", "path", job.Path, "class", job.Class, "status", constants.JobStatusQueued)
	default:
		q.logger.Warn("queue full, applying backpressure", "path", job.Path)
		select {
		case q.ch <- job:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	q.metrics.SetQueueDepth(len(q.ch))
	return nil
}

// Shutdown stops intake and waits for queued documents to finish or ctx to end.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
