package approval

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"loginguard/internal/domain"
	"loginguard/internal/platform/metrics"
)

// EventSource is the consuming side of the hand-off queue.
type EventSource interface {
	Dequeue(ctx context.Context) (domain.ChangeEvent, error)
	Len() int
}

// Processor runs one session to completion.
type Processor interface {
	Process(ctx context.Context, event domain.ChangeEvent) *Session
}

// Worker consumes change events from the hand-off queue and runs one session
// per event. With a single worker sessions run strictly in queue order.
type Worker struct {
	processor Processor
	source    EventSource
	workers   int
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type WorkerOption func(*Worker)

func WithWorkers(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.workers = n
		}
	}
}

func WithWorkerLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithWorkerMetrics(m *metrics.Metrics) WorkerOption {
	return func(w *Worker) {
		w.metrics = m
	}
}

func NewWorker(processor Processor, source EventSource, opts ...WorkerOption) *Worker {
	w := &Worker{
		processor: processor,
		source:    source,
		workers:   1,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run blocks until ctx is done and returns its error. Session failures never
// stop the worker.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "approval worker started", "workers", w.workers)
	g, gctx := errgroup.WithContext(ctx)
	for range w.workers {
		g.Go(func() error {
			return w.consume(gctx)
		})
	}
	return g.Wait()
}

func (w *Worker) consume(ctx context.Context) error {
	for {
		event, err := w.source.Dequeue(ctx)
		if err != nil {
			return err
		}
		w.metrics.SetQueueDepth(w.source.Len())
		w.processor.Process(ctx, event)
	}
}
