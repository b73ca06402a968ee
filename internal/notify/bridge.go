package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"loginguard/internal/domain"
	"loginguard/internal/platform/metrics"
	"loginguard/pkg/platform/clock"
	"loginguard/pkg/platform/sentinel"
	"loginguard/pkg/platform/wait"
)

const (
	defaultIdleDelay    = 500 * time.Millisecond
	defaultEnqueueRetry = time.Second
)

// Bridge forwards change events from the supervised connection into the
// hand-off queue. Delivery blocks with retry when the queue is full; events
// are never dropped.
type Bridge struct {
	supervisor   *Supervisor
	queue        *Queue
	idleDelay    time.Duration
	enqueueRetry time.Duration
	clock        clock.Clock
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

type BridgeOption func(*Bridge)

// WithIdleDelay bounds how long one receive waits before the loop re-checks
// connection liveness.
func WithIdleDelay(d time.Duration) BridgeOption {
	return func(b *Bridge) {
		if d > 0 {
			b.idleDelay = d
		}
	}
}

func WithEnqueueRetry(d time.Duration) BridgeOption {
	return func(b *Bridge) {
		if d > 0 {
			b.enqueueRetry = d
		}
	}
}

func WithBridgeClock(c clock.Clock) BridgeOption {
	return func(b *Bridge) {
		if c != nil {
			b.clock = c
		}
	}
}

func WithBridgeLogger(logger *slog.Logger) BridgeOption {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

func WithBridgeMetrics(m *metrics.Metrics) BridgeOption {
	return func(b *Bridge) {
		b.metrics = m
	}
}

func NewBridge(supervisor *Supervisor, queue *Queue, opts ...BridgeOption) (*Bridge, error) {
	if supervisor == nil {
		return nil, errors.New("connection supervisor is required")
	}
	if queue == nil {
		return nil, errors.New("hand-off queue is required")
	}
	b := &Bridge{
		supervisor:   supervisor,
		queue:        queue,
		idleDelay:    defaultIdleDelay,
		enqueueRetry: defaultEnqueueRetry,
		clock:        clock.Real(),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Run consumes the change channel until ctx is done. It only returns ctx's error.
func (b *Bridge) Run(ctx context.Context) error {
	defer b.supervisor.Close(ctx)
	topic := b.supervisor.Topic()
	b.logger.InfoContext(ctx, "notification bridge started", "topic", topic)

	for {
		conn, err := b.supervisor.Ensure(ctx)
		if err != nil {
			return err
		}

		rctx, cancel := context.WithTimeout(ctx, b.idleDelay)
		event, err := conn.Receive(rctx)
		cancel()

		switch {
		case err == nil:
			if event.Topic != topic {
				b.logger.DebugContext(ctx, "ignoring notification for foreign topic", "topic", event.Topic)
				continue
			}
			if err := b.deliver(ctx, event); err != nil {
				return err
			}
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, context.DeadlineExceeded):
			// idle: nothing arrived within the idle delay
		case errors.Is(err, sentinel.ErrConnectionClosed):
			b.logger.WarnContext(ctx, "change channel closed while receiving", "topic", topic, "error", err)
			b.supervisor.Invalidate(ctx)
		default:
			b.logger.WarnContext(ctx, "change channel receive failed", "topic", topic, "error", err)
			b.supervisor.Invalidate(ctx)
		}
	}
}

func (b *Bridge) deliver(ctx context.Context, event domain.ChangeEvent) error {
	b.metrics.IncrementEventsReceived()
	b.logger.DebugContext(ctx, "change event received", "topic", event.Topic, "payload", event.Payload)

	err := wait.Retry(ctx, b.clock, b.enqueueRetry, func(context.Context) error {
		return b.queue.TryEnqueue(event)
	}, func(attempt int, err error) {
		b.metrics.IncrementEnqueueRetries()
		b.logger.WarnContext(ctx, "could not hand off change event, retrying",
			"payload", event.Payload,
			"attempt", attempt,
			"retry_in", b.enqueueRetry,
			"error", err,
		)
	})
	if err != nil {
		return err
	}
	b.metrics.SetQueueDepth(b.queue.Len())
	return nil
}
