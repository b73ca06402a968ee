package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"loginguard/internal/platform/metrics"
	"loginguard/pkg/platform/clock"
	"loginguard/pkg/platform/wait"
)

const defaultReconnectBackoff = 5 * time.Second

// Supervisor owns the single change-channel connection and its LISTEN
// subscription. It is not safe for concurrent use; the bridge loop owns it.
type Supervisor struct {
	dialer  Dialer
	topic   string
	backoff time.Duration
	clock   clock.Clock
	logger  *slog.Logger
	metrics *metrics.Metrics

	conn Conn
}

type SupervisorOption func(*Supervisor)

func WithReconnectBackoff(d time.Duration) SupervisorOption {
	return func(s *Supervisor) {
		if d > 0 {
			s.backoff = d
		}
	}
}

func WithSupervisorClock(c clock.Clock) SupervisorOption {
	return func(s *Supervisor) {
		if c != nil {
			s.clock = c
		}
	}
}

func WithSupervisorLogger(logger *slog.Logger) SupervisorOption {
	return func(s *Supervisor) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithSupervisorMetrics(m *metrics.Metrics) SupervisorOption {
	return func(s *Supervisor) {
		s.metrics = m
	}
}

func NewSupervisor(dialer Dialer, topic string, opts ...SupervisorOption) (*Supervisor, error) {
	if dialer == nil {
		return nil, errors.New("change channel dialer is required")
	}
	if topic == "" {
		return nil, errors.New("change channel topic is required")
	}
	s := &Supervisor{
		dialer:  dialer,
		topic:   topic,
		backoff: defaultReconnectBackoff,
		clock:   clock.Real(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Topic returns the subscribed channel name.
func (s *Supervisor) Topic() string { return s.topic }

// Ensure returns a live, subscribed connection. When the current connection
// is missing or closed it reconnects, sleeping the backoff between failed
// attempts, and never gives up; only ctx cancellation ends the loop.
func (s *Supervisor) Ensure(ctx context.Context) (Conn, error) {
	if s.conn != nil && !s.conn.IsClosed() {
		return s.conn, nil
	}
	if s.conn != nil {
		s.logger.WarnContext(ctx, "change channel connection was unexpectedly closed", "topic", s.topic)
		s.drop(ctx)
	}

	err := wait.Retry(ctx, s.clock, s.backoff, s.connect, func(attempt int, err error) {
		s.metrics.ObserveReconnect(false)
		s.logger.ErrorContext(ctx, "failed to establish change channel connection",
			"topic", s.topic,
			"attempt", attempt,
			"retry_in", s.backoff,
			"error", err,
		)
	})
	if err != nil {
		return nil, err
	}
	return s.conn, nil
}

// Invalidate discards the current connection so the next Ensure reconnects.
func (s *Supervisor) Invalidate(ctx context.Context) {
	s.drop(ctx)
}

// Close releases the current connection, if any.
func (s *Supervisor) Close(ctx context.Context) {
	s.drop(ctx)
}

func (s *Supervisor) connect(ctx context.Context) error {
	s.logger.InfoContext(ctx, "establishing change channel connection", "topic", s.topic)
	conn, err := s.dialer.Dial(ctx)
	if err != nil {
		return err
	}
	if err := conn.Listen(ctx, s.topic); err != nil {
		_ = conn.Close(ctx)
		return err
	}
	s.conn = conn
	s.metrics.ObserveReconnect(true)
	s.logger.InfoContext(ctx, "change channel connection established", "topic", s.topic)
	return nil
}

func (s *Supervisor) drop(ctx context.Context) {
	if s.conn == nil {
		return
	}
	if err := s.conn.Close(context.WithoutCancel(ctx)); err != nil {
		s.logger.DebugContext(ctx, "closing change channel connection failed", "error", err)
	}
	s.conn = nil
}
