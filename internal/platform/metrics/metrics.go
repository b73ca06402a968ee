package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. A nil *Metrics is
// valid and records nothing, so components can run without instrumentation.
type Metrics struct {
	ReconnectAttempts *prometheus.CounterVec
	EventsReceived    prometheus.Counter
	EnqueueRetries    prometheus.Counter
	QueueDepth        prometheus.Gauge
	Sessions          *prometheus.CounterVec
	SessionDuration   prometheus.Histogram
	CleanupFailures   prometheus.Counter
	DuplicateEvents   prometheus.Counter
	Commands          *prometheus.CounterVec
}

// New creates and registers all metrics on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ReconnectAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "loginguard_bridge_reconnect_attempts_total",
			Help: "Change channel reconnect attempts by outcome",
		}, []string{"outcome"}),
		EventsReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "loginguard_bridge_events_received_total",
			Help: "Change events received from the store",
		}),
		EnqueueRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "loginguard_bridge_enqueue_retries_total",
			Help: "Enqueue attempts that found the hand-off queue full",
		}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "loginguard_handoff_queue_depth",
			Help: "Events waiting in the hand-off queue",
		}),
		Sessions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "loginguard_approval_sessions_total",
			Help: "Completed approval sessions by outcome",
		}, []string{"outcome"}),
		SessionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "loginguard_approval_session_duration_seconds",
			Help:    "Wall-clock duration of approval sessions including linger",
			Buckets: []float64{1, 5, 15, 30, 45, 60, 90, 120},
		}),
		CleanupFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "loginguard_approval_cleanup_failures_total",
			Help: "Message deletions that failed during session cleanup",
		}),
		DuplicateEvents: factory.NewCounter(prometheus.CounterOpts{
			Name: "loginguard_approval_duplicate_events_total",
			Help: "Change events skipped because the request was already claimed",
		}),
		Commands: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "loginguard_bot_commands_total",
			Help: "Slash commands handled by command and outcome",
		}, []string{"command", "outcome"}),
	}
}

func (m *Metrics) ObserveReconnect(ok bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if ok {
		outcome = "success"
	}
	m.ReconnectAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementEventsReceived() {
	if m == nil {
		return
	}
	m.EventsReceived.Inc()
}

func (m *Metrics) IncrementEnqueueRetries() {
	if m == nil {
		return
	}
	m.EnqueueRetries.Inc()
}

func (m *Metrics) SetQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(depth))
}

func (m *Metrics) ObserveSession(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Sessions.WithLabelValues(outcome).Inc()
	m.SessionDuration.Observe(seconds)
}

func (m *Metrics) IncrementCleanupFailures() {
	if m == nil {
		return
	}
	m.CleanupFailures.Inc()
}

func (m *Metrics) IncrementDuplicateEvents() {
	if m == nil {
		return
	}
	m.DuplicateEvents.Inc()
}

func (m *Metrics) ObserveCommand(name string, ok bool) {
	if m == nil {
		return
	}
	outcome := "error"
	if ok {
		outcome = "ok"
	}
	m.Commands.WithLabelValues(name, outcome).Inc()
}
