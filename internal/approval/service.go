package approval

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"loginguard/internal/approval/dedupe"
	"loginguard/internal/approval/lock"
	"loginguard/internal/domain"
	"loginguard/internal/platform/metrics"
	id "loginguard/pkg/domain"
	"loginguard/pkg/platform/audit"
	"loginguard/pkg/platform/clock"
	"loginguard/pkg/platform/privacy"
	"loginguard/pkg/platform/sentinel"
	"loginguard/pkg/platform/wait"
	"loginguard/pkg/requestcontext"
)

const (
	defaultWindow        = 30 * time.Second
	defaultLinger        = 30 * time.Second
	defaultPollInterval  = time.Second
	defaultThreshold     = 1
	defaultApproveMarker = "✅"
	defaultDenyMarker    = "❌"
	defaultDedupeTTL     = 24 * time.Hour
	cleanupTimeout       = 10 * time.Second
)

// Service runs the approval workflow for one change event at a time. It is
// safe to call Process from several goroutines; sessions share no state
// beyond the injected collaborators.
type Service struct {
	store    RecordStore
	gateway  MessagingGateway
	deduper  Deduper
	locker   Locker
	auditor  AuditPublisher
	clock    clock.Clock
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	window   time.Duration
	linger   time.Duration
	interval time.Duration

	threshold     int
	approveMarker string
	denyMarker    string
}

type Option func(*Service)

func WithDeduper(d Deduper) Option {
	return func(s *Service) {
		if d != nil {
			s.deduper = d
		}
	}
}

func WithLocker(l Locker) Option {
	return func(s *Service) {
		if l != nil {
			s.locker = l
		}
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithWindows sets the reaction window, the post-decision linger and the
// polling cadence. Non-positive values keep the defaults.
func WithWindows(window, linger, interval time.Duration) Option {
	return func(s *Service) {
		if window > 0 {
			s.window = window
		}
		if linger >= 0 {
			s.linger = linger
		}
		if interval > 0 {
			s.interval = interval
		}
	}
}

func WithReactionThreshold(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.threshold = n
		}
	}
}

func WithMarkers(approve, deny string) Option {
	return func(s *Service) {
		if approve != "" && deny != "" && approve != deny {
			s.approveMarker = approve
			s.denyMarker = deny
		}
	}
}

func New(store RecordStore, gateway MessagingGateway, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("record store is required")
	}
	if gateway == nil {
		return nil, errors.New("messaging gateway is required")
	}
	s := &Service{
		store:         store,
		gateway:       gateway,
		locker:        lock.NewKeyed(),
		clock:         clock.Real(),
		logger:        slog.Default(),
		tracer:        otel.Tracer("loginguard/approval"),
		window:        defaultWindow,
		linger:        defaultLinger,
		interval:      defaultPollInterval,
		threshold:     defaultThreshold,
		approveMarker: defaultApproveMarker,
		denyMarker:    defaultDenyMarker,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.deduper == nil {
		s.deduper = dedupe.NewMemoryDeduper(defaultDedupeTTL, s.clock)
	}
	return s, nil
}

// Process runs one session to its terminal state and returns it. Failures are
// confined to the session: they are logged, recorded on the returned Session
// and never returned to the caller.
func (s *Service) Process(ctx context.Context, event domain.ChangeEvent) *Session {
	sess := newSession(event, s.approveMarker, s.denyMarker, s.clock.Now())
	ctx = requestcontext.WithSessionID(ctx, sess.ID)
	ctx, span := s.tracer.Start(ctx, "approval.session", trace.WithAttributes(
		attribute.String("session.id", sess.ID.String()),
		attribute.String("event.topic", event.Topic),
		attribute.String("event.payload", event.Payload),
	))
	defer span.End()

	logger := s.logger.With("session_id", sess.ID.String(), "payload", event.Payload)

	if err := s.run(ctx, sess, logger); err != nil {
		sess.Err = err
		if sess.Outcome == "" {
			sess.Outcome = OutcomeAborted
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, string(sess.Outcome))
	}
	s.cleanup(ctx, sess, logger)
	s.finish(ctx, sess, logger)
	return sess
}

func (s *Service) run(ctx context.Context, sess *Session, logger *slog.Logger) error {
	requestID, err := id.ParseRequestID(sess.Event.Payload)
	if err != nil {
		logger.WarnContext(ctx, "discarding change event with malformed payload", "error", err)
		return newError(KindLookup, "parse payload", err)
	}
	sess.RequestID = requestID
	ctx = requestcontext.WithRequestID(ctx, requestID)

	claimed, err := s.deduper.Claim(ctx, requestID)
	switch {
	case err != nil:
		logger.WarnContext(ctx, "request claim failed, processing anyway", "request_id", requestID.String(), "error", err)
	case !claimed:
		logger.InfoContext(ctx, "skipping already claimed request", "request_id", requestID.String())
		s.metrics.IncrementDuplicateEvents()
		sess.Outcome = OutcomeDuplicate
		return nil
	}

	if err := s.resolve(ctx, sess, logger); err != nil {
		s.releaseClaim(ctx, sess, claimed, logger)
		return err
	}
	if err := s.prompt(ctx, sess, logger); err != nil {
		s.releaseClaim(ctx, sess, claimed, logger)
		return err
	}

	sess.Stage = StagePolling
	pctx, span := s.tracer.Start(ctx, "approval.poll")
	decision, err := NewPoller(s.gateway, s.clock, s.interval, s.threshold).
		Poll(pctx, sess.Prompt, sess.ApproveMarker, sess.DenyMarker, s.window)
	span.End()
	if err != nil {
		logger.ErrorContext(ctx, "reaction polling failed", "error", err)
		return newError(KindInteraction, "poll reactions", err)
	}

	sess.Decision = decision
	sess.DecidedAt = s.clock.Now()
	sess.Stage = StageDecided
	logger.InfoContext(ctx, "login request decided", "decision", decision.String(), "discord_id", sess.Identity.String())

	perr := s.apply(ctx, sess, logger)
	s.lingerAfterDecision(ctx, sess)
	return perr
}

// releaseClaim lets a redelivered event retry a session that never reached
// the user. Once a prompt is visible the claim stays.
func (s *Service) releaseClaim(ctx context.Context, sess *Session, claimed bool, logger *slog.Logger) {
	if !claimed || !sess.Prompt.IsZero() {
		return
	}
	if err := s.deduper.Release(context.WithoutCancel(ctx), sess.RequestID); err != nil {
		logger.WarnContext(ctx, "could not release request claim", "request_id", sess.RequestID.String(), "error", err)
	}
}

// resolve loads the request context and the linked identity.
func (s *Service) resolve(ctx context.Context, sess *Session, logger *slog.Logger) error {
	ctx, span := s.tracer.Start(ctx, "approval.resolve")
	defer span.End()

	req, err := s.store.GetRequestContext(ctx, sess.RequestID)
	if err != nil {
		logger.ErrorContext(ctx, "could not load authentication request", "request_id", sess.RequestID.String(), "error", err)
		return newError(KindLookup, "get request context", err)
	}
	sess.SubjectAccount = req.SubjectAccount
	sess.OriginAddress = req.OriginAddress
	sess.Stage = StageContextResolved

	raw, err := s.store.GetLinkedIdentity(ctx, req.SubjectAccount)
	if err != nil {
		logger.ErrorContext(ctx, "could not resolve linked identity", "subject", req.SubjectAccount, "error", err)
		return newError(KindLookup, "get linked identity", err)
	}
	identity, err := id.ParseDiscordID(raw)
	if err != nil {
		logger.ErrorContext(ctx, "linked identity is malformed", "subject", req.SubjectAccount, "error", err)
		return newError(KindLookup, "parse linked identity", err)
	}
	sess.Identity = identity
	return nil
}

// prompt opens the direct channel, sends the prompt and adds both markers.
func (s *Service) prompt(ctx context.Context, sess *Session, logger *slog.Logger) error {
	ctx, span := s.tracer.Start(ctx, "approval.prompt")
	defer span.End()

	channel, err := s.gateway.OpenDirectChannel(ctx, sess.Identity)
	if err != nil {
		logger.ErrorContext(ctx, "could not open direct channel", "discord_id", sess.Identity.String(), "error", err)
		return newError(KindInteraction, "open direct channel", err)
	}
	sess.Channel = channel

	msg, err := s.gateway.SendMessage(ctx, channel, promptMessage(sess.SubjectAccount))
	if err != nil {
		logger.ErrorContext(ctx, "could not send login prompt", "discord_id", sess.Identity.String(), "error", err)
		return newError(KindInteraction, "send prompt", err)
	}
	sess.Prompt = msg
	sess.Stage = StagePromptSent

	for _, marker := range []string{sess.ApproveMarker, sess.DenyMarker} {
		if err := s.gateway.AddReaction(ctx, msg, marker); err != nil {
			logger.ErrorContext(ctx, "could not add reaction to prompt", "marker", marker, "error", err)
			return newError(KindInteraction, "add reaction", err)
		}
	}
	return nil
}

// apply persists the decision and sends the matching confirmation. The
// returned error is a persistence failure; the session still completes.
func (s *Service) apply(ctx context.Context, sess *Session, logger *slog.Logger) error {
	ctx, span := s.tracer.Start(ctx, "approval.apply", trace.WithAttributes(
		attribute.String("decision", sess.Decision.String()),
	))
	defer span.End()

	switch sess.Decision {
	case domain.DecisionDenied:
		sess.Outcome = OutcomeDenied
		s.confirm(ctx, sess, deniedMessage, logger)
		return nil
	case domain.DecisionApproved:
		msg, outcome, err := s.persistApproval(ctx, sess, logger)
		sess.Outcome = outcome
		s.confirm(ctx, sess, msg, logger)
		if err != nil {
			span.RecordError(err)
		}
		return err
	default:
		// Timeouts stay silent; only cleanup follows.
		sess.Outcome = OutcomeTimedOut
		return nil
	}
}

// persistApproval records the authentication under the identity lock so two
// sessions for the same identity never interleave their writes.
func (s *Service) persistApproval(ctx context.Context, sess *Session, logger *slog.Logger) (domain.Message, Outcome, error) {
	release, err := s.locker.Acquire(ctx, sess.Identity.String())
	if err != nil {
		logger.ErrorContext(ctx, "could not acquire identity lock", "discord_id", sess.Identity.String(), "error", err)
		return internalErrorMessage, OutcomePersistFailed, newError(KindPersistence, "acquire identity lock", err)
	}
	defer release()

	already, err := s.store.IsAuthenticated(ctx, sess.Identity, sess.OriginAddress)
	if err != nil {
		logger.ErrorContext(ctx, "could not check authentication status", "discord_id", sess.Identity.String(), "error", err)
		return internalErrorMessage, OutcomePersistFailed, newError(KindPersistence, "check authentication", err)
	}
	if already {
		return alreadyAuthenticatedMessage, OutcomeAlreadyAuthenticated, nil
	}

	if err := s.store.DeleteAuthentication(ctx, sess.Identity); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		logger.WarnContext(ctx, "could not delete stale authentication", "discord_id", sess.Identity.String(), "error", err)
	}
	if err := s.store.InsertAuthentication(ctx, sess.Identity, sess.RequestID); err != nil {
		logger.ErrorContext(ctx, "could not store authentication", "discord_id", sess.Identity.String(), "request_id", sess.RequestID.String(), "error", err)
		return internalErrorMessage, OutcomePersistFailed, newError(KindPersistence, "insert authentication", err)
	}
	return approvedMessage, OutcomeApproved, nil
}

func (s *Service) confirm(ctx context.Context, sess *Session, msg domain.Message, logger *slog.Logger) {
	ref, err := s.gateway.SendMessage(ctx, sess.Channel, msg)
	if err != nil {
		logger.ErrorContext(ctx, "could not send confirmation", "discord_id", sess.Identity.String(), "error", err)
		return
	}
	sess.Confirmation = &ref
}

// lingerAfterDecision leaves the messages visible until the linger window,
// measured from the decision, has passed.
func (s *Service) lingerAfterDecision(ctx context.Context, sess *Session) {
	if s.linger <= 0 {
		return
	}
	_, _ = wait.Until(ctx, s.clock, s.linger, sess.DecidedAt.Add(s.linger), wait.Never)
}

// cleanup deletes every message the session sent. It runs once per session
// on every path, ignoring cancellation of ctx; failures are logged only.
func (s *Service) cleanup(ctx context.Context, sess *Session, logger *slog.Logger) {
	defer func() { sess.Stage = StageCleaned }()
	if sess.Prompt.IsZero() && sess.Confirmation == nil {
		return
	}

	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	cctx, span := s.tracer.Start(cctx, "approval.cleanup")
	defer span.End()

	for _, ref := range s.sentMessages(sess) {
		if err := s.gateway.DeleteMessage(cctx, ref); err != nil {
			s.metrics.IncrementCleanupFailures()
			logger.WarnContext(ctx, "could not delete message",
				"message_id", ref.MessageID,
				"error", newError(KindCleanup, "delete message", err),
			)
		}
	}
}

func (s *Service) sentMessages(sess *Session) []domain.MessageRef {
	var refs []domain.MessageRef
	if !sess.Prompt.IsZero() {
		refs = append(refs, sess.Prompt)
	}
	if sess.Confirmation != nil {
		refs = append(refs, *sess.Confirmation)
	}
	return refs
}

func (s *Service) finish(ctx context.Context, sess *Session, logger *slog.Logger) {
	elapsed := s.clock.Now().Sub(sess.StartedAt)
	s.metrics.ObserveSession(string(sess.Outcome), elapsed.Seconds())

	attrs := []any{
		"outcome", string(sess.Outcome),
		"stage", sess.Stage.String(),
		"duration", elapsed,
	}
	if sess.Err != nil {
		attrs = append(attrs, "error", sess.Err)
	}
	logger.InfoContext(ctx, "approval session finished", attrs...)

	action, ok := sess.Outcome.auditAction()
	if !ok || s.auditor == nil {
		return
	}
	event := audit.Event{
		Timestamp:     s.clock.Now(),
		SessionID:     sess.ID.String(),
		RequestID:     sess.RequestID,
		Subject:       sess.SubjectAccount,
		Identity:      sess.Identity,
		OriginAddress: privacy.AnonymizeIP(sess.OriginAddress),
		Action:        string(action),
		Decision:      sess.Decision.String(),
	}
	if sess.Err != nil {
		event.Reason = sess.Err.Error()
	}
	if err := s.auditor.Emit(context.WithoutCancel(ctx), event); err != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "action", event.Action, "error", err)
	}
}

