package approval

import (
	"time"

	"loginguard/internal/domain"
	id "loginguard/pkg/domain"
	"loginguard/pkg/platform/audit"
)

// Stage is the furthest point a session reached.
type Stage int

const (
	StageReceived Stage = iota
	StageContextResolved
	StagePromptSent
	StagePolling
	StageDecided
	StageCleaned
)

func (s Stage) String() string {
	switch s {
	case StageReceived:
		return "received"
	case StageContextResolved:
		return "context_resolved"
	case StagePromptSent:
		return "prompt_sent"
	case StagePolling:
		return "polling"
	case StageDecided:
		return "decided"
	case StageCleaned:
		return "cleaned"
	default:
		return "unknown"
	}
}

// Outcome is the single terminal result of a session.
type Outcome string

const (
	OutcomeApproved             Outcome = "approved"
	OutcomeDenied               Outcome = "denied"
	OutcomeTimedOut             Outcome = "timed_out"
	OutcomeAlreadyAuthenticated Outcome = "already_authenticated"
	OutcomePersistFailed        Outcome = "persist_failed"
	OutcomeAborted              Outcome = "aborted"
	// OutcomeDuplicate marks an event whose request id was already claimed,
	// typically by another replica.
	OutcomeDuplicate Outcome = "duplicate"
)

// auditAction maps an outcome to its audit action. Duplicates are audited by
// whichever process claimed the request.
func (o Outcome) auditAction() (audit.AuditEvent, bool) {
	switch o {
	case OutcomeApproved:
		return audit.EventLoginApproved, true
	case OutcomeDenied:
		return audit.EventLoginDenied, true
	case OutcomeTimedOut:
		return audit.EventLoginTimedOut, true
	case OutcomeAlreadyAuthenticated:
		return audit.EventLoginAlreadyAuthenticated, true
	case OutcomePersistFailed:
		return audit.EventLoginPersistFailed, true
	case OutcomeAborted:
		return audit.EventLoginAborted, true
	default:
		return "", false
	}
}

// Session is the in-memory state of one approval run. It is owned by the
// goroutine processing the event and returned to the caller once terminal.
type Session struct {
	ID    id.SessionID
	Event domain.ChangeEvent

	RequestID      id.RequestID
	SubjectAccount string
	OriginAddress  string
	Identity       id.DiscordID

	Channel       domain.ChannelID
	Prompt        domain.MessageRef
	ApproveMarker string
	DenyMarker    string

	Decision     domain.Decision
	Confirmation *domain.MessageRef

	Stage   Stage
	Outcome Outcome
	// Err is the failure that shaped the outcome, if any. Cleanup failures
	// are logged but never recorded here.
	Err error

	StartedAt time.Time
	DecidedAt time.Time
}

func newSession(event domain.ChangeEvent, approve, deny string, now time.Time) *Session {
	return &Session{
		ID:            id.NewSessionID(),
		Event:         event,
		ApproveMarker: approve,
		DenyMarker:    deny,
		Decision:      domain.DecisionPending,
		Stage:         StageReceived,
		StartedAt:     now,
	}
}
