package audit

import (
	"context"
	"time"

	id "loginguard/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing.
type EventCategory string

const (
	// CategorySecurity covers events relevant to security monitoring and forensics:
	// denied or failed logins that may indicate account takeover attempts.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine outcomes useful for operational visibility.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted once per terminal approval session. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	SessionID string
	RequestID id.RequestID
	// Subject is the game account named in the login attempt.
	Subject  string
	Identity id.DiscordID
	// OriginAddress must already be anonymized by the caller.
	OriginAddress string
	Action        string
	Decision      string
	Reason        string
}

type AuditEvent string

const (
	EventLoginApproved             AuditEvent = "login_approved"
	EventLoginDenied               AuditEvent = "login_denied"
	EventLoginTimedOut             AuditEvent = "login_timed_out"
	EventLoginAlreadyAuthenticated AuditEvent = "login_already_authenticated"
	EventLoginPersistFailed        AuditEvent = "login_persist_failed"
	EventLoginAborted              AuditEvent = "login_aborted"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventLoginDenied:        CategorySecurity,
	EventLoginPersistFailed: CategorySecurity,
	EventLoginAborted:       CategorySecurity,

	EventLoginApproved:             CategoryOperations,
	EventLoginTimedOut:             CategoryOperations,
	EventLoginAlreadyAuthenticated: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByIdentity(ctx context.Context, identity id.DiscordID) ([]Event, error)
}
