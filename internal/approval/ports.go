package approval

import (
	"context"

	"loginguard/internal/domain"
	id "loginguard/pkg/domain"
	"loginguard/pkg/platform/audit"
)

// RecordStore resolves login attempts and persists approved authentications.
// Implementations must be safe for concurrent use.
type RecordStore interface {
	// GetRequestContext returns the account and origin address of a login
	// attempt. Missing rows return an error wrapping sentinel.ErrNotFound.
	GetRequestContext(ctx context.Context, requestID id.RequestID) (*domain.AuthenticationRequest, error)

	// GetLinkedIdentity returns the raw chat identity linked to account, as stored.
	GetLinkedIdentity(ctx context.Context, account string) (string, error)

	IsAuthenticated(ctx context.Context, identity id.DiscordID, originAddress string) (bool, error)
	DeleteAuthentication(ctx context.Context, identity id.DiscordID) error
	InsertAuthentication(ctx context.Context, identity id.DiscordID, requestID id.RequestID) error
}

// MessagingGateway is the subset of the chat platform the workflow drives.
// Implementations must be safe for concurrent use.
type MessagingGateway interface {
	OpenDirectChannel(ctx context.Context, identity id.DiscordID) (domain.ChannelID, error)
	SendMessage(ctx context.Context, channel domain.ChannelID, msg domain.Message) (domain.MessageRef, error)
	AddReaction(ctx context.Context, msg domain.MessageRef, marker string) error
	// ListReactors returns the ids of every user that reacted with marker,
	// including the bot's own reaction.
	ListReactors(ctx context.Context, msg domain.MessageRef, marker string) ([]string, error)
	DeleteMessage(ctx context.Context, msg domain.MessageRef) error
}

// Deduper claims a request id so that it is processed at most once, even when
// several replicas receive the same change event.
type Deduper interface {
	// Claim returns true when the caller is the first to claim requestID.
	Claim(ctx context.Context, requestID id.RequestID) (bool, error)
	// Release drops a claim so a later delivery of requestID is processed.
	Release(ctx context.Context, requestID id.RequestID) error
}

// Locker serializes decision application per identity.
type Locker interface {
	// Acquire blocks until key is held or ctx is done. The returned function
	// releases the lock and is safe to call once.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// AuditPublisher records terminal session outcomes.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
