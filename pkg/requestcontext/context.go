// Package requestcontext carries the identifiers of the approval session being
// processed through context.Context, so components deep in a call chain can
// correlate their logs without taking extra parameters.
//
// Usage in the workflow (set values):
//
//	ctx = requestcontext.WithSessionID(ctx, sess.ID)
//	ctx = requestcontext.WithRequestID(ctx, requestID)
//
// Usage in collaborators (read values):
//
//	logger.WarnContext(ctx, "lock release failed", requestcontext.LogAttrs(ctx)...)
package requestcontext

import (
	"context"

	id "loginguard/pkg/domain"
)

type (
	sessionIDKey struct{}
	requestIDKey struct{}
)

// SessionID retrieves the approval session id from the context.
// Returns the zero value if not set.
func SessionID(ctx context.Context) id.SessionID {
	if sessionID, ok := ctx.Value(sessionIDKey{}).(id.SessionID); ok {
		return sessionID
	}
	return id.SessionID{}
}

func WithSessionID(ctx context.Context, sessionID id.SessionID) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, sessionID)
}

// RequestID retrieves the authentication request id from the context.
// Returns 0 if not set.
func RequestID(ctx context.Context) id.RequestID {
	if requestID, ok := ctx.Value(requestIDKey{}).(id.RequestID); ok {
		return requestID
	}
	return 0
}

func WithRequestID(ctx context.Context, requestID id.RequestID) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// LogAttrs returns slog key/value pairs for the ids present in ctx.
func LogAttrs(ctx context.Context) []any {
	var attrs []any
	if sessionID := SessionID(ctx); sessionID != (id.SessionID{}) {
		attrs = append(attrs, "session_id", sessionID.String())
	}
	if requestID := RequestID(ctx); requestID != 0 {
		attrs = append(attrs, "request_id", requestID.String())
	}
	return attrs
}
