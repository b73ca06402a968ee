package domain

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// ErrInvalidID is returned (wrapped) by every Parse* function in this package.
var ErrInvalidID = errors.New("invalid id")

// Typed identifiers keep request ids, chat identities and session ids from
// being mixed up at call sites.
type (
	// RequestID is the primary key of an authentication request row.
	RequestID int64
	// DiscordID is a Discord user snowflake in its decimal string form.
	DiscordID string
	// SessionID identifies one in-memory approval session.
	SessionID uuid.UUID
)

const maxSnowflakeLen = 20

// ParseRequestID parses a change-channel payload. Only plain base-10 positive
// integers are accepted; no sign, whitespace or leading plus.
func ParseRequestID(raw string) (RequestID, error) {
	if raw == "" || len(raw) > 19 {
		return 0, fmt.Errorf("%w: request id %q", ErrInvalidID, raw)
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, fmt.Errorf("%w: request id %q", ErrInvalidID, raw)
		}
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: request id %q", ErrInvalidID, raw)
	}
	return RequestID(v), nil
}

func (id RequestID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseDiscordID validates a stored snowflake. Linked identities are written by
// an external registration flow, so malformed values are possible.
func ParseDiscordID(raw string) (DiscordID, error) {
	if raw == "" || len(raw) > maxSnowflakeLen {
		return "", fmt.Errorf("%w: discord id %q", ErrInvalidID, raw)
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return "", fmt.Errorf("%w: discord id %q", ErrInvalidID, raw)
	}
	// Normalise away leading zeros so lock and dedupe keys are canonical.
	return DiscordID(strconv.FormatUint(v, 10)), nil
}

func (id DiscordID) String() string { return string(id) }

// IsNil reports whether the identity is unset.
func (id DiscordID) IsNil() bool { return id == "" }

// NewSessionID returns a fresh random session id.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

func (id SessionID) String() string { return uuid.UUID(id).String() }
