package approval

import (
	"errors"
	"fmt"
)

// Kind is the normalized failure taxonomy for one approval session.
type Kind string

const (
	// KindLookup means the request context or linked identity could not be
	// resolved. The session aborts before anything is sent.
	KindLookup Kind = "lookup"

	// KindInteraction means a gateway call failed while the prompt was being
	// established or polled. The session aborts with best-effort cleanup.
	KindInteraction Kind = "interaction"

	// KindPersistence means a record store write failed while applying the
	// decision. The user receives an error-styled confirmation.
	KindPersistence Kind = "persistence"

	// KindCleanup means a message deletion failed. Logged only.
	KindCleanup Kind = "cleanup"
)

// Error wraps a session failure with its kind and the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("approval %s [%s]: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("approval %s [%s]", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// IsKind reports whether any error in err's chain is an *Error of kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
