package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, transports and queues return
// these (optionally wrapped) so services can decide whether to retry, abort or log.
//
// - ErrNotFound: row or resource does not exist
// - ErrUnavailable: dependency temporarily unavailable
// - ErrQueueFull: bounded hand-off queue has no free slot
// - ErrConnectionClosed: change channel connection is gone
// - ErrLockTimeout: per-identity lock could not be acquired in time
var (
	ErrNotFound         = errors.New("not found")
	ErrUnavailable      = errors.New("unavailable")
	ErrQueueFull        = errors.New("queue full")
	ErrConnectionClosed = errors.New("connection closed")
	ErrLockTimeout      = errors.New("lock timeout")
)
