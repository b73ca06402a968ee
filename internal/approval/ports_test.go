package approval

import (
	"loginguard/internal/approval/dedupe"
	"loginguard/internal/approval/lock"
	"loginguard/internal/approval/mocks"
)

// Generated mocks cover the collaborator ports; Deduper and Locker are
// exercised through their real in-process and Redis implementations instead.
var (
	_ RecordStore      = (*mocks.MockRecordStore)(nil)
	_ MessagingGateway = (*mocks.MockMessagingGateway)(nil)
	_ AuditPublisher   = (*mocks.MockAuditPublisher)(nil)

	_ Deduper = (*dedupe.MemoryDeduper)(nil)
	_ Deduper = (*dedupe.RedisDeduper)(nil)
	_ Locker  = (*lock.Keyed)(nil)
	_ Locker  = (*lock.RedisLocker)(nil)
)

