package postgres

import (
	"context"
	"database/sql"
	"fmt"

	id "loginguard/pkg/domain"
	audit "loginguard/pkg/platform/audit"
	txcontext "loginguard/pkg/platform/tx"

	"github.com/google/uuid"
)

// Store implements audit.Store on the audit_events table.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const selectColumns = `
	SELECT category, timestamp, session_id, request_id, subject,
		   discord_id, origin_address, action, decision, reason
	FROM audit_events
`

// Append inserts an audit event. The category is always derived from the action.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO audit_events (
			id, category, timestamp, session_id, request_id, subject,
			discord_id, origin_address, action, decision, reason
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	category := audit.AuditEvent(event.Action).Category()

	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		string(category),
		event.Timestamp,
		event.SessionID,
		int64(event.RequestID),
		event.Subject,
		event.Identity.String(),
		event.OriginAddress,
		event.Action,
		event.Decision,
		event.Reason,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByIdentity returns events for a specific chat identity, newest first.
func (s *Store) ListByIdentity(ctx context.Context, identity id.DiscordID) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+`
		WHERE discord_id = $1
		ORDER BY timestamp DESC
	`, identity.String())
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListRecent returns the N most recent events.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+`
		ORDER BY timestamp DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event

	for rows.Next() {
		var (
			category  string
			requestID int64
			identity  string
			event     audit.Event
		)
		err := rows.Scan(
			&category,
			&event.Timestamp,
			&event.SessionID,
			&requestID,
			&event.Subject,
			&identity,
			&event.OriginAddress,
			&event.Action,
			&event.Decision,
			&event.Reason,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		event.RequestID = id.RequestID(requestID)
		event.Identity = id.DiscordID(identity)
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
