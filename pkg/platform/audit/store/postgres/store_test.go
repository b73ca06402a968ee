package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "loginguard/pkg/domain"
	audit "loginguard/pkg/platform/audit"
	txcontext "loginguard/pkg/platform/tx"
)

func TestStore_Append(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := New(db)
	ts := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_events")).
		WithArgs(sqlmock.AnyArg(), "security", ts, "sess-1", int64(42), "Steve", "123", "1.2.3.0", "login_denied", "denied", "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = store.Append(context.Background(), audit.Event{
		Timestamp:     ts,
		SessionID:     "sess-1",
		RequestID:     42,
		Subject:       "Steve",
		Identity:      "123",
		OriginAddress: "1.2.3.0",
		Action:        string(audit.EventLoginDenied),
		Decision:      "denied",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_AppendUsesTransactionFromContext(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_events")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	ctx := txcontext.WithTx(context.Background(), tx)

	require.NoError(t, New(db).Append(ctx, audit.Event{Action: string(audit.EventLoginApproved)}))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_AppendError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_events")).
		WillReturnError(errors.New("disk full"))

	err = New(db).Append(context.Background(), audit.Event{Action: string(audit.EventLoginApproved)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert audit event")
}

func TestStore_ListByIdentity(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ts := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"category", "timestamp", "session_id", "request_id", "subject",
		"discord_id", "origin_address", "action", "decision", "reason",
	}).AddRow("operations", ts, "sess-1", int64(42), "Steve", "123", "1.2.3.0", "login_approved", "approved", "")

	mock.ExpectQuery(regexp.QuoteMeta("WHERE discord_id = $1")).
		WithArgs("123").
		WillReturnRows(rows)

	events, err := New(db).ListByIdentity(context.Background(), id.DiscordID("123"))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.CategoryOperations, events[0].Category)
	assert.Equal(t, id.RequestID(42), events[0].RequestID)
	assert.Equal(t, id.DiscordID("123"), events[0].Identity)
	assert.Equal(t, "login_approved", events[0].Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}
