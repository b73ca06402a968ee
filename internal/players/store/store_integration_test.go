//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"loginguard/internal/notify"
	"loginguard/internal/players/store"
	id "loginguard/pkg/domain"
	"loginguard/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.pg.DB)
	s.Require().NoError(s.store.Migrate(context.Background()))
	// Applying the schema twice must be harmless.
	s.Require().NoError(s.store.Migrate(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.pg.DB.Exec(`TRUNCATE players, player_authentications, authentication_requests, audit_events`)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) insertRequest(account, ip string) id.RequestID {
	var requestID int64
	err := s.pg.DB.QueryRow(
		`INSERT INTO authentication_requests (minecraft_name, ip_address) VALUES ($1, $2) RETURNING id`,
		account, ip,
	).Scan(&requestID)
	s.Require().NoError(err)
	return id.RequestID(requestID)
}

func (s *PostgresStoreSuite) TestApprovalRoundTrip() {
	ctx := context.Background()
	s.Require().NoError(s.store.AddPlayer(ctx, "123", "code"))
	_, err := s.pg.DB.Exec(`UPDATE players SET minecraft_name = 'Steve' WHERE discord_id = '123'`)
	s.Require().NoError(err)

	requestID := s.insertRequest("Steve", "1.2.3.4")

	req, err := s.store.GetRequestContext(ctx, requestID)
	s.Require().NoError(err)
	s.Equal("Steve", req.SubjectAccount)

	identity, err := s.store.GetLinkedIdentity(ctx, "Steve")
	s.Require().NoError(err)
	s.Equal("123", identity)

	ok, err := s.store.IsAuthenticated(ctx, "123", "1.2.3.4")
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.store.InsertAuthentication(ctx, "123", requestID))

	ok, err = s.store.IsAuthenticated(ctx, "123", "1.2.3.4")
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.store.IsAuthenticated(ctx, "123", "5.6.7.8")
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.store.DeletePlayer(ctx, "123"))
	registered, err := s.store.IsRegistered(ctx, "123")
	s.Require().NoError(err)
	s.False(registered)
}

func (s *PostgresStoreSuite) TestInsertNotifiesChangeChannel() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := notify.PgxDialer{DSN: s.pg.DSN}.Dial(ctx)
	s.Require().NoError(err)
	defer func() { _ = conn.Close(context.Background()) }()
	s.Require().NoError(conn.Listen(ctx, "bot_updates"))

	requestID := s.insertRequest("Steve", "1.2.3.4")

	event, err := conn.Receive(ctx)
	s.Require().NoError(err)
	s.Equal("bot_updates", event.Topic)
	s.Equal(requestID.String(), event.Payload)
}

func TestPgxConn_ReceiveTimesOutQuietly(t *testing.T) {
	pg := containers.NewPostgresContainer(t)

	conn, err := notify.PgxDialer{DSN: pg.DSN}.Dial(context.Background())
	require.NoError(t, err)
	defer func() { _ = conn.Close(context.Background()) }()
	require.NoError(t, conn.Listen(context.Background(), "bot_updates"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = conn.Receive(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, conn.IsClosed())
}
