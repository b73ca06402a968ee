package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"loginguard/internal/domain"
	id "loginguard/pkg/domain"
	"loginguard/pkg/platform/sentinel"
	txcontext "loginguard/pkg/platform/tx"
)

//go:embed schema.sql
var schema string

// PostgresStore persists players, login attempts and approved authentications.
// It implements the approval record store and the player accessors used by
// the slash commands.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Migrate creates the tables, trigger and view if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// WithinTx runs fn with a transaction stored in ctx; store calls made with
// that ctx join it.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return txcontext.Run(ctx, s.db, fn)
}

func (s *PostgresStore) GetRequestContext(ctx context.Context, requestID id.RequestID) (*domain.AuthenticationRequest, error) {
	req := &domain.AuthenticationRequest{ID: requestID}
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT minecraft_name, ip_address FROM authentication_requests WHERE id = $1`,
		int64(requestID),
	).Scan(&req.SubjectAccount, &req.OriginAddress)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("authentication request %s: %w", requestID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get authentication request: %w", err)
	}
	return req, nil
}

func (s *PostgresStore) GetLinkedIdentity(ctx context.Context, account string) (string, error) {
	var discordID string
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT discord_id FROM players WHERE minecraft_name = $1`,
		account,
	).Scan(&discordID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("player %q: %w", account, sentinel.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get linked identity: %w", err)
	}
	return discordID, nil
}

// IsAuthenticated reports whether identity holds a live authentication that was
// approved for a request from originAddress.
func (s *PostgresStore) IsAuthenticated(ctx context.Context, identity id.DiscordID, originAddress string) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM authenticated_players ap
		INNER JOIN authentication_requests ar ON ap.auth_request_id = ar.id
		WHERE ap.discord_id = $1 AND ar.ip_address = $2
	`
	var count int
	if err := s.execer(ctx).QueryRowContext(ctx, query, identity.String(), originAddress).Scan(&count); err != nil {
		return false, fmt.Errorf("check authentication: %w", err)
	}
	return count > 0, nil
}

// DeleteAuthentication removes the identity's authentication. It returns
// sentinel.ErrNotFound when there was none.
func (s *PostgresStore) DeleteAuthentication(ctx context.Context, identity id.DiscordID) error {
	result, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM player_authentications WHERE discord_id = $1`,
		identity.String(),
	)
	if err != nil {
		return fmt.Errorf("delete authentication: %w", err)
	}
	return requireAffected(result, "authentication", identity.String())
}

func (s *PostgresStore) InsertAuthentication(ctx context.Context, identity id.DiscordID, requestID id.RequestID) error {
	_, err := s.execer(ctx).ExecContext(ctx,
		`INSERT INTO player_authentications (discord_id, auth_request_id) VALUES ($1, $2)`,
		identity.String(), int64(requestID),
	)
	if err != nil {
		return fmt.Errorf("insert authentication: %w", err)
	}
	return nil
}

// AddPlayer stores a pending registration for identity.
func (s *PostgresStore) AddPlayer(ctx context.Context, identity id.DiscordID, registrationCode string) error {
	_, err := s.execer(ctx).ExecContext(ctx,
		`INSERT INTO players (discord_id, registration_code) VALUES ($1, $2)`,
		identity.String(), registrationCode,
	)
	if err != nil {
		return fmt.Errorf("add player: %w", err)
	}
	return nil
}

// DeletePlayer removes the player together with any authentication it holds.
func (s *PostgresStore) DeletePlayer(ctx context.Context, identity id.DiscordID) error {
	return s.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.DeleteAuthentication(ctx, identity); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return err
		}
		result, err := s.execer(ctx).ExecContext(ctx,
			`DELETE FROM players WHERE discord_id = $1`,
			identity.String(),
		)
		if err != nil {
			return fmt.Errorf("delete player: %w", err)
		}
		return requireAffected(result, "player", identity.String())
	})
}

func (s *PostgresStore) IsRegistered(ctx context.Context, identity id.DiscordID) (bool, error) {
	var count int
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM players WHERE discord_id = $1`,
		identity.String(),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check registration: %w", err)
	}
	return count > 0, nil
}

// GetMinecraftName returns the linked game account. A registered player that
// has not completed the in-game step yields sentinel.ErrNotFound.
func (s *PostgresStore) GetMinecraftName(ctx context.Context, identity id.DiscordID) (string, error) {
	var name sql.NullString
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT minecraft_name FROM players WHERE discord_id = $1`,
		identity.String(),
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !name.Valid) {
		return "", fmt.Errorf("minecraft name for %s: %w", identity, sentinel.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get minecraft name: %w", err)
	}
	return name.String, nil
}

func (s *PostgresStore) GetRegistrationCode(ctx context.Context, identity id.DiscordID) (string, error) {
	var code string
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT registration_code FROM players WHERE discord_id = $1`,
		identity.String(),
	).Scan(&code)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("registration code for %s: %w", identity, sentinel.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get registration code: %w", err)
	}
	return code, nil
}

func requireAffected(result sql.Result, what, key string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", what, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s %s: %w", what, key, sentinel.ErrNotFound)
	}
	return nil
}
