package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"loginguard/internal/domain"
	"loginguard/pkg/platform/sentinel"
)

// Conn is a live subscription-capable connection to the change channel.
type Conn interface {
	// Listen subscribes the connection to topic.
	Listen(ctx context.Context, topic string) error
	// Receive blocks until the next notification arrives or ctx is done.
	// A ctx deadline means "nothing yet"; a closed connection yields
	// sentinel.ErrConnectionClosed.
	Receive(ctx context.Context) (domain.ChangeEvent, error)
	IsClosed() bool
	Close(ctx context.Context) error
}

// Dialer opens a new Conn.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(ctx context.Context) (Conn, error)

func (f DialerFunc) Dial(ctx context.Context) (Conn, error) { return f(ctx) }

// PgxDialer opens dedicated pgx connections for LISTEN. Pooled connections
// cannot be used because notifications are delivered per backend session.
type PgxDialer struct {
	DSN string
}

func (d PgxDialer) Dial(ctx context.Context) (Conn, error) {
	c, err := pgx.Connect(ctx, d.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect change channel: %w", err)
	}
	return &pgxConn{conn: c}, nil
}

type pgxConn struct {
	conn *pgx.Conn
}

func (c *pgxConn) Listen(ctx context.Context, topic string) error {
	if _, err := c.conn.Exec(ctx, "LISTEN "+pgx.Identifier{topic}.Sanitize()); err != nil {
		return fmt.Errorf("listen %s: %w", topic, err)
	}
	return nil
}

func (c *pgxConn) Receive(ctx context.Context) (domain.ChangeEvent, error) {
	n, err := c.conn.WaitForNotification(ctx)
	if err != nil {
		if pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			if c.conn.IsClosed() {
				return domain.ChangeEvent{}, sentinel.ErrConnectionClosed
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return domain.ChangeEvent{}, ctxErr
			}
			return domain.ChangeEvent{}, context.DeadlineExceeded
		}
		if c.conn.IsClosed() {
			return domain.ChangeEvent{}, fmt.Errorf("%w: %v", sentinel.ErrConnectionClosed, err)
		}
		return domain.ChangeEvent{}, fmt.Errorf("wait for notification: %w", err)
	}
	return domain.ChangeEvent{Topic: n.Channel, Payload: n.Payload}, nil
}

func (c *pgxConn) IsClosed() bool { return c.conn.IsClosed() }

func (c *pgxConn) Close(ctx context.Context) error { return c.conn.Close(ctx) }
