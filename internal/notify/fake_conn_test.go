package notify

import (
	"context"
	"errors"
	"sync"

	"loginguard/internal/domain"
	"loginguard/pkg/platform/sentinel"
)

// fakeConn is an in-memory Conn. Events pushed with push are returned by
// Receive in order; kill simulates the server dropping the connection.
type fakeConn struct {
	mu        sync.Mutex
	events    chan domain.ChangeEvent
	closedCh  chan struct{}
	closed    bool
	listened  []string
	listenErr error
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		events:   make(chan domain.ChangeEvent, 16),
		closedCh: make(chan struct{}),
	}
}

func (c *fakeConn) push(topic, payload string) {
	c.events <- domain.ChangeEvent{Topic: topic, Payload: payload}
}

func (c *fakeConn) kill() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.closedCh)
	}
}

func (c *fakeConn) Listen(_ context.Context, topic string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listenErr != nil {
		return c.listenErr
	}
	c.listened = append(c.listened, topic)
	return nil
}

func (c *fakeConn) Receive(ctx context.Context) (domain.ChangeEvent, error) {
	// Queued events win over a pending close so a test can push then kill.
	select {
	case e := <-c.events:
		return e, nil
	default:
	}
	select {
	case e := <-c.events:
		return e, nil
	case <-c.closedCh:
		return domain.ChangeEvent{}, sentinel.ErrConnectionClosed
	case <-ctx.Done():
		return domain.ChangeEvent{}, ctx.Err()
	}
}

func (c *fakeConn) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) Close(context.Context) error {
	c.kill()
	return nil
}

func (c *fakeConn) topics() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.listened...)
}

// scriptedDialer hands out conns in order and fails while failures > 0.
type scriptedDialer struct {
	mu       sync.Mutex
	failures int
	conns    []*fakeConn
	dials    int
}

var errRefused = errors.New("connection refused")

func (d *scriptedDialer) Dial(context.Context) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	if d.failures > 0 {
		d.failures--
		return nil, errRefused
	}
	if len(d.conns) == 0 {
		return nil, errRefused
	}
	c := d.conns[0]
	d.conns = d.conns[1:]
	return c, nil
}

func (d *scriptedDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}
