package chatsock

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type pipeConn struct {
	inbound chan *Message

	mu     sync.Mutex
	sent   []*Message
	closed bool
}

func newPipeConn() *pipeConn {
	return &pipeConn{inbound: make(chan *Message, 8)}
}

func (c *pipeConn) ReadJSON(v any) error {
	msg, ok := <-c.inbound
	if !ok {
		return io.EOF
	}
	*(v.(*Message)) = *msg
	return nil
}

func (c *pipeConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return io.ErrClosedPipe
	}
	c.sent = append(c.sent, v.(*Message))
	return nil
}

func (c *pipeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.inbound)
	}
	return nil
}

// scriptDialer fails a fixed number of times before handing out conns.
type scriptDialer struct {
	mu       sync.Mutex
	failures int
	dials    int
	conns    []*pipeConn
}

func (d *scriptDialer) Dial(ctx context.Context, url, token string) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	if d.dials <= d.failures {
		return nil, errors.New("connection refused")
	}
	conn := newPipeConn()
	d.conns = append(d.conns, conn)
	return conn, nil
}

func (d *scriptDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

func (d *scriptDialer) last() *pipeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.conns) == 0 {
		return nil
	}
	return d.conns[len(d.conns)-1]
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBackoffDelay(t *testing.T) {
	c := New("ws://x", nil)
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 1, want: time.Second},
		{attempt: 2, want: 2 * time.Second},
		{attempt: 3, want: 4 * time.Second},
		{attempt: 5, want: 16 * time.Second},
		{attempt: 6, want: 30 * time.Second},
		{attempt: 20, want: 30 * time.Second},
	}
	for _, tt := range tests {
		if got := c.backoffDelay(tt.attempt); got != tt.want {
			t.Errorf("backoffDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestRunDeliversMessages(t *testing.T) {
	d := &scriptDialer{}
	got := make(chan *Message, 8)
	c := New("ws://x", func(m *Message) { got <- m },
		WithDialer(d), WithLogger(quietLogger()),
		WithBackoff(time.Millisecond, 10*time.Millisecond, 5))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runDone := make(chan error, 1)
	go func() { runDone <- c.Run(ctx) }()

	waitUntil(t, func() bool { return d.last() != nil })
	d.last().inbound <- &Message{Type: "message", Role: "assistant", Content: "hello"}

	select {
	case m := <-got:
		if m.Content != "hello" || m.Role != "assistant" {
			t.Errorf("message = %+v", m)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("message never delivered")
	}

	if err := c.Send(&Message{Type: "message", Content: "hi"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	conn := d.last()
	conn.mu.Lock()
	sent := len(conn.sent)
	conn.mu.Unlock()
	if sent != 1 {
		t.Errorf("sent frames = %d, want 1", sent)
	}

	cancel()
	select {
	case err := <-runDone:
		if err != nil {
			t.Errorf("Run = %v, want nil on cancellation", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunReconnects(t *testing.T) {
	d := &scriptDialer{}
	c := New("ws://x", nil,
		WithDialer(d), WithLogger(quietLogger()),
		WithBackoff(time.Millisecond, 10*time.Millisecond, 5))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	waitUntil(t, func() bool { return d.last() != nil })
	first := d.last()

	// Server drops the connection; the client dials again.
	first.Close()
	waitUntil(t, func() bool { return d.dialCount() >= 2 && d.last() != first })
	waitUntil(t, func() bool { return c.Connected() })
}

func TestRunGivesUp(t *testing.T) {
	d := &scriptDialer{failures: 1 << 30}
	c := New("ws://x", nil,
		WithDialer(d), WithLogger(quietLogger()),
		WithBackoff(time.Millisecond, 2*time.Millisecond, 3))

	err := c.Run(context.Background())
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("Run = %v, want ErrRetriesExhausted", err)
	}
	if got := d.dialCount(); got != 3 {
		t.Errorf("dials = %d, want 3", got)
	}
}

func TestSendWhileDown(t *testing.T) {
	c := New("ws://x", nil, WithLogger(quietLogger()))
	if err := c.Send(&Message{Type: "message"}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Send = %v, want ErrNotConnected", err)
	}
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
