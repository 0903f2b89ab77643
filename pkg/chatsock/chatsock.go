// Package chatsock maintains the text chat WebSocket channel. Unlike the
// realtime voice channel, this transport reconnects on its own: a dropped
// connection is retried with capped exponential backoff until the retry
// budget runs out or the context ends.
package chatsock

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Reconnect policy.
const (
	// BackoffBase is the delay before the first retry.
	BackoffBase = time.Second

	// BackoffCap bounds the delay between retries.
	BackoffCap = 30 * time.Second

	// MaxAttempts is the number of consecutive failed dials tolerated
	// before Run gives up. A successful connection resets the count.
	MaxAttempts = 5
)

// ErrRetriesExhausted is returned by Run after MaxAttempts consecutive
// failed connection attempts.
var ErrRetriesExhausted = errors.New("chatsock: retries exhausted")

// ErrNotConnected is returned by Send while the channel is down.
var ErrNotConnected = errors.New("chatsock: not connected")

// Message is one chat frame in either direction.
type Message struct {
	Type     string `json:"type"` // "message", "delta", "done", "typing", "error"
	ThreadID string `json:"thread_id,omitempty"`
	Role     string `json:"role,omitempty"`
	Content  string `json:"content,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Conn is one live WebSocket. Tests substitute an in-memory pipe.
type Conn interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
	Close() error
}

// Dialer opens a Conn.
type Dialer interface {
	Dial(ctx context.Context, url, token string) (Conn, error)
}

type wsDialer struct{}

func (wsDialer) Dial(ctx context.Context, url, token string) (Conn, error) {
	headers := http.Header{}
	if token != "" {
		headers.Set("Authorization", "Bearer "+token)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, headers)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Client is a reconnecting chat channel. Construct with New, then call Run
// once; Send is safe from any goroutine while Run is live.
type Client struct {
	url     string
	token   string
	dialer  Dialer
	logger  *slog.Logger
	handler func(*Message)

	backoffBase time.Duration
	backoffCap  time.Duration
	maxAttempts int

	mu   sync.Mutex
	conn Conn

	writeMu sync.Mutex
}

// Option configures a Client.
type Option func(*Client)

// WithDialer substitutes the transport dialer. Used by tests.
func WithDialer(d Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithToken sets the bearer token presented at dial time.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithBackoff overrides the reconnect policy.
func WithBackoff(base, cap time.Duration, maxAttempts int) Option {
	return func(c *Client) {
		c.backoffBase = base
		c.backoffCap = cap
		c.maxAttempts = maxAttempts
	}
}

// New creates a client for the given chat WebSocket URL. Every inbound
// frame is passed to handler on the read loop.
func New(url string, handler func(*Message), opts ...Option) *Client {
	c := &Client{
		url:         url,
		dialer:      wsDialer{},
		logger:      slog.Default(),
		handler:     handler,
		backoffBase: BackoffBase,
		backoffCap:  BackoffCap,
		maxAttempts: MaxAttempts,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connected reports whether a connection is currently live.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Send transmits one frame over the live connection.
func (c *Client) Send(msg *Message) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteJSON(msg)
}

// Run dials and pumps messages until ctx ends or the retry budget is
// spent. It blocks; start it in its own goroutine. Returns nil on context
// cancellation and ErrRetriesExhausted when every attempt failed.
func (c *Client) Run(ctx context.Context) error {
	attempts := 0
	for {
		conn, err := c.dialer.Dial(ctx, c.url, c.token)
		if err != nil {
			attempts++
			if attempts >= c.maxAttempts {
				c.logger.Error("chat channel gone", "attempts", attempts, "error", err)
				return ErrRetriesExhausted
			}
			delay := c.backoffDelay(attempts)
			c.logger.Warn("chat dial failed, retrying", "attempt", attempts, "delay", delay, "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(delay):
			}
			continue
		}

		attempts = 0
		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()
		c.logger.Info("chat channel connected", "url", c.url)

		err = c.pump(ctx, conn)

		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		conn.Close()

		if ctx.Err() != nil {
			return nil
		}
		c.logger.Warn("chat channel dropped", "error", err)
	}
}

// backoffDelay returns the delay before retry number attempt (1-based):
// base, base*2, base*4, ... capped.
func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := c.backoffBase << uint(attempt-1)
	if delay > c.backoffCap || delay <= 0 {
		return c.backoffCap
	}
	return delay
}

// pump reads frames until the connection drops or ctx ends.
func (c *Client) pump(ctx context.Context, conn Conn) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}
		if c.handler != nil {
			c.handler(&msg)
		}
	}
}
