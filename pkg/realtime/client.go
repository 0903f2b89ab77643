package realtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the connection state reported by Client.Status.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
)

// Client is a realtime voice session client. The zero value is not usable;
// construct with NewClient. All methods are safe for concurrent use, but
// event handlers run sequentially on the read loop.
type Client struct {
	endpoint      string
	model         string
	dialer        Dialer
	logger        *slog.Logger
	opener        SourceOpener
	player        Player
	chunkInterval time.Duration

	mu        sync.Mutex
	status    Status
	conn      Conn
	gen       uint64 // connection generation; bumped on every Connect
	cleaned   bool   // current generation already torn down
	sessionID string
	config    SessionConfig
	recording *recording
	queue     []string // inbound audio deltas, base64, FIFO

	writeMu sync.Mutex

	handlerMu sync.Mutex
	handlers  map[string][]*handlerEntry
	handlerID int
}

// Option configures a Client.
type Option func(*Client)

// WithModel sets the model requested at connect time.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithEndpoint overrides the realtime endpoint URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithDialer substitutes the transport dialer. Used by tests.
func WithDialer(d Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithSource sets the microphone source opener used by StartRecording.
func WithSource(o SourceOpener) Option {
	return func(c *Client) { c.opener = o }
}

// WithPlayer sets the audio sink used by PlayAudioQueue.
func WithPlayer(p Player) Option {
	return func(c *Client) { c.player = p }
}

// WithChunkInterval overrides the capture chunk interval (default 100ms).
func WithChunkInterval(d time.Duration) Option {
	return func(c *Client) { c.chunkInterval = d }
}

// NewClient creates a disconnected client with default configuration.
func NewClient(opts ...Option) *Client {
	c := &Client{
		endpoint:      DefaultEndpoint,
		model:         ModelGPT4oRealtimePreview,
		dialer:        wsDialer{},
		logger:        slog.Default(),
		chunkInterval: 100 * time.Millisecond,
		status:        StatusDisconnected,
		cleaned:       true,
		config:        defaultSessionConfig(),
		handlers:      make(map[string][]*handlerEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect opens the transport using the given credential and, on success,
// sends the full session configuration. Calling Connect while connecting or
// connected is a no-op; the duplicate call is logged and nil is returned.
// The client does not retry on failure.
func (c *Client) Connect(ctx context.Context, credential string) error {
	c.mu.Lock()
	if c.status != StatusDisconnected {
		status := c.status
		c.mu.Unlock()
		c.logger.Warn("connect ignored: session already active", "status", string(status))
		return nil
	}
	c.status = StatusConnecting
	c.gen++
	c.cleaned = false
	gen := c.gen
	c.mu.Unlock()

	conn, err := c.dialer.Dial(ctx, c.endpoint, c.model, credential)
	if err != nil {
		c.mu.Lock()
		if c.gen == gen {
			c.status = StatusDisconnected
			c.cleaned = true
		}
		c.mu.Unlock()
		c.emit(EventError, &ServerEvent{Type: EventError, ErrorDetail: localError("connect_failed", err)})
		return err
	}

	c.mu.Lock()
	if c.gen != gen || c.cleaned {
		// Disconnect raced the dial; drop the fresh handle.
		c.mu.Unlock()
		conn.Close()
		return nil
	}
	c.conn = conn
	c.status = StatusConnected
	c.mu.Unlock()

	c.logger.Info("realtime session connected", "model", c.model)
	c.emit(EventConnected, &ServerEvent{Type: EventConnected})
	c.sendSessionUpdate()

	go c.readLoop(conn, gen)
	return nil
}

// Disconnect closes the transport and releases every dependent resource:
// active recording, playback queue, and session identity. Idempotent.
func (c *Client) Disconnect() {
	if c.teardown(c.currentGen()) {
		c.emit(EventDisconnected, &ServerEvent{Type: EventDisconnected})
	}
}

// Ready reports whether the client is connected and the server has
// acknowledged the session.
func (c *Client) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status == StatusConnected && c.sessionID != ""
}

// Status returns the current connection state.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// SessionID returns the server-assigned session identifier, or "" before
// session.created arrives.
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

func (c *Client) currentGen() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// readLoop consumes frames until the transport drops. It belongs to one
// connection generation; a teardown of that generation ends it.
func (c *Client) readLoop(conn Conn, gen uint64) {
	for {
		message, err := conn.ReadMessage()
		if err != nil {
			if c.teardown(gen) {
				c.logger.Info("realtime session closed", "reason", err)
				c.emit(EventDisconnected, &ServerEvent{Type: EventDisconnected})
			}
			return
		}
		if !c.live(gen) {
			return
		}
		c.handleFrame(message)
	}
}

// live reports whether gen is still the active, untorn connection.
func (c *Client) live(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen == gen && !c.cleaned
}

// teardown releases all connection-scoped resources exactly once per
// generation. Both Disconnect and the read loop funnel through here.
// It reports whether this call performed the teardown.
func (c *Client) teardown(gen uint64) bool {
	c.mu.Lock()
	if c.gen != gen || c.cleaned {
		c.mu.Unlock()
		return false
	}
	c.cleaned = true
	c.status = StatusDisconnected
	conn := c.conn
	c.conn = nil
	c.sessionID = ""
	rec := c.recording
	c.recording = nil
	c.queue = nil
	c.mu.Unlock()

	if rec != nil {
		rec.stop()
	}
	if conn != nil {
		conn.Close()
	}
	return true
}

// sendEvent transmits one client event. It returns false, without queueing,
// when the connection is not in the connected state or the write fails.
func (c *Client) sendEvent(eventType string, fields map[string]any) bool {
	c.mu.Lock()
	conn := c.conn
	connected := c.status == StatusConnected
	c.mu.Unlock()

	if !connected || conn == nil {
		c.logger.Warn("event dropped: not connected", "type", eventType)
		return false
	}

	event := map[string]any{
		"event_id": newEventID(),
		"type":     eventType,
	}
	for k, v := range fields {
		event[k] = v
	}

	c.writeMu.Lock()
	err := conn.WriteJSON(event)
	c.writeMu.Unlock()
	if err != nil {
		c.logger.Error("event send failed", "type", eventType, "error", err)
		c.emit(EventError, &ServerEvent{Type: EventError, ErrorDetail: localError("send_failed", err)})
		return false
	}
	return true
}

func newEventID() string {
	return "evt_" + uuid.NewString()[:12]
}
