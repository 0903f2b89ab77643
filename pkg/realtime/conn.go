package realtime

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
)

// DefaultEndpoint is the default realtime WebSocket endpoint.
const DefaultEndpoint = "wss://api.openai.com/v1/realtime"

// Conn is the transport handle owned by the client. Exactly one Conn is
// live at a time; a reconnect creates a new Conn rather than reusing the
// old handle.
type Conn interface {
	// ReadMessage blocks until the next text frame arrives.
	ReadMessage() ([]byte, error)

	// WriteJSON marshals v and sends it as one text frame.
	WriteJSON(v any) error

	// Close tears down the transport. Safe to call more than once.
	Close() error
}

// Dialer opens a Conn. The production dialer speaks WebSocket; tests
// substitute an in-memory pipe.
type Dialer interface {
	Dial(ctx context.Context, endpoint, model, credential string) (Conn, error)
}

// wsDialer is the gorilla/websocket-backed Dialer.
type wsDialer struct{}

func (wsDialer) Dial(ctx context.Context, endpoint, model, credential string) (Conn, error) {
	url := fmt.Sprintf("%s?model=%s", endpoint, model)

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+credential)
	headers.Set("OpenAI-Beta", "realtime=v1")

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("realtime: dial %s: status %d: %w", endpoint, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("realtime: dial %s: %w", endpoint, err)
	}
	return &wsConn{conn: conn}, nil
}

// wsConn adapts *websocket.Conn to the Conn interface.
type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	_, message, err := c.conn.ReadMessage()
	return message, err
}

func (c *wsConn) WriteJSON(v any) error {
	return c.conn.WriteJSON(v)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
