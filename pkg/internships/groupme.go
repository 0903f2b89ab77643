package internships

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// groupMeBaseURL is the public GroupMe REST API.
const groupMeBaseURL = "https://api.groupme.com/v3"

// ErrNotConfigured is returned when the GroupMe credentials are missing.
var ErrNotConfigured = errors.New("internships: groupme access token or group id not set")

// GroupMe reads the department group's message history through the
// GroupMe REST API.
type GroupMe struct {
	token   string
	groupID string
	baseURL string
	client  *http.Client
}

var _ Source = (*GroupMe)(nil)

// GroupMeOption configures the GroupMe source.
type GroupMeOption func(*GroupMe)

// WithGroupMeBaseURL points the source at a different API endpoint.
func WithGroupMeBaseURL(u string) GroupMeOption {
	return func(g *GroupMe) { g.baseURL = u }
}

// WithHTTPClient sets the client used for API calls.
func WithHTTPClient(c *http.Client) GroupMeOption {
	return func(g *GroupMe) { g.client = c }
}

// NewGroupMe creates a source for one group, authenticated with an
// access token.
func NewGroupMe(accessToken, groupID string, opts ...GroupMeOption) *GroupMe {
	g := &GroupMe{
		token:   accessToken,
		groupID: groupID,
		baseURL: groupMeBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// groupMeEnvelope is the API's response wrapper.
type groupMeEnvelope struct {
	Response struct {
		Messages []struct {
			ID        string `json:"id"`
			Text      string `json:"text"`
			CreatedAt int64  `json:"created_at"`
		} `json:"messages"`
	} `json:"response"`
}

// Fetch returns up to limit recent group messages, newest first.
func (g *GroupMe) Fetch(ctx context.Context, limit int) ([]Message, error) {
	if g.token == "" || g.groupID == "" {
		return nil, ErrNotConfigured
	}

	u := fmt.Sprintf("%s/groups/%s/messages", g.baseURL, url.PathEscape(g.groupID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("internships: build request: %w", err)
	}
	q := req.URL.Query()
	q.Set("token", g.token)
	q.Set("limit", strconv.Itoa(limit))
	req.URL.RawQuery = q.Encode()

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("internships: groupme request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("internships: groupme status %d", resp.StatusCode)
	}

	var envelope groupMeEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("internships: decode response: %w", err)
	}

	msgs := make([]Message, 0, len(envelope.Response.Messages))
	for _, m := range envelope.Response.Messages {
		if m.Text == "" {
			// Image-only and system messages carry no text.
			continue
		}
		msgs = append(msgs, Message{
			ID:        m.ID,
			Text:      m.Text,
			CreatedAt: time.Unix(m.CreatedAt, 0),
			Source:    "GroupMe",
		})
	}
	return msgs, nil
}
