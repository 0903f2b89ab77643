package realtime

// SendTextMessage creates a user conversation item containing the given
// text. It does not request a response; call GenerateResponse for that.
// Returns false when not connected.
func (c *Client) SendTextMessage(text string) bool {
	return c.sendEvent(EventConversationItemCreate, map[string]any{
		"item": map[string]any{
			"type": "message",
			"role": "user",
			"content": []map[string]any{
				{"type": "input_text", "text": text},
			},
		},
	})
}

// GenerateResponse asks the model to produce a response over both text and
// audio modalities. Fire-and-forget: no correlation ID is attached, and
// completion is observed through response.done. Returns false when not
// connected.
func (c *Client) GenerateResponse() bool {
	return c.sendEvent(EventResponseCreate, map[string]any{
		"response": map[string]any{
			"modalities": []string{ModalityText, ModalityAudio},
		},
	})
}

// CancelResponse requests cancellation of the in-flight response, if any.
// Returns false when not connected.
func (c *Client) CancelResponse() bool {
	return c.sendEvent(EventResponseCancel, nil)
}
