package realtime

// Config returns a snapshot of the current session configuration.
func (c *Client) Config() SessionConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	cfg := c.config
	cfg.Modalities = append([]string(nil), c.config.Modalities...)
	return cfg
}

// UpdateVoice changes the output voice and re-sends the full session
// configuration.
func (c *Client) UpdateVoice(voice string) bool {
	c.mu.Lock()
	c.config.Voice = voice
	c.mu.Unlock()
	return c.sendSessionUpdate()
}

// UpdateInstructions changes the system instructions and re-sends the full
// session configuration.
func (c *Client) UpdateInstructions(instructions string) bool {
	c.mu.Lock()
	c.config.Instructions = instructions
	c.mu.Unlock()
	return c.sendSessionUpdate()
}

// UpdateTemperature changes the sampling temperature and re-sends the full
// session configuration.
func (c *Client) UpdateTemperature(temperature float64) bool {
	c.mu.Lock()
	c.config.Temperature = temperature
	c.mu.Unlock()
	return c.sendSessionUpdate()
}

// UpdateMaxOutputTokens changes the response token limit and re-sends the
// full session configuration.
func (c *Client) UpdateMaxOutputTokens(n int) bool {
	c.mu.Lock()
	c.config.MaxOutputTokens = n
	c.mu.Unlock()
	return c.sendSessionUpdate()
}

// UpdateTurnDetection applies the non-nil fields of the update and re-sends
// the full session configuration.
func (c *Client) UpdateTurnDetection(update TurnDetectionUpdate) bool {
	c.mu.Lock()
	td := &c.config.TurnDetection
	if update.Mode != nil {
		td.Mode = *update.Mode
	}
	if update.Threshold != nil {
		td.Threshold = *update.Threshold
	}
	if update.PrefixPaddingMs != nil {
		td.PrefixPaddingMs = *update.PrefixPaddingMs
	}
	if update.SilenceDurationMs != nil {
		td.SilenceDurationMs = *update.SilenceDurationMs
	}
	c.mu.Unlock()
	return c.sendSessionUpdate()
}

// sendSessionUpdate transmits the complete current configuration. The
// server replaces the whole session state with this payload, so a diff
// would reset every field it omitted.
func (c *Client) sendSessionUpdate() bool {
	c.mu.Lock()
	cfg := c.config
	cfg.Modalities = append([]string(nil), c.config.Modalities...)
	c.mu.Unlock()

	return c.sendEvent(EventSessionUpdate, map[string]any{
		"session": cfg,
	})
}
