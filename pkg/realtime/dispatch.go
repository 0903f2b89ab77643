package realtime

import "encoding/json"

type handlerEntry struct {
	id int
	fn Handler
}

// On registers a handler for the given event type and returns a function
// that removes it. Multiple handlers per type are called in registration
// order.
func (c *Client) On(eventType string, h Handler) (off func()) {
	c.handlerMu.Lock()
	c.handlerID++
	entry := &handlerEntry{id: c.handlerID, fn: h}
	c.handlers[eventType] = append(c.handlers[eventType], entry)
	c.handlerMu.Unlock()

	return func() {
		c.handlerMu.Lock()
		defer c.handlerMu.Unlock()
		entries := c.handlers[eventType]
		for i, e := range entries {
			if e.id == entry.id {
				c.handlers[eventType] = append(entries[:i:i], entries[i+1:]...)
				break
			}
		}
	}
}

// emit delivers ev to every handler registered for eventType. A panicking
// handler is logged and skipped; the remaining handlers still run.
func (c *Client) emit(eventType string, ev *ServerEvent) {
	c.handlerMu.Lock()
	entries := append([]*handlerEntry(nil), c.handlers[eventType]...)
	c.handlerMu.Unlock()

	for _, e := range entries {
		c.call(eventType, e, ev)
	}
}

func (c *Client) call(eventType string, e *handlerEntry, ev *ServerEvent) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("event handler panicked", "type", eventType, "panic", r)
		}
	}()
	e.fn(ev)
}

// handleFrame parses one inbound frame and routes it. Malformed frames are
// reported as errors; unknown event types are logged and dropped, which
// keeps the client forward-compatible with new server events.
func (c *Client) handleFrame(message []byte) {
	var ev ServerEvent
	if err := json.Unmarshal(message, &ev); err != nil {
		c.logger.Error("frame parse failed", "error", err)
		c.emit(EventError, &ServerEvent{Type: EventError, ErrorDetail: localError("parse_failed", err)})
		return
	}
	ev.Raw = message

	switch ev.Type {
	case EventSessionCreated:
		if ev.Session != nil {
			c.mu.Lock()
			c.sessionID = ev.Session.ID
			c.mu.Unlock()
			c.logger.Info("session created", "session_id", ev.Session.ID)
		}

	case EventSessionUpdated:
		// Acknowledgement only; local config is already authoritative.

	case EventConversationItemCreated:
		c.fanOutItem(&ev)

	case EventResponseAudioDelta:
		if ev.Delta != "" {
			c.enqueueAudio(ev.Delta)
		}

	case EventInputAudioBufferSpeechStarted:
		c.emit(EventSpeechStarted, &ServerEvent{Type: EventSpeechStarted, ItemID: ev.ItemID, AudioStartMs: ev.AudioStartMs})

	case EventInputAudioBufferSpeechStopped:
		c.emit(EventSpeechStopped, &ServerEvent{Type: EventSpeechStopped, ItemID: ev.ItemID, AudioEndMs: ev.AudioEndMs})

	case EventError:
		if ev.ErrorDetail != nil {
			c.logger.Error("server error", "code", ev.ErrorDetail.Code, "message", ev.ErrorDetail.Message)
		}

	case EventSessionUpdate, EventResponseCreated, EventResponseDone,
		EventResponseOutputItemAdded, EventResponseOutputItemDone,
		EventResponseTextDelta, EventResponseTextDone,
		EventResponseAudioDone, EventResponseAudioTranscriptDelta,
		EventResponseAudioTranscriptDone, EventInputAudioBufferCommitted:
		// Delivered to subscribers below, no internal side effects.

	default:
		// Unknown types are still delivered to any subscriber for that tag.
		c.logger.Debug("unrecognized event type", "type", ev.Type)
	}

	c.emit(ev.Type, &ev)
}

// fanOutItem decomposes an assistant conversation item into one
// assistant.message event per text part and one assistant.audio event per
// audio part.
func (c *Client) fanOutItem(ev *ServerEvent) {
	item := ev.Item
	if item == nil || item.Role != "assistant" || item.Type != "message" {
		return
	}
	for _, part := range item.Content {
		switch part.Type {
		case "text":
			c.emit(EventAssistantMessage, &ServerEvent{
				Type:   EventAssistantMessage,
				ItemID: item.ID,
				Text:   part.Text,
			})
		case "audio":
			c.emit(EventAssistantAudio, &ServerEvent{
				Type:       EventAssistantAudio,
				ItemID:     item.ID,
				Audio:      part.Audio,
				Transcript: part.Transcript,
			})
		}
	}
}
