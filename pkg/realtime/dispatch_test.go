package realtime

import (
	"sync"
	"testing"
	"time"
)

func TestHandlerIsolation(t *testing.T) {
	c, d := newTestClient(t)
	conn := mustConnect(t, c, d)

	var mu sync.Mutex
	var got []string
	done := make(chan struct{})

	c.On(EventResponseDone, func(ev *ServerEvent) {
		panic("handler bug")
	})
	c.On(EventResponseDone, func(ev *ServerEvent) {
		mu.Lock()
		got = append(got, ev.Type)
		mu.Unlock()
		close(done)
	})

	conn.deliver(t, map[string]any{"type": EventResponseDone})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second handler never ran after first panicked")
	}

	// The read loop survives the panic and keeps dispatching.
	conn.deliver(t, map[string]any{
		"type":    EventSessionCreated,
		"session": map[string]any{"id": "sess_after"},
	})
	waitUntil(t, func() bool { return c.SessionID() == "sess_after" })
}

func TestUnknownEventDelivered(t *testing.T) {
	c, d := newTestClient(t)
	conn := mustConnect(t, c, d)

	done := make(chan *ServerEvent, 1)
	c.On("conversation.item.truncated", func(ev *ServerEvent) { done <- ev })

	conn.deliver(t, map[string]any{
		"type":    "conversation.item.truncated",
		"item_id": "item_1",
	})

	select {
	case ev := <-done:
		if ev.ItemID != "item_1" {
			t.Errorf("item id = %q, want %q", ev.ItemID, "item_1")
		}
		if len(ev.Raw) == 0 {
			t.Error("raw frame not attached")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("unrecognized event type not delivered to subscriber")
	}
}

func TestHandlerOff(t *testing.T) {
	c, d := newTestClient(t)
	conn := mustConnect(t, c, d)

	var mu sync.Mutex
	first, second := 0, 0
	off := c.On(EventResponseCreated, func(ev *ServerEvent) {
		mu.Lock()
		first++
		mu.Unlock()
	})
	c.On(EventResponseCreated, func(ev *ServerEvent) {
		mu.Lock()
		second++
		mu.Unlock()
	})

	conn.deliver(t, map[string]any{"type": EventResponseCreated})
	waitUntil(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return second == 1
	})

	off()
	conn.deliver(t, map[string]any{"type": EventResponseCreated})
	waitUntil(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return second == 2
	})

	mu.Lock()
	defer mu.Unlock()
	if first != 1 {
		t.Errorf("removed handler ran %d times, want 1", first)
	}
}

func TestAssistantFanOut(t *testing.T) {
	c, d := newTestClient(t)
	conn := mustConnect(t, c, d)

	var mu sync.Mutex
	var messages, audios []*ServerEvent
	c.On(EventAssistantMessage, func(ev *ServerEvent) {
		mu.Lock()
		messages = append(messages, ev)
		mu.Unlock()
	})
	c.On(EventAssistantAudio, func(ev *ServerEvent) {
		mu.Lock()
		audios = append(audios, ev)
		mu.Unlock()
	})

	conn.deliver(t, map[string]any{
		"type": EventConversationItemCreated,
		"item": map[string]any{
			"id":   "item_42",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": "hello there"},
				{"type": "audio", "audio": "QUJD", "transcript": "hello there"},
			},
		},
	})
	// User items must not fan out.
	conn.deliver(t, map[string]any{
		"type": EventConversationItemCreated,
		"item": map[string]any{
			"id":      "item_43",
			"type":    "message",
			"role":    "user",
			"content": []map[string]any{{"type": "input_text", "text": "hi"}},
		},
	})
	conn.deliver(t, map[string]any{
		"type":    EventSessionCreated,
		"session": map[string]any{"id": "sync"},
	})
	waitUntil(t, func() bool { return c.SessionID() == "sync" })

	mu.Lock()
	defer mu.Unlock()
	if len(messages) != 1 {
		t.Fatalf("assistant.message events = %d, want 1", len(messages))
	}
	if messages[0].Text != "hello there" || messages[0].ItemID != "item_42" {
		t.Errorf("message = %+v, want text %q item %q", messages[0], "hello there", "item_42")
	}
	if len(audios) != 1 {
		t.Fatalf("assistant.audio events = %d, want 1", len(audios))
	}
	if audios[0].Audio != "QUJD" || audios[0].Transcript != "hello there" {
		t.Errorf("audio = %+v, want audio %q transcript %q", audios[0], "QUJD", "hello there")
	}
}

func TestSpeechEvents(t *testing.T) {
	c, d := newTestClient(t)
	conn := mustConnect(t, c, d)

	started := make(chan *ServerEvent, 1)
	stopped := make(chan *ServerEvent, 1)
	c.On(EventSpeechStarted, func(ev *ServerEvent) { started <- ev })
	c.On(EventSpeechStopped, func(ev *ServerEvent) { stopped <- ev })

	conn.deliver(t, map[string]any{
		"type":           EventInputAudioBufferSpeechStarted,
		"item_id":        "item_9",
		"audio_start_ms": 120,
	})
	conn.deliver(t, map[string]any{
		"type":         EventInputAudioBufferSpeechStopped,
		"item_id":      "item_9",
		"audio_end_ms": 840,
	})

	select {
	case ev := <-started:
		if ev.ItemID != "item_9" || ev.AudioStartMs != 120 {
			t.Errorf("speech.started = %+v, want item_9 at 120ms", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no speech.started event")
	}
	select {
	case ev := <-stopped:
		if ev.ItemID != "item_9" || ev.AudioEndMs != 840 {
			t.Errorf("speech.stopped = %+v, want item_9 at 840ms", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no speech.stopped event")
	}
}

func TestMalformedFrame(t *testing.T) {
	c, d := newTestClient(t)
	conn := mustConnect(t, c, d)

	errs := make(chan *ServerEvent, 1)
	c.On(EventError, func(ev *ServerEvent) { errs <- ev })

	conn.inbound <- []byte("{not json")

	select {
	case ev := <-errs:
		if ev.ErrorDetail == nil || ev.ErrorDetail.Code != "parse_failed" {
			t.Errorf("error detail = %+v, want code parse_failed", ev.ErrorDetail)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("malformed frame produced no error event")
	}

	// The session survives a bad frame.
	if got := c.Status(); got != StatusConnected {
		t.Errorf("status = %q, want %q", got, StatusConnected)
	}
}
