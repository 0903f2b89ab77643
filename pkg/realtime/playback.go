package realtime

import (
	"encoding/base64"
	"errors"
)

// Player consumes decoded PCM audio. Play blocks until the chunk has been
// rendered; the queue drains one chunk at a time, in order, with no
// overlap.
type Player interface {
	Play(pcm []byte) error
}

// ErrNoPlayer is reported when PlayAudioQueue is called on a client
// configured without an audio sink.
var ErrNoPlayer = errors.New("realtime: no player configured")

// enqueueAudio appends one inbound base64 delta to the playback queue.
// Called from the read loop, so arrival order is queue order.
func (c *Client) enqueueAudio(delta string) {
	c.mu.Lock()
	c.queue = append(c.queue, delta)
	c.mu.Unlock()
}

// QueuedAudio returns a snapshot of the pending base64 audio chunks.
func (c *Client) QueuedAudio() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.queue...)
}

// PlayAudioQueue drains the playback queue in FIFO order, decoding and
// playing each chunk to completion before the next. A chunk that fails to
// decode or play is reported through the error event exactly once and
// skipped; later chunks still play. The drained chunks are removed from
// the queue.
func (c *Client) PlayAudioQueue() error {
	if c.player == nil {
		return ErrNoPlayer
	}

	c.mu.Lock()
	pending := c.queue
	c.queue = nil
	c.mu.Unlock()

	for _, chunk := range pending {
		pcm, err := base64.StdEncoding.DecodeString(chunk)
		if err != nil {
			c.logger.Error("audio chunk decode failed", "error", err)
			c.emit(EventError, &ServerEvent{Type: EventError, ErrorDetail: localError("decode_failed", err)})
			continue
		}
		if err := c.player.Play(pcm); err != nil {
			c.logger.Error("audio chunk playback failed", "error", err)
			c.emit(EventError, &ServerEvent{Type: EventError, ErrorDetail: localError("playback_failed", err)})
			continue
		}
	}
	return nil
}
