package realtime

import (
	"errors"
	"io"
	"time"

	"github.com/morganstate-cs/morganai/pkg/encoding"
)

// Source is an open microphone capture handle producing raw PCM.
type Source interface {
	// ReadChunk returns the next captured chunk of at most the given
	// duration of audio. io.EOF ends the capture loop cleanly.
	ReadChunk(d time.Duration) ([]byte, error)

	// Close releases the capture device.
	Close() error
}

// SourceOpener acquires the microphone. Opening may fail, e.g. when the
// device is missing or permission is denied.
type SourceOpener interface {
	Open() (Source, error)
}

// ErrNoSource is reported when StartRecording is called on a client
// configured without a microphone source.
var ErrNoSource = errors.New("realtime: no capture source configured")

// ErrRecordingActive is reported when StartRecording is called while a
// recording is already in progress. A client records at most one stream.
var ErrRecordingActive = errors.New("realtime: recording already active")

// recording is one active capture session.
type recording struct {
	source Source
	done   chan struct{}
}

func (r *recording) stop() {
	select {
	case <-r.done:
	default:
		close(r.done)
	}
	r.source.Close()
}

// StartRecording acquires the microphone and begins transmitting captured
// chunks every chunk interval as input_audio_buffer.append events. Each
// chunk is sent fire-and-forget; transmission of one chunk never waits on
// another. Emits recording.started on success and error on failure.
func (c *Client) StartRecording() error {
	if c.opener == nil {
		return ErrNoSource
	}

	c.mu.Lock()
	if c.recording != nil {
		c.mu.Unlock()
		c.logger.Warn("recording already active")
		return ErrRecordingActive
	}
	gen := c.gen
	c.mu.Unlock()

	source, err := c.opener.Open()
	if err != nil {
		c.logger.Error("microphone open failed", "error", err)
		c.emit(EventError, &ServerEvent{Type: EventError, ErrorDetail: localError("capture_failed", err)})
		return err
	}

	rec := &recording{source: source, done: make(chan struct{})}

	c.mu.Lock()
	if c.gen != gen || c.cleaned || c.recording != nil {
		c.mu.Unlock()
		source.Close()
		return ErrRecordingActive
	}
	c.recording = rec
	c.mu.Unlock()

	c.emit(EventRecordingStarted, &ServerEvent{Type: EventRecordingStarted})
	go c.captureLoop(rec)
	return nil
}

// StopRecording stops the active capture and releases the device. No-op
// when not recording.
func (c *Client) StopRecording() {
	c.mu.Lock()
	rec := c.recording
	c.recording = nil
	c.mu.Unlock()

	if rec == nil {
		return
	}
	rec.stop()
	c.emit(EventRecordingStopped, &ServerEvent{Type: EventRecordingStopped})
}

// CommitAudioBuffer asks the server to close the current input turn.
// Returns false when not connected.
func (c *Client) CommitAudioBuffer() bool {
	return c.sendEvent(EventInputAudioBufferCommit, nil)
}

// ClearAudioBuffer discards the server-side input buffer without creating
// a message. Returns false when not connected.
func (c *Client) ClearAudioBuffer() bool {
	return c.sendEvent(EventInputAudioBufferClear, nil)
}

// captureLoop reads one chunk per interval and transmits it until the
// recording stops or the source is exhausted.
func (c *Client) captureLoop(rec *recording) {
	ticker := time.NewTicker(c.chunkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rec.done:
			return
		case <-ticker.C:
		}

		chunk, err := rec.source.ReadChunk(c.chunkInterval)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				c.logger.Error("capture read failed", "error", err)
				c.emit(EventError, &ServerEvent{Type: EventError, ErrorDetail: localError("capture_failed", err)})
			}
			c.StopRecording()
			return
		}
		if len(chunk) == 0 {
			continue
		}

		c.sendEvent(EventInputAudioBufferAppend, map[string]any{
			"audio": encoding.StdBase64Data(chunk),
		})
	}
}
