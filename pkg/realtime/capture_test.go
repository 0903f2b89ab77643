package realtime

import (
	"encoding/base64"
	"errors"
	"io"
	"sync"
	"testing"
	"time"
)

// fakeSource feeds canned PCM chunks. A closed chunks channel reads as EOF;
// an empty open channel reads as a zero-length chunk.
type fakeSource struct {
	chunks chan []byte

	mu     sync.Mutex
	closed bool
}

func (s *fakeSource) ReadChunk(d time.Duration) ([]byte, error) {
	select {
	case chunk, ok := <-s.chunks:
		if !ok {
			return nil, io.EOF
		}
		return chunk, nil
	default:
		return nil, nil
	}
}

func (s *fakeSource) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *fakeSource) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeOpener struct {
	mu     sync.Mutex
	source *fakeSource
	err    error
	opens  int
}

func (o *fakeOpener) Open() (Source, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opens++
	if o.err != nil {
		return nil, o.err
	}
	return o.source, nil
}

func TestStartRecording(t *testing.T) {
	t.Run("no source configured", func(t *testing.T) {
		c, _ := newTestClient(t)
		if err := c.StartRecording(); !errors.Is(err, ErrNoSource) {
			t.Errorf("err = %v, want ErrNoSource", err)
		}
	})

	t.Run("open failure stays idle", func(t *testing.T) {
		opener := &fakeOpener{err: errors.New("device busy")}
		c, _ := newTestClient(t, WithSource(opener))

		var mu sync.Mutex
		var codes []string
		c.On(EventError, func(ev *ServerEvent) {
			mu.Lock()
			codes = append(codes, ev.ErrorDetail.Code)
			mu.Unlock()
		})

		if err := c.StartRecording(); err == nil {
			t.Fatal("StartRecording returned nil, want error")
		}
		mu.Lock()
		if len(codes) != 1 || codes[0] != "capture_failed" {
			t.Errorf("error events = %v, want [capture_failed]", codes)
		}
		mu.Unlock()

		// The failed attempt must not count as an active recording.
		opener.err = nil
		opener.source = &fakeSource{chunks: make(chan []byte)}
		if err := c.StartRecording(); err != nil {
			t.Fatalf("StartRecording after failure: %v", err)
		}
		c.StopRecording()
	})

	t.Run("duplicate start rejected", func(t *testing.T) {
		opener := &fakeOpener{source: &fakeSource{chunks: make(chan []byte)}}
		c, _ := newTestClient(t, WithSource(opener))

		if err := c.StartRecording(); err != nil {
			t.Fatalf("StartRecording: %v", err)
		}
		if err := c.StartRecording(); !errors.Is(err, ErrRecordingActive) {
			t.Errorf("second StartRecording err = %v, want ErrRecordingActive", err)
		}
		if got := opener.opens; got != 1 {
			t.Errorf("opens = %d, want 1", got)
		}
		c.StopRecording()
	})
}

func TestCaptureTransmit(t *testing.T) {
	source := &fakeSource{chunks: make(chan []byte, 2)}
	source.chunks <- []byte("chunk-one")
	source.chunks <- []byte("chunk-two")
	close(source.chunks)

	opener := &fakeOpener{source: source}
	c, d := newTestClient(t, WithSource(opener), WithChunkInterval(time.Millisecond))
	conn := mustConnect(t, c, d)

	stopped := make(chan struct{})
	c.On(EventRecordingStopped, func(ev *ServerEvent) { close(stopped) })

	if err := c.StartRecording(); err != nil {
		t.Fatalf("StartRecording: %v", err)
	}

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("capture did not stop on source EOF")
	}
	if !source.isClosed() {
		t.Error("source left open after EOF")
	}

	var appends []map[string]any
	for _, w := range func() []map[string]any {
		conn.mu.Lock()
		defer conn.mu.Unlock()
		return append([]map[string]any(nil), conn.writes...)
	}() {
		if w["type"] == EventInputAudioBufferAppend {
			appends = append(appends, w)
		}
	}
	if len(appends) != 2 {
		t.Fatalf("append events = %d, want 2", len(appends))
	}
	want := []string{
		base64.StdEncoding.EncodeToString([]byte("chunk-one")),
		base64.StdEncoding.EncodeToString([]byte("chunk-two")),
	}
	for i, w := range appends {
		if got := w["audio"]; got != want[i] {
			t.Errorf("append %d audio = %v, want %q", i, got, want[i])
		}
	}
}

func TestStopRecording(t *testing.T) {
	source := &fakeSource{chunks: make(chan []byte)}
	opener := &fakeOpener{source: source}
	c, _ := newTestClient(t, WithSource(opener), WithChunkInterval(time.Millisecond))

	started := make(chan struct{})
	stopped := make(chan struct{})
	c.On(EventRecordingStarted, func(ev *ServerEvent) { close(started) })
	c.On(EventRecordingStopped, func(ev *ServerEvent) { close(stopped) })

	if err := c.StartRecording(); err != nil {
		t.Fatalf("StartRecording: %v", err)
	}
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("no recording.started event")
	}

	c.StopRecording()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("no recording.stopped event")
	}
	if !source.isClosed() {
		t.Error("source left open after stop")
	}

	// Stop when idle is a silent no-op.
	c.StopRecording()
}
