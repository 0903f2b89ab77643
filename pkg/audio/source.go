package audio

import (
	"io"
	"sync"
	"time"

	"github.com/morganstate-cs/morganai/pkg/buffer"
)

// ReaderSource turns an io.Reader of raw PCM into a chunked capture
// source. ReadChunk returns exactly the bytes covering the requested
// duration, short only at end of stream. It satisfies the realtime
// client's capture Source interface.
type ReaderSource struct {
	format Format

	mu     sync.Mutex
	r      io.Reader
	closed bool
}

// NewReaderSource wraps r, which must deliver audio in the given format.
func NewReaderSource(r io.Reader, format Format) *ReaderSource {
	return &ReaderSource{format: format, r: r}
}

// ReadChunk reads the next d worth of audio. A short final read is
// returned as-is; io.EOF follows on the next call.
func (s *ReaderSource) ReadChunk(d time.Duration) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, io.EOF
	}

	buf := make([]byte, s.format.BytesIn(d))
	n, err := io.ReadFull(s.r, buf)
	if n > 0 && (err == io.EOF || err == io.ErrUnexpectedEOF) {
		return buf[:n], nil
	}
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Close releases the underlying reader when it is an io.Closer.
func (s *ReaderSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// ReaderOpener opens a ReaderSource on demand.
type ReaderOpener struct {
	// Open returns the raw PCM stream and its format.
	OpenStream func() (io.Reader, Format, error)
}

func (o *ReaderOpener) Open() (Source, error) {
	r, format, err := o.OpenStream()
	if err != nil {
		return nil, err
	}
	return NewReaderSource(r, format), nil
}

// Source mirrors the realtime client's capture source contract.
type Source interface {
	ReadChunk(d time.Duration) ([]byte, error)
	Close() error
}

// PushSource is a capture source fed by its producer. Device callbacks
// or network receivers Write raw PCM as it arrives; ReadChunk blocks
// until at least one whole frame is buffered. CloseWrite ends the
// stream so the capture loop drains and stops cleanly.
type PushSource struct {
	format Format
	buf    *buffer.Buffer[byte]
}

// NewPushSource creates a PushSource for audio in the given format.
func NewPushSource(format Format) *PushSource {
	return &PushSource{
		format: format,
		buf:    buffer.New[byte](format.BytesIn(time.Second)),
	}
}

// Write queues captured PCM for the next ReadChunk. Never blocks.
func (s *PushSource) Write(p []byte) (int, error) {
	return s.buf.Write(p)
}

// CloseWrite signals end of capture. Queued audio remains readable.
func (s *PushSource) CloseWrite() error {
	return s.buf.CloseWrite()
}

// ReadChunk returns at most d worth of audio, always a whole number of
// frames. It blocks while no frame is buffered and reads io.EOF after
// CloseWrite once the queue drains.
func (s *PushSource) ReadChunk(d time.Duration) ([]byte, error) {
	buf := make([]byte, s.format.BytesIn(d))
	if len(buf) == 0 {
		return nil, nil
	}
	frame := s.format.FrameBytes()

	n := 0
	for n == 0 || n%frame != 0 {
		rn, err := s.buf.Read(buf[n:])
		n += rn
		if err != nil {
			if err == io.EOF && n%frame == 0 && n > 0 {
				return buf[:n], nil
			}
			if err == io.EOF && n%frame != 0 {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
	}
	return buf[:n], nil
}

// Close tears down the source. Pending reads drain and then end.
func (s *PushSource) Close() error {
	return s.buf.CloseWrite()
}

// WriterPlayer renders PCM chunks by writing them to w, pacing writes to
// real time so a fast producer does not flood the device. It satisfies the
// realtime client's Player interface.
type WriterPlayer struct {
	format Format

	mu sync.Mutex
	w  io.Writer
}

// NewWriterPlayer wraps w, which accepts audio in the given format.
func NewWriterPlayer(w io.Writer, format Format) *WriterPlayer {
	return &WriterPlayer{format: format, w: w}
}

// Play writes one chunk and sleeps for its play time.
func (p *WriterPlayer) Play(pcm []byte) error {
	p.mu.Lock()
	_, err := p.w.Write(pcm)
	p.mu.Unlock()
	if err != nil {
		return err
	}
	time.Sleep(p.format.Duration(len(pcm)))
	return nil
}
