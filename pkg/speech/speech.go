// Package speech converts between text and audio for the assistant's
// voice features: text-to-speech for spoken replies and speech-to-text
// for transcribing uploaded recordings. The realtime conversation path
// does not go through here; it speaks over its own socket.
package speech

import (
	"context"
	"errors"
	"io"
)

// ErrEmptyInput is returned when there is nothing to synthesize or
// transcribe.
var ErrEmptyInput = errors.New("speech: empty input")

// Synthesizer turns text into spoken audio.
type Synthesizer interface {
	// Synthesize renders text as encoded audio. The caller must close
	// the returned reader.
	Synthesize(ctx context.Context, text string, opts ...SynthesisOption) (io.ReadCloser, error)
}

// Transcriber turns recorded speech into text.
type Transcriber interface {
	// Transcribe returns the transcript of one audio recording. filename
	// carries the extension the decoder uses to pick a container format.
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// SynthesisSettings hold per-call synthesis parameters.
type SynthesisSettings struct {
	Voice Voice
	Speed float64
}

// SynthesisOption overrides one synthesis parameter.
type SynthesisOption func(*SynthesisSettings)

// WithVoice selects the speaking voice.
func WithVoice(v Voice) SynthesisOption {
	return func(s *SynthesisSettings) { s.Voice = v }
}

// WithSpeed sets the speaking rate. The valid range is 0.25 to 4.0;
// values outside it are clamped.
func WithSpeed(speed float64) SynthesisOption {
	return func(s *SynthesisSettings) { s.Speed = speed }
}
