// Package audio provides PCM format math, sample-rate conversion, and
// adapters that bridge raw byte streams to the realtime voice client.
//
// All formats are 16-bit signed little-endian PCM. The realtime channel
// speaks L16Mono24K in both directions; capture devices commonly deliver
// L16Mono48K or stereo, which Resampler converts.
package audio

import (
	"io"
	"time"
)

// Format describes a 16-bit PCM stream.
type Format struct {
	// SampleRate is the sample rate in Hz (e.g., 24000, 48000).
	SampleRate int

	// Stereo indicates stereo (2 channels) if true, mono (1 channel) if false.
	Stereo bool
}

// Common formats.
var (
	// L16Mono24K is the realtime wire format, both uplink and downlink.
	L16Mono24K = Format{SampleRate: 24000}

	// L16Mono16K is the typical speech recognition input format.
	L16Mono16K = Format{SampleRate: 16000}

	// L16Mono48K is the common capture device format.
	L16Mono48K = Format{SampleRate: 48000}

	// L16Stereo48K is the common playback device format.
	L16Stereo48K = Format{SampleRate: 48000, Stereo: true}
)

// Channels returns the number of audio channels.
func (f Format) Channels() int {
	if f.Stereo {
		return 2
	}
	return 1
}

// FrameBytes returns the size of one frame: one sample per channel.
func (f Format) FrameBytes() int {
	return 2 * f.Channels()
}

// BytesRate returns the byte rate of the stream.
func (f Format) BytesRate() int {
	return f.SampleRate * f.FrameBytes()
}

// BytesIn returns the number of bytes in the given duration, aligned down
// to a whole frame.
func (f Format) BytesIn(d time.Duration) int {
	frames := int(time.Duration(f.SampleRate) * d / time.Second)
	return frames * f.FrameBytes()
}

// Duration returns the play time of the given number of bytes.
func (f Format) Duration(bytes int) time.Duration {
	frames := bytes / f.FrameBytes()
	return time.Duration(frames) * time.Second / time.Duration(f.SampleRate)
}

// Silence returns a zero-filled buffer covering the given duration.
func (f Format) Silence(d time.Duration) []byte {
	return make([]byte, f.BytesIn(d))
}

// frameReader wraps an io.Reader so every Read returns a whole number of
// frames. Partial trailing bytes are buffered until the rest arrives.
type frameReader struct {
	r         io.Reader
	frameSize int
	remainder []byte
	buffered  int
}

func newFrameReader(r io.Reader, frameSize int) *frameReader {
	return &frameReader{
		r:         r,
		frameSize: frameSize,
		remainder: make([]byte, frameSize-1),
	}
}

// Read returns zero or a multiple of frameSize bytes. A stream that ends
// mid-frame reads as io.ErrUnexpectedEOF.
func (fr *frameReader) Read(p []byte) (n int, err error) {
	if len(p) < fr.frameSize {
		return 0, io.ErrShortBuffer
	}
	p = p[:len(p)/fr.frameSize*fr.frameSize]

	if fr.buffered > 0 {
		n = copy(p, fr.remainder[:fr.buffered])
		fr.buffered = 0
	}

	rn, err := fr.r.Read(p[n:])
	n += rn
	if err != nil {
		if n%fr.frameSize != 0 && err == io.EOF {
			return n, io.ErrUnexpectedEOF
		}
		return n, err
	}
	if mod := n % fr.frameSize; mod != 0 {
		n -= mod
		copy(fr.remainder[:mod], p[n:n+mod])
		fr.buffered = mod
	}
	return n, nil
}
