package audio

import (
	"fmt"
	"io"
	"sync"

	resampling "github.com/tphakala/go-audio-resampling"
)

// Resampler converts a PCM byte stream from one Format to another. It
// handles sample rate conversion and mono/stereo conversion with a pure Go
// resampler, no CGO. Close releases the converter; later Reads return
// io.ErrClosedPipe.
type Resampler struct {
	src  io.Reader
	from Format
	to   Format

	mu        sync.Mutex
	closed    bool
	converter resampling.Resampler
	srcBuf    []byte
	leftover  []byte
}

// NewResampler wraps src, which delivers audio in the from format, and
// produces audio in the to format.
func NewResampler(src io.Reader, from, to Format) (*Resampler, error) {
	r := &Resampler{
		src:  newFrameReader(src, from.FrameBytes()),
		from: from,
		to:   to,
	}
	if from.SampleRate != to.SampleRate {
		converter, err := resampling.New(&resampling.Config{
			InputRate:  float64(from.SampleRate),
			OutputRate: float64(to.SampleRate),
			Channels:   to.Channels(),
			Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
		})
		if err != nil {
			return nil, fmt.Errorf("audio: create resampler: %w", err)
		}
		r.converter = converter
	}
	return r, nil
}

// Read fills p with converted audio. Not safe for concurrent use.
func (r *Resampler) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if len(p) < r.to.FrameBytes() {
		return 0, io.ErrShortBuffer
	}
	p = p[:len(p)/r.to.FrameBytes()*r.to.FrameBytes()]

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.leftover) > 0 {
		n := copy(p, r.leftover)
		r.leftover = r.leftover[n:]
		return n, nil
	}
	if r.closed {
		return 0, io.ErrClosedPipe
	}
	if r.converter == nil {
		return r.readChannelConv(p, len(p))
	}

	// Size the source read by the rate ratio, with slack for rounding.
	ratio := float64(r.from.SampleRate) / float64(r.to.SampleRate)
	want := int(float64(len(p))*ratio) + 4*r.from.FrameBytes()

	n, readErr := r.readChannelConvBuf(want)
	if n == 0 {
		if readErr != nil {
			return 0, readErr
		}
		return 0, io.EOF
	}

	input := make([]float64, n/2)
	for i := range input {
		s := int16(r.srcBuf[i*2]) | int16(r.srcBuf[i*2+1])<<8
		input[i] = float64(s) / 32768.0
	}
	output, err := r.converter.Process(input)
	if err != nil {
		return 0, fmt.Errorf("audio: resample: %w", err)
	}
	if len(output) == 0 {
		return 0, readErr
	}

	out := make([]byte, len(output)*2)
	for i, v := range output {
		s := int16(v * 32767.0)
		if v > 1.0 {
			s = 32767
		} else if v < -1.0 {
			s = -32768
		}
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	out = out[:len(out)/r.to.FrameBytes()*r.to.FrameBytes()]

	wrote := copy(p, out)
	if len(out) > wrote {
		r.leftover = append(r.leftover, out[wrote:]...)
	}
	return wrote, readErr
}

// readChannelConv reads straight through with only channel conversion.
func (r *Resampler) readChannelConv(p []byte, dstLen int) (int, error) {
	n, err := r.readChannelConvBuf(dstLen)
	if n == 0 {
		return 0, err
	}
	copy(p, r.srcBuf[:n])
	return n, err
}

// readChannelConvBuf fills srcBuf with up to dstLen bytes of audio already
// converted to the destination channel layout.
func (r *Resampler) readChannelConvBuf(dstLen int) (int, error) {
	if cap(r.srcBuf) < dstLen {
		r.srcBuf = make([]byte, dstLen)
	}

	switch {
	case r.from.Stereo && !r.to.Stereo:
		srcLen := dstLen * 2
		if cap(r.srcBuf) < srcLen {
			r.srcBuf = make([]byte, srcLen)
		}
		n, err := r.src.Read(r.srcBuf[:srcLen])
		if n == 0 {
			return 0, err
		}
		return downmix(r.srcBuf[:n]), err

	case !r.from.Stereo && r.to.Stereo:
		n, err := r.src.Read(r.srcBuf[:dstLen/2])
		if n == 0 {
			return 0, err
		}
		return upmix(r.srcBuf[:n*2]), err

	default:
		return r.src.Read(r.srcBuf[:dstLen])
	}
}

// Close releases the converter.
func (r *Resampler) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.converter = nil
	return nil
}

// downmix averages L and R into mono, in place.
func downmix(b []byte) int {
	frames := len(b) / 4
	for i := range frames {
		j, k := i*4, i*2
		l := int16(b[j]) | int16(b[j+1])<<8
		rr := int16(b[j+2]) | int16(b[j+3])<<8
		m := int16((int32(l) + int32(rr)) / 2)
		b[k] = byte(m)
		b[k+1] = byte(m >> 8)
	}
	return frames * 2
}

// upmix duplicates each mono sample into both channels, in place. The
// buffer already has room for the stereo result.
func upmix(b []byte) int {
	samples := len(b) / 4
	for i := samples - 1; i >= 0; i-- {
		s0, s1 := b[i*2], b[i*2+1]
		j := i * 4
		b[j], b[j+1] = s0, s1
		b[j+2], b[j+3] = s0, s1
	}
	return samples * 4
}
