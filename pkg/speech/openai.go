package speech

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
)

// Models used by the OpenAI backend.
const (
	ModelTTS1    = "tts-1"
	ModelTTS1HD  = "tts-1-hd"
	ModelWhisper = "whisper-1"
)

// OpenAI implements Synthesizer and Transcriber over the OpenAI audio
// endpoints. Synthesized audio comes back as MP3.
type OpenAI struct {
	client   openai.Client
	ttsModel string
	sttModel string
	voice    Voice
}

var (
	_ Synthesizer = (*OpenAI)(nil)
	_ Transcriber = (*OpenAI)(nil)
)

// Option configures the OpenAI backend.
type Option func(*OpenAI, *[]option.RequestOption)

// WithTTSModel overrides the synthesis model.
func WithTTSModel(model string) Option {
	return func(o *OpenAI, _ *[]option.RequestOption) { o.ttsModel = model }
}

// WithSTTModel overrides the transcription model.
func WithSTTModel(model string) Option {
	return func(o *OpenAI, _ *[]option.RequestOption) { o.sttModel = model }
}

// WithDefaultVoice sets the voice used when a call does not pick one.
func WithDefaultVoice(v Voice) Option {
	return func(o *OpenAI, _ *[]option.RequestOption) { o.voice = v }
}

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(url string) Option {
	return func(_ *OpenAI, ro *[]option.RequestOption) {
		*ro = append(*ro, option.WithBaseURL(url))
	}
}

// NewOpenAI creates a speech backend authenticated with the given API
// key.
func NewOpenAI(apiKey string, opts ...Option) *OpenAI {
	ro := []option.RequestOption{option.WithAPIKey(apiKey)}
	o := &OpenAI{
		ttsModel: ModelTTS1,
		sttModel: ModelWhisper,
		voice:    DefaultVoice,
	}
	for _, opt := range opts {
		opt(o, &ro)
	}
	o.client = openai.NewClient(ro...)
	return o
}

func (o *OpenAI) Synthesize(ctx context.Context, text string, opts ...SynthesisOption) (io.ReadCloser, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	settings := SynthesisSettings{Voice: o.voice, Speed: DefaultSpeed}
	for _, opt := range opts {
		opt(&settings)
	}
	if !ValidVoice(settings.Voice) {
		return nil, fmt.Errorf("speech: unknown voice %q", settings.Voice)
	}

	resp, err := o.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(o.ttsModel),
		Input:          text,
		Voice:          openai.AudioSpeechNewParamsVoice(settings.Voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
		Speed:          param.NewOpt(clampSpeed(settings.Speed)),
	})
	if err != nil {
		return nil, fmt.Errorf("speech: synthesize: %w", err)
	}
	return resp.Body, nil
}

func (o *OpenAI) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	if audio == nil {
		return "", ErrEmptyInput
	}
	if filename == "" {
		filename = "audio.wav"
	}
	resp, err := o.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: openai.AudioModel(o.sttModel),
		File:  openai.File(audio, filename, "application/octet-stream"),
	})
	if err != nil {
		return "", fmt.Errorf("speech: transcribe: %w", err)
	}
	return resp.Text, nil
}
