package realtime

// Models known to work with the realtime voice channel.
const (
	ModelGPT4oRealtimePreview     = "gpt-4o-realtime-preview"
	ModelGPT4oMiniRealtimePreview = "gpt-4o-mini-realtime-preview"
)

// Voices for audio output.
const (
	VoiceAlloy   = "alloy"
	VoiceEcho    = "echo"
	VoiceFable   = "fable"
	VoiceOnyx    = "onyx"
	VoiceNova    = "nova"
	VoiceShimmer = "shimmer"
)

// Audio formats on the wire. Output is raw 16-bit PCM at 24kHz mono.
const (
	AudioFormatPCM16 = "pcm16"
)

// Turn detection modes.
const (
	// TurnDetectionServerVAD delegates end-of-turn detection to the server.
	TurnDetectionServerVAD = "server_vad"
	// TurnDetectionNone disables server VAD; the caller commits the buffer
	// explicitly.
	TurnDetectionNone = "none"
)

// Modalities.
const (
	ModalityText  = "text"
	ModalityAudio = "audio"
)

// Session configuration defaults.
const (
	DefaultVoice             = VoiceAlloy
	DefaultTemperature       = 0.8
	DefaultMaxOutputTokens   = 4096
	DefaultVADThreshold      = 0.5
	DefaultPrefixPaddingMs   = 300
	DefaultSilenceDurationMs = 200
)

// TurnDetection configures server-side voice activity detection. A Mode of
// TurnDetectionNone disables VAD entirely.
type TurnDetection struct {
	// Mode is TurnDetectionServerVAD or TurnDetectionNone.
	Mode string `json:"type"`

	// Threshold is the VAD energy threshold (0.0-1.0).
	Threshold float64 `json:"threshold"`

	// PrefixPaddingMs is audio included before detected speech start.
	PrefixPaddingMs int `json:"prefix_padding_ms"`

	// SilenceDurationMs is trailing silence that ends a turn.
	SilenceDurationMs int `json:"silence_duration_ms"`
}

// TurnDetectionUpdate is a partial update applied by UpdateTurnDetection.
// Nil fields keep their current values.
type TurnDetectionUpdate struct {
	Mode              *string
	Threshold         *float64
	PrefixPaddingMs   *int
	SilenceDurationMs *int
}

// SessionConfig is the complete negotiated session state. Every
// session.update frame carries all of it: the server treats session.update
// as a full replacement, so a partial payload would silently reset the
// omitted fields.
type SessionConfig struct {
	Modalities        []string      `json:"modalities"`
	Instructions      string        `json:"instructions"`
	Voice             string        `json:"voice"`
	InputAudioFormat  string        `json:"input_audio_format"`
	OutputAudioFormat string        `json:"output_audio_format"`
	TurnDetection     TurnDetection `json:"turn_detection"`
	Temperature       float64       `json:"temperature"`
	MaxOutputTokens   int           `json:"max_response_output_tokens"`
}

// defaultSessionConfig returns the initial configuration sent right after
// the transport opens.
func defaultSessionConfig() SessionConfig {
	return SessionConfig{
		Modalities:        []string{ModalityText, ModalityAudio},
		Voice:             DefaultVoice,
		InputAudioFormat:  AudioFormatPCM16,
		OutputAudioFormat: AudioFormatPCM16,
		TurnDetection: TurnDetection{
			Mode:              TurnDetectionServerVAD,
			Threshold:         DefaultVADThreshold,
			PrefixPaddingMs:   DefaultPrefixPaddingMs,
			SilenceDurationMs: DefaultSilenceDurationMs,
		},
		Temperature:     DefaultTemperature,
		MaxOutputTokens: DefaultMaxOutputTokens,
	}
}

// SessionResource is the server's view of the session, delivered with
// session.created and session.updated.
type SessionResource struct {
	ID           string   `json:"id,omitempty"`
	Object       string   `json:"object,omitempty"`
	Model        string   `json:"model,omitempty"`
	ExpiresAt    int64    `json:"expires_at,omitempty"`
	Modalities   []string `json:"modalities,omitempty"`
	Instructions string   `json:"instructions,omitempty"`
	Voice        string   `json:"voice,omitempty"`
}

// ConversationItem is an entry in the server-side conversation.
type ConversationItem struct {
	ID      string        `json:"id,omitempty"`
	Object  string        `json:"object,omitempty"`
	Type    string        `json:"type,omitempty"` // "message", "function_call", ...
	Status  string        `json:"status,omitempty"`
	Role    string        `json:"role,omitempty"` // "user", "assistant", "system"
	Content []ContentPart `json:"content,omitempty"`
}

// ContentPart is one part of a conversation item's content.
type ContentPart struct {
	Type       string `json:"type,omitempty"` // "input_text", "text", "audio", ...
	Text       string `json:"text,omitempty"`
	Audio      string `json:"audio,omitempty"` // base64 encoded
	Transcript string `json:"transcript,omitempty"`
}

// ResponseResource is the server's view of a model response.
type ResponseResource struct {
	ID            string             `json:"id,omitempty"`
	Object        string             `json:"object,omitempty"`
	Status        string             `json:"status,omitempty"`
	StatusDetails *StatusDetails     `json:"status_details,omitempty"`
	Output        []ConversationItem `json:"output,omitempty"`
	Usage         *Usage             `json:"usage,omitempty"`
}

// StatusDetails explains a terminal response status.
type StatusDetails struct {
	Type   string `json:"type,omitempty"`
	Reason string `json:"reason,omitempty"`
	Error  *Error `json:"error,omitempty"`
}

// Usage is the token accounting attached to response.done.
type Usage struct {
	TotalTokens  int `json:"total_tokens,omitempty"`
	InputTokens  int `json:"input_tokens,omitempty"`
	OutputTokens int `json:"output_tokens,omitempty"`
}
