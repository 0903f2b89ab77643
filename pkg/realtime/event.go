package realtime

// Client event types (sent from client to server).
const (
	EventSessionUpdate = "session.update"

	EventInputAudioBufferAppend = "input_audio_buffer.append"
	EventInputAudioBufferCommit = "input_audio_buffer.commit"
	EventInputAudioBufferClear  = "input_audio_buffer.clear"

	EventConversationItemCreate = "conversation.item.create"

	EventResponseCreate = "response.create"
	EventResponseCancel = "response.cancel"
)

// Server event types (received from the server).
const (
	EventError = "error"

	EventSessionCreated = "session.created"
	EventSessionUpdated = "session.updated"

	EventConversationItemCreated = "conversation.item.created"

	EventInputAudioBufferCommitted     = "input_audio_buffer.committed"
	EventInputAudioBufferSpeechStarted = "input_audio_buffer.speech_started"
	EventInputAudioBufferSpeechStopped = "input_audio_buffer.speech_stopped"

	EventResponseCreated         = "response.created"
	EventResponseDone            = "response.done"
	EventResponseOutputItemAdded = "response.output_item.added"
	EventResponseOutputItemDone  = "response.output_item.done"

	EventResponseTextDelta = "response.text.delta"
	EventResponseTextDone  = "response.text.done"

	EventResponseAudioDelta = "response.audio.delta"
	EventResponseAudioDone  = "response.audio.done"

	EventResponseAudioTranscriptDelta = "response.audio_transcript.delta"
	EventResponseAudioTranscriptDone  = "response.audio_transcript.done"
)

// Local event types, generated by the client rather than the server. They
// share the subscription surface with protocol events.
const (
	EventConnected    = "connected"
	EventDisconnected = "disconnected"

	EventAssistantMessage = "assistant.message"
	EventAssistantAudio   = "assistant.audio"

	EventSpeechStarted = "speech.started"
	EventSpeechStopped = "speech.stopped"

	EventRecordingStarted = "recording.started"
	EventRecordingStopped = "recording.stopped"
)

// ServerEvent is a single event delivered to subscribers. For protocol
// events the fields mirror the wire frame; for local events only the
// relevant fields are populated.
type ServerEvent struct {
	// Type is the event type tag.
	Type string `json:"type"`

	// EventID is the server-assigned identifier, when present.
	EventID string `json:"event_id,omitempty"`

	// Session carries session state for session.created / session.updated.
	Session *SessionResource `json:"session,omitempty"`

	// Item carries the conversation item for conversation.item.* events.
	Item *ConversationItem `json:"item,omitempty"`

	// ItemID identifies the item for delta and speech events.
	ItemID string `json:"item_id,omitempty"`

	// Response carries response state for response.created / response.done.
	Response *ResponseResource `json:"response,omitempty"`

	// ResponseID identifies the response for per-output events.
	ResponseID string `json:"response_id,omitempty"`

	// OutputIndex is the index of the output item within the response.
	OutputIndex int `json:"output_index,omitempty"`

	// ContentIndex is the index of the content part within an item.
	ContentIndex int `json:"content_index,omitempty"`

	// Delta holds incremental text, transcript, or base64 audio payloads.
	Delta string `json:"delta,omitempty"`

	// Text holds completed text for *.done and fan-out events.
	Text string `json:"text,omitempty"`

	// Transcript holds transcript text for audio_transcript events.
	Transcript string `json:"transcript,omitempty"`

	// Audio holds base64 audio for the assistant.audio fan-out event.
	Audio string `json:"audio,omitempty"`

	// AudioStartMs / AudioEndMs bound detected speech for the
	// input_audio_buffer.speech_* events.
	AudioStartMs int `json:"audio_start_ms,omitempty"`
	AudioEndMs   int `json:"audio_end_ms,omitempty"`

	// ErrorDetail carries the server error for "error" frames, or the
	// client-side failure for local error events.
	ErrorDetail *ErrorPayload `json:"error,omitempty"`

	// Raw is the original frame as received. Nil for local events.
	Raw []byte `json:"-"`
}

// Handler receives dispatched events. Handlers must not block; they run on
// the connection read loop.
type Handler func(ev *ServerEvent)
