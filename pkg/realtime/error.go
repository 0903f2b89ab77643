package realtime

import "fmt"

// Error is a protocol or transport error surfaced by the client.
type Error struct {
	// Type is the error class (e.g., "invalid_request_error").
	Type string `json:"type,omitempty"`

	// Code is the machine-readable error code.
	Code string `json:"code,omitempty"`

	// Message is the human-readable description.
	Message string `json:"message,omitempty"`

	// Param names the offending parameter, when applicable.
	Param string `json:"param,omitempty"`

	// EventID is the client event that triggered the error, if any.
	EventID string `json:"event_id,omitempty"`
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("realtime: %s: %s", e.Code, e.Message)
	}
	if e.Type != "" {
		return fmt.Sprintf("realtime: %s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("realtime: %s", e.Message)
}

// ErrorPayload is the error payload embedded in "error" frames and local
// error events.
type ErrorPayload struct {
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Param   string `json:"param,omitempty"`
	EventID string `json:"event_id,omitempty"`
}

// Err converts the payload to an *Error.
func (e *ErrorPayload) Err() *Error {
	return &Error{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Param:   e.Param,
		EventID: e.EventID,
	}
}

// localError builds the payload for a client-side failure.
func localError(code string, err error) *ErrorPayload {
	return &ErrorPayload{
		Type:    "client_error",
		Code:    code,
		Message: err.Error(),
	}
}
