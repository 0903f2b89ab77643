package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/morganstate-cs/morganai/pkg/chat"
	"github.com/morganstate-cs/morganai/pkg/speech"
)

// maxUploadBytes caps audio uploads (25 MB, the transcription API limit).
const maxUploadBytes = 25 << 20

func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	if s.tts == nil {
		writeError(w, http.StatusNotImplemented, "speech synthesis not configured")
		return
	}
	var req struct {
		Text  string  `json:"text"`
		Voice string  `json:"voice,omitempty"`
		Speed float64 `json:"speed,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	var opts []speech.SynthesisOption
	if req.Voice != "" {
		opts = append(opts, speech.WithVoice(speech.Voice(req.Voice)))
	}
	if req.Speed != 0 {
		opts = append(opts, speech.WithSpeed(req.Speed))
	}
	audio, err := s.tts.Synthesize(r.Context(), req.Text, opts...)
	if err != nil {
		if errors.Is(err, speech.ErrEmptyInput) {
			writeError(w, http.StatusBadRequest, "text is required")
			return
		}
		s.logger.Error("synthesis failed", "error", err)
		writeError(w, http.StatusBadGateway, "speech synthesis failed")
		return
	}
	defer audio.Close()

	w.Header().Set("Content-Type", "audio/mpeg")
	io.Copy(w, audio)
}

func (s *Server) handleSTT(w http.ResponseWriter, r *http.Request) {
	if s.stt == nil {
		writeError(w, http.StatusNotImplemented, "transcription not configured")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	text, err := s.stt.Transcribe(r.Context(), header.Filename, file)
	if err != nil {
		s.logger.Error("transcription failed", "error", err)
		writeError(w, http.StatusBadGateway, "transcription failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

func (s *Server) handleVoices(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"voices":  speech.Voices(),
		"default": speech.DefaultVoice,
	})
}

// handleVoiceStatus reports which speech features this deployment has.
func (s *Server) handleVoiceStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"synthesis":     s.tts != nil,
		"transcription": s.stt != nil,
	})
}

// handleWelcome greets the user, with audio when synthesis is up.
func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	text := chat.Welcome(claims.Subject)

	if r.URL.Query().Get("audio") == "true" && s.tts != nil {
		audio, err := s.tts.Synthesize(r.Context(), text)
		if err == nil {
			defer audio.Close()
			w.Header().Set("Content-Type", "audio/mpeg")
			io.Copy(w, audio)
			return
		}
		s.logger.Error("welcome audio failed", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": text})
}
