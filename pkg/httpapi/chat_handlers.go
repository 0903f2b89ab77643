package httpapi

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/morganstate-cs/morganai/pkg/chat"
	"github.com/morganstate-cs/morganai/pkg/chatsock"
	"github.com/morganstate-cs/morganai/pkg/jsontime"
	"github.com/morganstate-cs/morganai/pkg/kv"
)

type askRequest struct {
	Message  string `json:"message"`
	ThreadID string `json:"thread_id,omitempty"`
}

type askResponse struct {
	ThreadID string         `json:"thread_id"`
	Response string         `json:"response"`
	Sources  []sourceDetail `json:"sources,omitempty"`
}

type sourceDetail struct {
	Source string  `json:"source"`
	Score  float32 `json:"score"`
}

type threadView struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	CreatedAt jsontime.Milli `json:"created_at"`
	UpdatedAt jsontime.Milli `json:"updated_at"`
}

type messageView struct {
	ID        string         `json:"id"`
	ThreadID  string         `json:"thread_id"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	CreatedAt jsontime.Milli `json:"created_at"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decodeJSON(r, &req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	claims := claimsFrom(r.Context())

	reply, err := s.chat.Ask(r.Context(), claims.UserID, req.ThreadID, req.Message)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			writeError(w, http.StatusNotFound, "thread not found")
			return
		}
		s.logger.Error("chat failed", "user", claims.UserID, "error", err)
		writeJSON(w, http.StatusOK, askResponse{
			ThreadID: req.ThreadID,
			Response: chat.FallbackReply,
		})
		return
	}

	resp := askResponse{ThreadID: reply.ThreadID, Response: reply.Text}
	for _, p := range reply.Passages {
		resp.Sources = append(resp.Sources, sourceDetail{Source: p.Source, Score: p.Score})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListThreads(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	threads, err := s.chat.Threads().ListThreads(r.Context(), claims.UserID)
	if err != nil {
		s.logger.Error("list threads failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list threads")
		return
	}
	views := make([]threadView, 0, len(threads))
	for _, th := range threads {
		views = append(views, threadView{
			ID:        th.ID,
			Title:     th.Title,
			CreatedAt: jsontime.Milli(th.CreatedAt),
			UpdatedAt: jsontime.Milli(th.UpdatedAt),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleThreadMessages(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	threadID := r.PathValue("id")
	if _, err := s.chat.Threads().GetThread(r.Context(), claims.UserID, threadID); err != nil {
		writeError(w, http.StatusNotFound, "thread not found")
		return
	}
	msgs, err := s.chat.Threads().Messages(r.Context(), claims.UserID, threadID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load messages")
		return
	}
	views := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, messageView{
			ID:        m.ID,
			ThreadID:  m.ThreadID,
			Role:      string(m.Role),
			Content:   m.Content,
			CreatedAt: jsontime.Milli(m.CreatedAt),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleRenameThread(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	var req struct {
		Title string `json:"title"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if err := s.chat.Threads().RenameThread(r.Context(), claims.UserID, r.PathValue("id"), req.Title); err != nil {
		writeError(w, http.StatusNotFound, "thread not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteThread(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	threadID := r.PathValue("id")
	if _, err := s.chat.Threads().GetThread(r.Context(), claims.UserID, threadID); err != nil {
		writeError(w, http.StatusNotFound, "thread not found")
		return
	}
	if err := s.chat.Threads().DeleteThread(r.Context(), claims.UserID, threadID); err != nil {
		writeError(w, http.StatusInternalServerError, "could not delete thread")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	summary, err := s.chat.Summarize(r.Context(), claims.UserID, r.PathValue("id"), 0)
	if err != nil {
		writeError(w, http.StatusNotFound, "thread not found or empty")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	result, err := s.chat.AnalyzeSentiment(r.Context(), req.Text)
	if err != nil {
		s.logger.Error("sentiment failed", "error", err)
	}
	writeJSON(w, http.StatusOK, result)
}

var chatUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleChatSocket streams answers over a WebSocket. Each inbound
// "message" frame produces a run of "delta" frames and a closing "done"
// carrying the resolved thread ID.
func (s *Server) handleChatSocket(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	conn, err := chatUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		var in chatsock.Message
		if err := conn.ReadJSON(&in); err != nil {
			return
		}
		if in.Type != "message" || in.Content == "" {
			conn.WriteJSON(chatsock.Message{Type: "error", Error: "expected a message frame"})
			continue
		}

		threadID, seq, err := s.chat.AskStream(r.Context(), claims.UserID, in.ThreadID, in.Content)
		if err != nil {
			conn.WriteJSON(chatsock.Message{Type: "error", ThreadID: in.ThreadID, Error: chat.FallbackReply})
			continue
		}
		conn.WriteJSON(chatsock.Message{Type: "typing", ThreadID: threadID})

		failed := false
		for chunk, err := range seq {
			if err != nil {
				s.logger.Error("chat stream failed", "user", claims.UserID, "error", err)
				conn.WriteJSON(chatsock.Message{Type: "error", ThreadID: threadID, Error: chat.FallbackReply})
				failed = true
				break
			}
			if err := conn.WriteJSON(chatsock.Message{
				Type:     "delta",
				ThreadID: threadID,
				Role:     string(chat.RoleAssistant),
				Content:  chunk,
			}); err != nil {
				return
			}
		}
		if !failed {
			if err := conn.WriteJSON(chatsock.Message{Type: "done", ThreadID: threadID}); err != nil {
				return
			}
		}
	}
}
