// Package httpapi is the assistant's HTTP surface: account and session
// endpoints, threaded chat over REST and WebSocket, voice synthesis and
// transcription, and knowledge base administration.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/morganstate-cs/morganai/pkg/auth"
	"github.com/morganstate-cs/morganai/pkg/chat"
	"github.com/morganstate-cs/morganai/pkg/internships"
	"github.com/morganstate-cs/morganai/pkg/kb"
	"github.com/morganstate-cs/morganai/pkg/speech"
	"github.com/morganstate-cs/morganai/pkg/storage"
)

// Server wires the service layer to HTTP routes.
type Server struct {
	users  *auth.Users
	tokens *auth.Tokens
	chat   *chat.Service
	kb     *kb.Service
	docs   storage.DocumentStore
	tts    speech.Synthesizer
	stt    speech.Transcriber
	board  *internships.Service
	logger *slog.Logger

	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithKnowledgeBase enables the /api/knowledge routes.
func WithKnowledgeBase(s *kb.Service, docs storage.DocumentStore) Option {
	return func(srv *Server) { srv.kb, srv.docs = s, docs }
}

// WithSpeech enables the /api/voice routes.
func WithSpeech(tts speech.Synthesizer, stt speech.Transcriber) Option {
	return func(srv *Server) { srv.tts, srv.stt = tts, stt }
}

// WithInternships enables the /api/internships routes.
func WithInternships(s *internships.Service) Option {
	return func(srv *Server) { srv.board = s }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(srv *Server) { srv.logger = l }
}

// New creates a server over the given services.
func New(users *auth.Users, tokens *auth.Tokens, chatSvc *chat.Service, opts ...Option) *Server {
	s := &Server{
		users:  users,
		tokens: tokens,
		chat:   chatSvc,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/refresh", s.handleRefresh)
	mux.Handle("GET /api/auth/me", s.requireAuth(s.handleMe))

	mux.Handle("POST /api/chat", s.requireAuth(s.handleAsk))
	mux.Handle("GET /api/chat/ws", s.requireAuth(s.handleChatSocket))
	mux.Handle("GET /api/chat/threads", s.requireAuth(s.handleListThreads))
	mux.Handle("GET /api/chat/threads/{id}", s.requireAuth(s.handleThreadMessages))
	mux.Handle("PATCH /api/chat/threads/{id}", s.requireAuth(s.handleRenameThread))
	mux.Handle("DELETE /api/chat/threads/{id}", s.requireAuth(s.handleDeleteThread))
	mux.Handle("POST /api/chat/threads/{id}/summary", s.requireAuth(s.handleSummarize))
	mux.Handle("POST /api/chat/sentiment", s.requireAuth(s.handleSentiment))

	mux.HandleFunc("GET /api/voice/status", s.handleVoiceStatus)
	if s.tts != nil || s.stt != nil {
		mux.Handle("POST /api/voice/tts", s.requireAuth(s.handleTTS))
		mux.Handle("POST /api/voice/stt", s.requireAuth(s.handleSTT))
		mux.HandleFunc("GET /api/voice/voices", s.handleVoices)
		mux.Handle("GET /api/voice/welcome", s.requireAuth(s.handleWelcome))
	}

	if s.board != nil {
		mux.Handle("GET /api/internships", s.requireAuth(s.handleListInternships))
		mux.Handle("GET /api/internships/events", s.requireAuth(s.handleListEvents))
		mux.Handle("GET /api/internships/statistics", s.requireAuth(s.handleBoardStatistics))
		mux.Handle("POST /api/internships/refresh", s.requireAdmin(s.handleRefreshBoard))
	}

	if s.kb != nil {
		mux.Handle("POST /api/knowledge/documents", s.requireAdmin(s.handleUploadDocument))
		mux.Handle("GET /api/knowledge/documents", s.requireAuth(s.handleListDocuments))
		mux.Handle("DELETE /api/knowledge/documents/{name}", s.requireAdmin(s.handleDeleteDocument))
		mux.Handle("POST /api/knowledge/search", s.requireAuth(s.handleSearchKnowledge))
		mux.Handle("POST /api/knowledge/reindex", s.requireAdmin(s.handleReindex))
		mux.Handle("GET /api/knowledge/stats", s.requireAuth(s.handleStats))
		mux.Handle("DELETE /api/knowledge", s.requireAdmin(s.handleResetKnowledge))
	}

	return s.withCORS(mux)
}

// ListenAndServe blocks serving the API until ctx is canceled, then
// drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", "addr", addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
