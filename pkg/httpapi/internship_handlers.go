package httpapi

import (
	"net/http"
	"strconv"

	"github.com/morganstate-cs/morganai/pkg/internships"
)

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func (s *Server) handleListInternships(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	posts, total, err := s.board.List(r.Context(), limit, offset)
	if err != nil {
		s.logger.Error("list internships failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list internships")
		return
	}
	if posts == nil {
		posts = []internships.Internship{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"internships": posts,
		"total":       total,
		"limit":       limit,
		"offset":      offset,
	})
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	upcomingOnly := r.URL.Query().Get("upcoming_only") != "false"

	events, err := s.board.Events(r.Context(), upcomingOnly)
	if err != nil {
		s.logger.Error("list events failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list events")
		return
	}
	if events == nil {
		events = []internships.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events": events,
		"total":  len(events),
	})
}

func (s *Server) handleBoardStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.board.Statistics(r.Context())
	if err != nil {
		s.logger.Error("board statistics failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not compute statistics")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleRefreshBoard(w http.ResponseWriter, r *http.Request) {
	gotInternships, gotEvents, err := s.board.Refresh(r.Context())
	if err != nil {
		s.logger.Error("board refresh failed", "error", err)
		writeError(w, http.StatusBadGateway, "could not refresh the board")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"internships": gotInternships,
		"events":      gotEvents,
	})
}
