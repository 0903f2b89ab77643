package httpapi

import (
	"io"
	"net/http"
	"path"
)

// handleUploadDocument stores an uploaded document and indexes it.
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	name := path.Base(header.Filename)
	if name == "." || name == "/" {
		writeError(w, http.StatusBadRequest, "invalid filename")
		return
	}

	if s.docs != nil {
		dst, err := s.docs.Write(r.Context(), name)
		if err != nil {
			s.logger.Error("document store failed", "file", name, "error", err)
			writeError(w, http.StatusInternalServerError, "could not store document")
			return
		}
		if _, err := io.Copy(dst, file); err != nil {
			dst.Close()
			writeError(w, http.StatusInternalServerError, "could not store document")
			return
		}
		if err := dst.Close(); err != nil {
			writeError(w, http.StatusInternalServerError, "could not store document")
			return
		}
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			writeError(w, http.StatusInternalServerError, "could not index document")
			return
		}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read upload")
		return
	}
	chunks, err := s.kb.IngestText(r.Context(), name, string(data))
	if err != nil {
		s.logger.Error("ingest failed", "file", name, "error", err)
		writeError(w, http.StatusInternalServerError, "could not index document")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"file": name, "chunks": chunks})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	if s.docs == nil {
		writeJSON(w, http.StatusOK, []string{})
		return
	}
	paths, err := s.docs.List(r.Context(), "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list documents")
		return
	}
	if paths == nil {
		paths = []string{}
	}
	writeJSON(w, http.StatusOK, paths)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	name := path.Base(r.PathValue("name"))
	if name == "." || name == "/" {
		writeError(w, http.StatusBadRequest, "invalid filename")
		return
	}
	if err := s.kb.DeleteDocument(r.Context(), name); err != nil {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSearchKnowledge runs a raw retrieval query, bypassing the chat
// model. Useful for checking what the index would feed a prompt.
func (s *Server) handleSearchKnowledge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	passages, err := s.kb.Retrieve(r.Context(), req.Query)
	if err != nil {
		s.logger.Error("knowledge search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	results := make([]map[string]any, 0, len(passages))
	for _, p := range passages {
		results = append(results, map[string]any{
			"text":   p.Text,
			"source": p.Source,
			"score":  p.Score,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	chunks, err := s.kb.ReindexAll(r.Context())
	if err != nil {
		s.logger.Error("reindex failed", "error", err)
		writeError(w, http.StatusInternalServerError, "reindex failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"chunks": chunks})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.kb.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not read stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleResetKnowledge(w http.ResponseWriter, r *http.Request) {
	if err := s.kb.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "reset failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
