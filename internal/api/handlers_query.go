package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/MileWhile/Auramax/internal/acquire"
	"github.com/MileWhile/Auramax/internal/normalize"
	"github.com/MileWhile/Auramax/internal/pipeline"
)

type queryRequest struct {
	Documents string   `json:"documents"`
	Questions []string `json:"questions"`
}

// handleQuery runs the pipeline against a document URL.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := s.pipeline.Process(r.Context(), pipeline.Request{
		SourceType: pipeline.SourceURL,
		URL:        req.Documents,
		Questions:  req.Questions,
	})
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleUpload runs the pipeline against an uploaded file. The multipart
// form carries the file and one questions field per question.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := acquire.SanitizeFilename(header.Filename)
	if !normalize.SupportedFile(filename) {
		jsonError(w, "unsupported file type: "+filepath.Ext(filename), http.StatusUnsupportedMediaType)
		return
	}

	acquirer := acquire.New(s.cfg.MaxUploadBytes, s.cfg.FetchTimeout)
	doc, err := acquirer.FromUpload(filename, header.Size, header.Header.Get("Content-Type"), file)
	if err != nil {
		writePipelineError(w, err)
		return
	}

	resp, err := s.pipeline.Process(r.Context(), pipeline.Request{
		SourceType: pipeline.SourceUpload,
		Upload:     doc,
		Questions:  r.MultipartForm.Value["questions"],
	})
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSessionHistory returns the append-only QA log for a session.
func (s *Server) handleSessionHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	records, err := s.pipeline.History(r.Context(), sessionID)
	if err != nil {
		jsonError(w, "failed to read history: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"history":    records,
	})
}

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.provider == nil || s.provider.Stats == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"model": s.provider.Model(),
		"stats": s.provider.Stats.Snapshot(),
	})
}

// writePipelineError maps classified pipeline failures onto their HTTP
// status, and everything else onto 500.
func writePipelineError(w http.ResponseWriter, err error) {
	var pipeErr *pipeline.Error
	if errors.As(err, &pipeErr) {
		writeJSON(w, pipeErr.Status, map[string]string{
			"error":  pipeErr.Code,
			"detail": pipeErr.Err.Error(),
		})
		return
	}
	var acqErr *acquire.Error
	if errors.As(err, &acqErr) {
		status := http.StatusBadGateway
		switch acqErr.Kind {
		case acquire.KindSizeExceeded:
			status = http.StatusRequestEntityTooLarge
		case acquire.KindUnsupportedScheme:
			status = http.StatusBadRequest
		case acquire.KindTimeout:
			status = http.StatusGatewayTimeout
		}
		writeJSON(w, status, map[string]string{
			"error":  string(acqErr.Kind),
			"detail": acqErr.Err.Error(),
		})
		return
	}
	jsonError(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
