package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"regexp"
	"time"

	"github.com/conneroisu/showcase/internal/errors"
	"github.com/conneroisu/showcase/internal/version"
)

var demoNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// handleHealth returns the server health status for health checks
func (s *PreviewServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   version.GetShortVersion(),
		"checks": map[string]interface{}{
			"sources": map[string]interface{}{"status": "healthy", "entries": s.demos.Registry().Store().Len()},
			"demos":   map[string]interface{}{"status": "healthy", "count": len(s.config.Demos)},
			"clients": map[string]interface{}{"status": "healthy", "count": s.ClientCount()},
		},
	}
	s.writeJSON(w, r, http.StatusOK, health)
}

func (s *PreviewServer) handleDemos(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"demos": s.demos.Demos(),
	})
}

func (s *PreviewServer) handleDemo(w http.ResponseWriter, r *http.Request) {
	name, ok := s.demoName(w, r)
	if !ok {
		return
	}

	result, err := s.demos.Query(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, result)
}

func (s *PreviewServer) handleProject(w http.ResponseWriter, r *http.Request) {
	name, ok := s.demoName(w, r)
	if !ok {
		return
	}

	export, err := s.demos.Export(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, export)
}

// handleLaunch answers with the self-submitting hand-off page. A browser
// asking for it is a capable host, so no precondition check applies.
func (s *PreviewServer) handleLaunch(w http.ResponseWriter, r *http.Request) {
	name, ok := s.demoName(w, r)
	if !ok {
		return
	}

	export, err := s.demos.Export(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var page bytes.Buffer
	if err := s.handoff.RenderHandoff(&page, export.Project, export.Options); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := page.WriteTo(w); err != nil {
		s.logger.Warn(r.Context(), err, "Failed to write hand-off page", "demo", name)
	}
}

func (s *PreviewServer) demoName(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := r.PathValue("name")
	if !demoNamePattern.MatchString(name) {
		http.Error(w, "Invalid demo name", http.StatusBadRequest)
		return "", false
	}
	return name, true
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeError maps the error taxonomy onto HTTP status codes.
func (s *PreviewServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	response := errorResponse{Error: err.Error()}

	var se *errors.ShowcaseError
	if stderrors.As(err, &se) {
		response.Code = se.Code
		switch {
		case se.Code == errors.ErrCodeUnknownDemo:
			status = http.StatusNotFound
		case se.Code == errors.ErrCodeNoPrimary:
			status = http.StatusConflict
		case se.Type == errors.ErrorTypeConfig:
			status = http.StatusUnprocessableEntity
		case se.Type == errors.ErrorTypeNetwork:
			status = http.StatusBadGateway
		}
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), err, "Request failed", "path", r.URL.Path)
	}
	s.writeJSON(w, r, status, response)
}

func (s *PreviewServer) writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn(r.Context(), err, "Failed to encode response", "path", r.URL.Path)
	}
}
