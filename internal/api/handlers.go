package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mattjoyce/dagspec/internal/authoring"
	"github.com/mattjoyce/dagspec/internal/model"
	"github.com/mattjoyce/dagspec/internal/service"
	"github.com/mattjoyce/dagspec/internal/workflow"
)

// handleHealthz handles GET /healthz (no auth).
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthzResponse{
		Status:        "ok",
		Version:       s.config.Version,
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		LintAvailable: s.service != nil,
	})
}

// handleOpenAPI handles GET /openapi.json (no auth).
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, buildOpenAPIDoc(s.config.Version))
}

// handleCompile handles POST /compile: authoring YAML in, Workflow out.
func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatYAML {
		s.writeError(w, http.StatusBadRequest, "format must be json or yaml")
		return
	}

	_, m, ok := s.compile(w, r)
	if !ok {
		return
	}

	if format == FormatYAML {
		body, err := workflow.EncodeYAML(m)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

// handleLint handles POST /lint: compiles, then asks the engine to lint.
func (s *Server) handleLint(w http.ResponseWriter, r *http.Request) {
	if s.service == nil {
		s.writeError(w, http.StatusServiceUnavailable, "no workflow server configured")
		return
	}

	wf, m, ok := s.compile(w, r)
	if !ok {
		return
	}

	// The manifest carries no namespace; it comes from the document or the
	// configured defaults.
	ns := r.URL.Query().Get("namespace")
	if ns == "" {
		ns = wf.Namespace
	}
	if ns == "" {
		ns = workflow.DefaultNamespace
	}

	linted, err := s.service.Lint(r.Context(), ns, &model.WorkflowLintRequest{Namespace: ns, Workflow: m})
	if err != nil {
		var apiErr *service.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
			s.writeError(w, http.StatusUnprocessableEntity, apiErr.Message)
			return
		}
		s.logger.Error("lint failed", "namespace", ns, "error", err)
		s.writeError(w, http.StatusBadGateway, "lint request failed")
		return
	}
	respondJSON(w, http.StatusOK, linted)
}

// compile reads the body and compiles it, writing the error response itself
// when it fails.
func (s *Server) compile(w http.ResponseWriter, r *http.Request) (*workflow.Workflow, *model.Workflow, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("body exceeds %d bytes", maxErr.Limit))
			return nil, nil, false
		}
		s.writeError(w, http.StatusBadRequest, "failed to read body")
		return nil, nil, false
	}
	if len(body) == 0 {
		s.writeError(w, http.StatusBadRequest, "empty body")
		return nil, nil, false
	}

	wf, err := authoring.CompileBytes(body, authoring.Options{Defaults: s.config.Defaults, Logger: s.logger})
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return nil, nil, false
	}
	m, err := wf.Build()
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return nil, nil, false
	}
	if _, err := workflow.Stamp(m); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return nil, nil, false
	}
	return wf, m, true
}

func respondJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}
