package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"estate-assistant/internal/assistant"
	apperrors "estate-assistant/internal/common/errors"
	"estate-assistant/internal/common/validation"
	"estate-assistant/internal/inventory"
)

const maxBodyBytes = 64 << 10

var generateSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["prompt"],
  "properties": {
    "prompt":      {"type": "string", "minLength": 1},
    "context":     {"type": "string"},
    "provider":    {"type": "string"},
    "inventoryId": {"type": "string"}
  }
}`)

var setProviderSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["provider"],
  "properties": {
    "provider": {"type": "string", "minLength": 1}
  }
}`)

type generateRequest struct {
	Prompt      string `json:"prompt"`
	Context     string `json:"context"`
	Provider    string `json:"provider"`
	InventoryID string `json:"inventoryId"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type providersResponse struct {
	Current   string                   `json:"current"`
	Providers []assistant.ProviderInfo `json:"providers"`
}

type setProviderRequest struct {
	Provider string `json:"provider"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	if result := generateSchema.ValidateBytes(body); !result.Valid {
		if result.HasField("prompt") {
			s.writeError(w, apperrors.NewInvalidRequestError("Prompt is required", result.Summary()))
			return
		}
		s.writeError(w, apperrors.NewInvalidRequestError("Invalid request body", result.Summary()))
		return
	}

	var req generateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, apperrors.NewInvalidRequestError("Invalid request body", err.Error()))
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		s.writeError(w, apperrors.NewInvalidRequestError("Prompt is required", ""))
		return
	}
	if req.Provider != "" && !s.engine.Selector().Registry().Has(req.Provider) {
		s.writeError(w, apperrors.NewUnknownProviderError(req.Provider))
		return
	}

	assetContext := req.Context
	if strings.TrimSpace(assetContext) == "" && req.InventoryID != "" && s.inventory != nil {
		loaded, err := s.inventory.ContextFor(r.Context(), req.InventoryID)
		if errors.Is(err, inventory.ErrInventoryNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "Inventory not found", Code: "INVENTORY_NOT_FOUND"})
			return
		}
		if err != nil {
			s.writeError(w, apperrors.NewInventoryLookupFailedError(req.InventoryID, err))
			return
		}
		assetContext = loaded
	}

	out := s.engine.Attempt(r.Context(), assistant.Request{
		Prompt:   req.Prompt,
		Context:  assetContext,
		Provider: req.Provider,
	})

	w.Header().Set("X-Assistant-Source", string(out.Source))
	w.Header().Set("X-Assistant-Category", string(out.Category))
	if out.Fallback != assistant.FallbackNone {
		w.Header().Set("X-Assistant-Fallback", string(out.Fallback))
	}
	writeJSON(w, http.StatusOK, generateResponse{Response: out.Reply})
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	selector := s.engine.Selector()
	writeJSON(w, http.StatusOK, providersResponse{
		Current:   selector.Current(),
		Providers: selector.Registry().Providers(),
	})
}

func (s *Server) handleSetProvider(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	if result := setProviderSchema.ValidateBytes(body); !result.Valid {
		s.writeError(w, apperrors.NewInvalidRequestError("Provider is required", result.Summary()))
		return
	}

	var req setProviderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, apperrors.NewInvalidRequestError("Invalid request body", err.Error()))
		return
	}

	if err := s.engine.Selector().Set(req.Provider); err != nil {
		s.writeError(w, apperrors.NewUnknownProviderError(req.Provider))
		return
	}
	s.logger.Info("default provider changed", map[string]interface{}{
		"provider":  req.Provider,
		"requestId": RequestIDFrom(r.Context()),
	})
	writeJSON(w, http.StatusOK, map[string]string{"current": req.Provider})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(s.checks))
	for _, check := range s.checks {
		if err := check.Probe(ctx); err != nil {
			status = http.StatusServiceUnavailable
			checks[check.Name] = err.Error()
			continue
		}
		checks[check.Name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not ready"
	}
	writeJSON(w, status, map[string]interface{}{
		"status": state,
		"checks": checks,
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, apperrors.NewInvalidRequestError("Invalid request body", err.Error()))
		return nil, false
	}
	return body, true
}

func (s *Server) writeError(w http.ResponseWriter, stdErr *apperrors.StandardError) {
	status := apperrors.HTTPStatus(stdErr.Code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request error", map[string]interface{}{
			"code":    string(stdErr.Code),
			"details": stdErr.Details,
		})
	}
	writeJSON(w, status, errorResponse{
		Error:   stdErr.Message,
		Code:    string(stdErr.Code),
		Details: stdErr.Details,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
