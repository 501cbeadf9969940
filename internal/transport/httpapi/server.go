// Package httpapi exposes the assistant over HTTP via chi.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Joeches/eaglesoak-realtor-ai/internal/domain"
	chatuc "github.com/Joeches/eaglesoak-realtor-ai/internal/usecase/chat"
	healthuc "github.com/Joeches/eaglesoak-realtor-ai/internal/usecase/health"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers.
type Server struct {
	chat          *chatuc.Service
	properties    chatuc.PropertyReader
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	chat *chatuc.Service,
	properties chatuc.PropertyReader,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		chat:       chat,
		properties: properties,
		health:     health,
		logger:     logger,
	}
	// Ordered: first matching sentinel wins. Embedding failure stays
	// 500-class; generation failure is a distinct upstream (502) condition.
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, CodeBadRequest),
		sentinelHandler(domain.ErrPropertyNotFound, http.StatusNotFound, CodePropertyNotFound),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusInternalServerError, CodeEmbeddingFailed),
		sentinelHandler(domain.ErrGenerationProviderError, http.StatusBadGateway, CodeGenerationFailed),
	}
	return s
}

// Routes mounts all handlers on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/chat", s.Chat)
	r.Get("/v1/properties/{id}", s.PropertyByID)
	r.Get("/health", s.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// Chat handles POST /v1/chat — one question through the assistant pipeline.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var dto ChatRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	resp, err := s.chat.Ask(r.Context(), chatRequestFromDTO(dto))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponseToDTO(resp))
}

// PropertyByID handles GET /v1/properties/{id}.
func (s *Server) PropertyByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Property id is required")
		return
	}

	prop, err := s.properties.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, propertyToDTO(prop))
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for name, result := range report.Checks {
		checks[name] = string(result)
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, HealthResponseDTO{
		Status: string(report.Status),
		Checks: checks,
	})
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

// safeDomainMessage returns the sentinel text for known errors and a generic
// message otherwise, so internals never leak into response bodies.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyQuery,
		domain.ErrPropertyNotFound,
		domain.ErrEmbeddingProviderError,
		domain.ErrGenerationProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
