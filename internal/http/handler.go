package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/davidbz/judgepanel/internal/domain"
	"github.com/davidbz/judgepanel/internal/export"
	"github.com/davidbz/judgepanel/internal/observability"
)

const maxBodyBytes = 1 << 20

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error    string `json:"error"`
	Kind     string `json:"kind,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// Handler handles HTTP requests.
type Handler struct {
	ratings     *domain.RatingService
	evaluations *domain.EvaluationService
	now         func() time.Time
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(ratings *domain.RatingService, evaluations *domain.EvaluationService) *Handler {
	return &Handler{
		ratings:     ratings,
		evaluations: evaluations,
		now:         time.Now,
	}
}

// Routes returns the request multiplexer with every endpoint registered.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/ratings", h.HandleRating)
	mux.HandleFunc("POST /v1/evaluations", h.HandleEvaluate)
	mux.HandleFunc("GET /v1/evaluations", h.HandleHistory)
	mux.HandleFunc("GET /v1/evaluations/export", h.HandleExportHistory)
	mux.HandleFunc("GET /v1/evaluations/{id}/export", h.HandleExportEvaluation)
	mux.HandleFunc("GET /v1/providers", h.HandleProviders)
	mux.HandleFunc("GET /v1/options", h.HandleOptions)
	mux.HandleFunc("GET /health", h.HandleHealth)

	return mux
}

// HandleRating rates already generated text with every configured provider.
func (h *Handler) HandleRating(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.FromContext(ctx)

	var req domain.RatingRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, errorResponse{Error: "prompt cannot be empty"})
		return
	}

	if strings.TrimSpace(req.GeneratedText) == "" {
		writeError(w, http.StatusBadRequest, errorResponse{Error: "generated text cannot be empty"})
		return
	}

	if err := domain.ValidatePrompt(req.Prompt); err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	logger.Info("rating request received",
		observability.Int("prompt_length", len(req.Prompt)),
		observability.Int("text_length", len(req.GeneratedText)),
	)

	result, err := h.ratings.Rate(ctx, &req)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

// HandleEvaluate generates text for a prompt, rates it and records the result.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.GenerationRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	observability.FromContext(ctx).Info("evaluation request received",
		observability.Int("prompt_length", len(req.Prompt)),
		observability.String("style", req.Style),
	)

	evaluation, err := h.evaluations.Evaluate(ctx, &req)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, evaluation)
}

// HandleHistory lists recorded evaluations.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	evaluations, err := h.evaluations.History(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, evaluations)
}

// HandleExportHistory downloads all recorded evaluations as CSV.
func (h *Handler) HandleExportHistory(w http.ResponseWriter, r *http.Request) {
	evaluations, err := h.evaluations.History(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	h.setAttachmentHeaders(w)
	if err := export.WriteHistory(w, evaluations); err != nil {
		observability.FromContext(r.Context()).Error("failed to write export", observability.Error(err))
	}
}

// HandleExportEvaluation downloads one recorded evaluation as CSV.
func (h *Handler) HandleExportEvaluation(w http.ResponseWriter, r *http.Request) {
	evaluation, err := h.evaluations.Find(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	h.setAttachmentHeaders(w)
	if err := export.WriteEvaluation(w, *evaluation); err != nil {
		observability.FromContext(r.Context()).Error("failed to write export", observability.Error(err))
	}
}

// HandleProviders lists the configured rating provider identifiers.
func (h *Handler) HandleProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := h.ratings.Providers(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string][]string{"providers": providers})
}

// HandleOptions describes the accepted generation controls.
func (h *Handler) HandleOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"styles":              domain.StyleOptions,
		"defaultStyle":        domain.DefaultStyle,
		"defaultTargetLength": domain.DefaultTargetLength,
		"minPromptLength":     domain.MinPromptLength,
		"maxPromptLength":     domain.MaxPromptLength,
	})
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handler) setAttachmentHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(h.now())))
}

// writeDomainError maps service errors onto HTTP status codes.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := observability.FromContext(r.Context())

	var failure domain.ProviderFailure
	switch {
	case errors.As(err, &failure):
		logger.Error("provider failure",
			observability.String("kind", string(failure.Kind())),
			observability.String("failed_provider", failure.ProviderID()),
			observability.Error(err))
		writeError(w, http.StatusBadGateway, errorResponse{
			Error:    err.Error(),
			Kind:     string(failure.Kind()),
			Provider: failure.ProviderID(),
		})
	case errors.Is(err, domain.ErrPromptTooShort), errors.Is(err, domain.ErrPromptTooLong):
		writeError(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrEvaluationNotFound):
		writeError(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrGeneratorNotConfigured), errors.Is(err, domain.ErrNoProviders):
		logger.Warn("service unavailable", observability.Error(err))
		writeError(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		logger.Error("request failed", observability.Error(err))
		writeError(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Status already written; nothing left but to log.
		observability.FromContext(r.Context()).Error("failed to encode response", observability.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, body errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
