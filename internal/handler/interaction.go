package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/meetlog/meetlog/internal/handler/dto"
	"github.com/meetlog/meetlog/internal/middleware"
	"github.com/meetlog/meetlog/internal/service"
)

// InteractionRecorder runs the interaction recording pipeline for one
// request.
type InteractionRecorder interface {
	RecordInteraction(ctx context.Context, input service.RecordInteractionInput) (string, error)
}

// InteractionHandler handles HTTP requests for interaction recording.
type InteractionHandler struct {
	svc    InteractionRecorder
	logger *slog.Logger
}

// NewInteractionHandler creates a new InteractionHandler.
func NewInteractionHandler(svc InteractionRecorder, logger *slog.Logger) *InteractionHandler {
	return &InteractionHandler{
		svc:    svc,
		logger: logger,
	}
}

// Record handles POST /api/v1/interactions.
func (h *InteractionHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordInteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	// Blank input is the extraction engine's call; only structural
	// fields are checked here.
	if req.UserID == "" || req.TargetUserID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_FIELD", "user_id and target_user_id are required")
		return
	}

	subject := middleware.GetSubject(r.Context())
	if subject == "" {
		subject = req.Sub
	}
	if subject == "" {
		writeError(w, http.StatusBadRequest, "MISSING_FIELD", "sub is required")
		return
	}

	msg, err := h.svc.RecordInteraction(r.Context(), service.RecordInteractionInput{
		Input:        req.Input,
		ActingUserID: req.UserID,
		TargetUserID: req.TargetUserID,
		Subject:      subject,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.APIResponse{Msg: msg})
}

// handleServiceError maps pipeline failures to HTTP responses. Each
// failure classification gets exactly one status; internal detail never
// reaches the response body.
func (h *InteractionHandler) handleServiceError(w http.ResponseWriter, err error) {
	var unauthorized *service.UnauthorizedError
	var notFound *service.UserNotFoundError

	switch {
	case errors.As(err, &unauthorized):
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", unauthorized.Message)
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", notFound.Error())
	case errors.Is(err, service.ErrExtractionFailed):
		writeError(w, http.StatusUnprocessableEntity, "UNPROCESSABLE_CONTENT", "The interaction content could not be processed")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
	}
}
