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

// UserUpserter processes a user payload.
type UserUpserter interface {
	ProcessUserPayload(ctx context.Context, input service.UpsertUserInput) (string, error)
}

// UserHandler handles HTTP requests for user upserts.
type UserHandler struct {
	svc    UserUpserter
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc UserUpserter, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:    svc,
		logger: logger,
	}
}

// Upsert handles PUT /api/v1/users.
func (h *UserHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req dto.UpsertUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if req.Email == "" || req.FullName == "" || req.City == "" {
		writeError(w, http.StatusBadRequest, "MISSING_FIELD", "email, full_name and city are required")
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

	msg, err := h.svc.ProcessUserPayload(r.Context(), service.UpsertUserInput{
		Email:    req.Email,
		FullName: req.FullName,
		City:     req.City,
		Subject:  subject,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.APIResponse{Msg: msg})
}

func (h *UserHandler) handleServiceError(w http.ResponseWriter, err error) {
	var unauthorized *service.UnauthorizedError

	switch {
	case errors.As(err, &unauthorized):
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", unauthorized.Message)
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
	}
}
