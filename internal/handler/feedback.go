package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/copafer/chat-viewer/internal/feedback"
	"github.com/copafer/chat-viewer/internal/middleware"
	"github.com/copafer/chat-viewer/internal/model"
	"github.com/copafer/chat-viewer/pkg/logger"
)

// FeedbackStore is the feedback side channel consumed by the HTTP layer.
type FeedbackStore interface {
	Get(ctx context.Context, sessionID string) (*model.Feedback, error)
	Save(ctx context.Context, req model.SaveFeedbackRequest) (*model.Feedback, error)
	All(ctx context.Context, sessionIDs []string) map[string]model.Feedback
}

// FeedbackHandler handles feedback endpoints.
type FeedbackHandler struct {
	store  FeedbackStore
	logger *logger.Logger
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(store FeedbackStore, log *logger.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		store:  store,
		logger: log,
	}
}

// Get handles GET /api/v1/feedback/{sessionID}
func (h *FeedbackHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := middleware.ValidateSessionID(sessionID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.store.Get(r.Context(), sessionID)
	if err != nil {
		h.writeFeedbackError(w, err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "no feedback for session")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// Save handles POST /api/v1/feedback
func (h *FeedbackHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req model.SaveFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.store.Save(r.Context(), req)
	if err != nil {
		h.writeFeedbackError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

func (h *FeedbackHandler) writeFeedbackError(w http.ResponseWriter, err error) {
	var fe *feedback.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case feedback.ErrorValidation:
			writeError(w, http.StatusBadRequest, fe.Reason)
			return
		case feedback.ErrorContract:
			writeError(w, http.StatusBadGateway, "feedback service returned an invalid record")
			return
		case feedback.ErrorTransport:
			writeError(w, http.StatusGatewayTimeout, "feedback service unreachable")
			return
		}
	}
	h.logger.Error("feedback operation failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "feedback operation failed")
}
