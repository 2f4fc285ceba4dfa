// Package handler provides HTTP handlers for the viewer API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/copafer/chat-viewer/internal/middleware"
	"github.com/copafer/chat-viewer/internal/model"
	"github.com/copafer/chat-viewer/internal/transcript"
	"github.com/copafer/chat-viewer/pkg/logger"
)

// Dataset is the conversation data source consumed by the HTTP layer.
type Dataset interface {
	Load(ctx context.Context) error
	Conversations(f transcript.Filters) model.Collection
	Get(sessionID string) ([]model.Message, bool)
	Info() model.DatasetInfo
}

// ConversationHandler handles conversation endpoints.
type ConversationHandler struct {
	dataset Dataset
	logger  *logger.Logger
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(dataset Dataset, log *logger.Logger) *ConversationHandler {
	return &ConversationHandler{
		dataset: dataset,
		logger:  log,
	}
}

// List handles GET /api/v1/conversations
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conversations := h.dataset.Conversations(filters)
	summaries := make([]model.ConversationSummary, 0, len(conversations))
	for _, sessionID := range transcript.SessionIDs(conversations) {
		summaries = append(summaries, summarize(sessionID, conversations[sessionID]))
	}

	writeJSON(w, http.StatusOK, model.ListConversationsResponse{
		Conversations: summaries,
		Total:         len(summaries),
	})
}

// Get handles GET /api/v1/conversations/{sessionID}
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := middleware.ValidateSessionID(sessionID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	msgs, ok := h.dataset.Get(sessionID)
	if !ok {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}

	writeJSON(w, http.StatusOK, model.ConversationResponse{
		SessionID:    sessionID,
		Phone:        transcript.FormatPhone(sessionID),
		MessageCount: len(msgs),
		Messages:     msgs,
	})
}

// Refresh handles POST /api/v1/refresh. A failed refresh keeps the current
// dataset and reports the upstream failure.
func (h *ConversationHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.dataset.Load(r.Context()); err != nil {
		h.logger.Error("refresh failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "upstream fetch failed")
		return
	}
	writeJSON(w, http.StatusOK, h.dataset.Info())
}

func summarize(sessionID string, msgs []model.Message) model.ConversationSummary {
	s := model.ConversationSummary{
		SessionID:    sessionID,
		Phone:        transcript.FormatPhone(sessionID),
		Preview:      transcript.Preview(msgs),
		MessageCount: len(msgs),
	}
	if len(msgs) > 0 {
		s.LastMessageAt = msgs[len(msgs)-1].CreatedAt
	}
	return s
}

// parseFilters builds the filter pipeline input from query parameters.
// start/end accept RFC 3339 or a bare date; a date-only end extends to the
// end of that day so the range stays inclusive.
func parseFilters(r *http.Request) (transcript.Filters, error) {
	q := r.URL.Query()
	f := transcript.Filters{
		Client: q.Get("client"),
		Search: q.Get("search"),
	}

	if err := middleware.ValidateSearchTerm(f.Search); err != nil {
		return transcript.Filters{}, err
	}
	if f.Client != "" {
		if err := middleware.ValidateSessionID(f.Client); err != nil {
			return transcript.Filters{}, err
		}
	}

	startStr, endStr := q.Get("start"), q.Get("end")
	if startStr == "" && endStr == "" {
		return f, nil
	}

	start, err := parseTimeParam(startStr, false)
	if err != nil {
		return transcript.Filters{}, err
	}
	end, err := parseTimeParam(endStr, true)
	if err != nil {
		return transcript.Filters{}, err
	}

	criterion := transcript.CriterionLast
	if c := q.Get("criterion"); c != "" {
		if !transcript.ValidCriterion(c) {
			return transcript.Filters{}, errInvalidCriterion
		}
		criterion = transcript.DateCriterion(c)
	}

	f.Dates = &transcript.DateRange{Start: start, End: end, Criterion: criterion}
	return f, nil
}

var (
	errInvalidDate      = &paramError{"invalid date parameter"}
	errInvalidCriterion = &paramError{"criterion must be first, last, or any"}
)

type paramError struct{ msg string }

func (e *paramError) Error() string { return e.msg }

// parseTimeParam parses an RFC 3339 timestamp or a bare YYYY-MM-DD date. An
// empty value yields the open end of the range.
func parseTimeParam(s string, isEnd bool) (time.Time, error) {
	if s == "" {
		if isEnd {
			// Far future keeps the range inclusive on the open side.
			return time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC), nil
		}
		return time.Time{}, nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, errInvalidDate
	}
	if isEnd {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
