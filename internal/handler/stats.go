package handler

import (
	"net/http"

	"github.com/copafer/chat-viewer/internal/model"
	"github.com/copafer/chat-viewer/internal/transcript"
	"github.com/copafer/chat-viewer/pkg/logger"
)

// dashboardListLimit bounds the top-active and recent rankings.
const dashboardListLimit = 5

// StatsResponse is the dashboard metrics payload.
type StatsResponse struct {
	Summary            transcript.Summary    `json:"summary"`
	ByPeriod           map[string][]string   `json:"by_period"`
	MessagesByType     map[model.Role]int    `json:"messages_by_type"`
	MessagesByHour     map[int]int           `json:"messages_by_hour"`
	RatingDistribution map[int]int           `json:"rating_distribution"`
	TopActive          []transcript.Activity `json:"top_active"`
	Recent             []transcript.Activity `json:"recent"`
}

// StatsHandler handles dashboard metrics.
type StatsHandler struct {
	dataset  Dataset
	feedback FeedbackStore
	logger   *logger.Logger
}

// NewStatsHandler creates a new stats handler. feedback is nil when the side
// channel is not configured; the summary then reports zero coverage.
func NewStatsHandler(dataset Dataset, feedback FeedbackStore, log *logger.Logger) *StatsHandler {
	return &StatsHandler{
		dataset:  dataset,
		feedback: feedback,
		logger:   log,
	}
}

// Stats handles GET /api/v1/stats
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	period := transcript.PeriodDay
	switch b := r.URL.Query().Get("bucket"); b {
	case "", "day":
	case "week":
		period = transcript.PeriodWeek
	case "month":
		period = transcript.PeriodMonth
	default:
		writeError(w, http.StatusBadRequest, "bucket must be day, week, or month")
		return
	}

	conversations := h.dataset.Conversations(filters)

	var feedbacks map[string]model.Feedback
	if h.feedback != nil {
		feedbacks = h.feedback.All(r.Context(), transcript.SessionIDs(conversations))
	}

	writeJSON(w, http.StatusOK, StatsResponse{
		Summary:            transcript.Calculate(conversations, feedbacks),
		ByPeriod:           transcript.GroupByPeriod(conversations, period),
		MessagesByType:     transcript.MessagesByType(conversations),
		MessagesByHour:     transcript.MessagesByHour(conversations),
		RatingDistribution: transcript.RatingDistribution(feedbacks),
		TopActive:          transcript.TopActive(conversations, dashboardListLimit),
		Recent:             transcript.Recent(conversations, dashboardListLimit),
	})
}
