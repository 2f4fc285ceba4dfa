package handler

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/copafer/chat-viewer/internal/model"
)

func statsRouter(ds *stubDataset, store FeedbackStore, t *testing.T) chi.Router {
	h := NewStatsHandler(ds, store, testLog(t))
	r := chi.NewRouter()
	r.Get("/api/v1/stats", h.Stats)
	return r
}

func TestStats(t *testing.T) {
	store := &stubFeedback{recs: map[string]*model.Feedback{
		"5511960620053": {SessionID: "5511960620053", Rating: intPtr(4)},
	}}
	r := statsRouter(&stubDataset{collection: testCollection(t)}, store, t)

	rec := doRequest(t, r, http.MethodGet, "/api/v1/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatsResponse
	require.NoError(t, jsonDecode(rec, &resp))
	require.Equal(t, 2, resp.Summary.TotalConversations)
	require.Equal(t, 3, resp.Summary.TotalMessages)
	require.Equal(t, 1, resp.Summary.ConversationsWithFeedback)
	require.NotNil(t, resp.Summary.AverageRating)
	require.Equal(t, 4.0, *resp.Summary.AverageRating)
	require.Equal(t, 1, resp.RatingDistribution[4])
	require.Len(t, resp.TopActive, 2)
	require.Equal(t, "5511960620053", resp.TopActive[0].SessionID, "most active first")
	require.Equal(t, "5511987654321", resp.Recent[0].SessionID, "most recent first")
}

func TestStats_WeekBucket(t *testing.T) {
	r := statsRouter(&stubDataset{collection: testCollection(t)}, &stubFeedback{}, t)

	rec := doRequest(t, r, http.MethodGet, "/api/v1/stats?bucket=week")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatsResponse
	require.NoError(t, jsonDecode(rec, &resp))
	require.Contains(t, resp.ByPeriod, "2026-W34")
	require.Contains(t, resp.ByPeriod, "2026-W35")
}

func TestStats_BadBucket(t *testing.T) {
	r := statsRouter(&stubDataset{collection: testCollection(t)}, &stubFeedback{}, t)

	rec := doRequest(t, r, http.MethodGet, "/api/v1/stats?bucket=year")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStats_NoFeedbackChannel(t *testing.T) {
	r := statsRouter(&stubDataset{collection: testCollection(t)}, nil, t)

	rec := doRequest(t, r, http.MethodGet, "/api/v1/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatsResponse
	require.NoError(t, jsonDecode(rec, &resp))
	require.Nil(t, resp.Summary.AverageRating)
	require.Zero(t, resp.Summary.ConversationsWithFeedback)
}

func TestStats_RangeFilter(t *testing.T) {
	r := statsRouter(&stubDataset{collection: testCollection(t)}, &stubFeedback{}, t)

	rec := doRequest(t, r, http.MethodGet, "/api/v1/stats?start=2026-08-24&end=2026-08-26")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatsResponse
	require.NoError(t, jsonDecode(rec, &resp))
	require.Equal(t, 1, resp.Summary.TotalConversations)
}
