package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/copafer/chat-viewer/internal/feedback"
	"github.com/copafer/chat-viewer/internal/model"
)

type stubFeedback struct {
	recs map[string]*model.Feedback
	err  error
}

func (s *stubFeedback) Get(_ context.Context, sessionID string) (*model.Feedback, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.recs[sessionID], nil
}

func (s *stubFeedback) Save(_ context.Context, req model.SaveFeedbackRequest) (*model.Feedback, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.Feedback{SessionID: req.SessionID, Rating: req.Rating, Comment: req.Comment}, nil
}

func (s *stubFeedback) All(_ context.Context, sessionIDs []string) map[string]model.Feedback {
	out := map[string]model.Feedback{}
	for _, id := range sessionIDs {
		if rec, ok := s.recs[id]; ok {
			out[id] = *rec
		}
	}
	return out
}

func feedbackRouter(store FeedbackStore, t *testing.T) chi.Router {
	h := NewFeedbackHandler(store, testLog(t))
	r := chi.NewRouter()
	r.Get("/api/v1/feedback/{sessionID}", h.Get)
	r.Post("/api/v1/feedback", h.Save)
	return r
}

func intPtr(v int) *int { return &v }

func TestFeedbackGet(t *testing.T) {
	r := feedbackRouter(&stubFeedback{recs: map[string]*model.Feedback{
		"5511960620053": {SessionID: "5511960620053", Rating: intPtr(5)},
	}}, t)

	rec := doRequest(t, r, http.MethodGet, "/api/v1/feedback/5511960620053")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.Feedback
	require.NoError(t, jsonDecode(rec, &resp))
	require.Equal(t, 5, *resp.Rating)
}

func TestFeedbackGet_NoRecord(t *testing.T) {
	r := feedbackRouter(&stubFeedback{}, t)

	rec := doRequest(t, r, http.MethodGet, "/api/v1/feedback/5511960620053")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFeedbackSave(t *testing.T) {
	r := feedbackRouter(&stubFeedback{}, t)

	body := `{"session_id":"5511960620053","rating":4,"comment":"resolveu"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp model.Feedback
	require.NoError(t, jsonDecode(rec, &resp))
	require.Equal(t, "5511960620053", resp.SessionID)
	require.Equal(t, 4, *resp.Rating)
}

func TestFeedbackSave_BadBody(t *testing.T) {
	r := feedbackRouter(&stubFeedback{}, t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeedbackSave_ErrorMapping(t *testing.T) {
	cases := []struct {
		code   feedback.ErrorCode
		status int
	}{
		{feedback.ErrorValidation, http.StatusBadRequest},
		{feedback.ErrorContract, http.StatusBadGateway},
		{feedback.ErrorTransport, http.StatusGatewayTimeout},
	}

	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			r := feedbackRouter(&stubFeedback{err: &feedback.Error{Code: tc.code, Reason: "nope"}}, t)

			body := `{"session_id":"5511960620053","rating":3}`
			req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", strings.NewReader(body))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			require.Equal(t, tc.status, rec.Code)
		})
	}
}
