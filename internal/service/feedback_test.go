package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/copafer/chat-viewer/internal/feedback"
	"github.com/copafer/chat-viewer/internal/model"
)

type stubRemote struct {
	recs map[string]*model.Feedback
	err  error
}

func (s *stubRemote) Get(_ context.Context, sessionID string) (*model.Feedback, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.recs[sessionID], nil
}

func (s *stubRemote) Save(_ context.Context, req model.SaveFeedbackRequest) (*model.Feedback, error) {
	if s.err != nil {
		return nil, s.err
	}
	rec := &model.Feedback{SessionID: req.SessionID, Rating: req.Rating, Comment: req.Comment}
	return rec, nil
}

type memCache struct {
	recs map[string]model.Feedback
}

func newMemCache() *memCache {
	return &memCache{recs: map[string]model.Feedback{}}
}

func (c *memCache) Put(rec model.Feedback) error {
	c.recs[rec.SessionID] = rec
	return nil
}

func (c *memCache) Get(sessionID string) (*model.Feedback, error) {
	if rec, ok := c.recs[sessionID]; ok {
		return &rec, nil
	}
	return nil, nil
}

func (c *memCache) All() (map[string]model.Feedback, error) {
	return c.recs, nil
}

func rating(v int) *int { return &v }

func TestFeedbackGet_CachesRemoteRecord(t *testing.T) {
	cache := newMemCache()
	svc := NewFeedbackService(&stubRemote{recs: map[string]*model.Feedback{
		"A": {SessionID: "A", Rating: rating(5)},
	}}, cache, testLog(t))

	rec, err := svc.Get(context.Background(), "A")
	require.NoError(t, err)
	require.Equal(t, 5, *rec.Rating)
	require.Contains(t, cache.recs, "A")
}

func TestFeedbackGet_TransportFailureFallsBackToCache(t *testing.T) {
	cache := newMemCache()
	require.NoError(t, cache.Put(model.Feedback{SessionID: "A", Rating: rating(4)}))

	svc := NewFeedbackService(&stubRemote{
		err: &feedback.Error{Code: feedback.ErrorTransport, Reason: "timeout"},
	}, cache, testLog(t))

	rec, err := svc.Get(context.Background(), "A")
	require.NoError(t, err)
	require.Equal(t, 4, *rec.Rating)
}

func TestFeedbackGet_NonTransportFailureSurfaces(t *testing.T) {
	svc := NewFeedbackService(&stubRemote{
		err: &feedback.Error{Code: feedback.ErrorContract, Reason: "bad echo"},
	}, newMemCache(), testLog(t))

	_, err := svc.Get(context.Background(), "A")
	require.Error(t, err)
}

func TestFeedbackSave_CachesEcho(t *testing.T) {
	cache := newMemCache()
	svc := NewFeedbackService(&stubRemote{}, cache, testLog(t))

	rec, err := svc.Save(context.Background(), model.SaveFeedbackRequest{SessionID: "B", Rating: rating(3)})
	require.NoError(t, err)
	require.Equal(t, "B", rec.SessionID)
	require.Contains(t, cache.recs, "B")
}

func TestFeedbackAll_SkipsMissingAndFailed(t *testing.T) {
	svc := NewFeedbackService(&stubRemote{recs: map[string]*model.Feedback{
		"A": {SessionID: "A", Rating: rating(5)},
		"C": {SessionID: "C", Comment: strPtr("fine")},
	}}, newMemCache(), testLog(t))

	out := svc.All(context.Background(), []string{"A", "B", "C"})
	require.Len(t, out, 2)
	require.Contains(t, out, "A")
	require.Contains(t, out, "C")
}

func strPtr(v string) *string { return &v }
