package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/copafer/chat-viewer/internal/feedback"
	"github.com/copafer/chat-viewer/internal/model"
	"github.com/copafer/chat-viewer/pkg/logger"
	"github.com/copafer/chat-viewer/pkg/metrics"
)

// fetchAllWorkers bounds the parallel remote lookups in All.
const fetchAllWorkers = 8

// RemoteFeedback is the remote side-channel client.
type RemoteFeedback interface {
	Get(ctx context.Context, sessionID string) (*model.Feedback, error)
	Save(ctx context.Context, req model.SaveFeedbackRequest) (*model.Feedback, error)
}

// FeedbackCache is the local record cache.
type FeedbackCache interface {
	Put(rec model.Feedback) error
	Get(sessionID string) (*model.Feedback, error)
	All() (map[string]model.Feedback, error)
}

// FeedbackService fronts the remote feedback channel with a local cache:
// successful remote reads and writes are cached, and a transport failure on
// read falls back to the cached record so the dashboard stays usable.
type FeedbackService struct {
	remote RemoteFeedback
	cache  FeedbackCache
	logger *logger.Logger
}

// NewFeedbackService creates a feedback service.
func NewFeedbackService(remote RemoteFeedback, cache FeedbackCache, log *logger.Logger) *FeedbackService {
	return &FeedbackService{remote: remote, cache: cache, logger: log}
}

// Get returns the feedback record for a session, or nil when none exists.
func (s *FeedbackService) Get(ctx context.Context, sessionID string) (*model.Feedback, error) {
	rec, err := s.remote.Get(ctx, sessionID)
	if err != nil {
		metrics.FeedbackOpsTotal.WithLabelValues("get", "error").Inc()
		if isTransport(err) {
			if cached, cacheErr := s.cache.Get(sessionID); cacheErr == nil && cached != nil {
				s.logger.Warn("feedback fetch failed, serving cached record",
					zap.String("session_id", sessionID), zap.Error(err))
				return cached, nil
			}
		}
		return nil, err
	}

	metrics.FeedbackOpsTotal.WithLabelValues("get", "ok").Inc()
	if rec != nil {
		if err := s.cache.Put(*rec); err != nil {
			s.logger.Warn("feedback cache write failed", zap.Error(err))
		}
	}
	return rec, nil
}

// Save persists a record through the remote channel and caches the echo.
func (s *FeedbackService) Save(ctx context.Context, req model.SaveFeedbackRequest) (*model.Feedback, error) {
	rec, err := s.remote.Save(ctx, req)
	if err != nil {
		metrics.FeedbackOpsTotal.WithLabelValues("save", "error").Inc()
		return nil, err
	}

	metrics.FeedbackOpsTotal.WithLabelValues("save", "ok").Inc()
	if err := s.cache.Put(*rec); err != nil {
		s.logger.Warn("feedback cache write failed", zap.Error(err))
	}
	return rec, nil
}

// All fetches records for every given session with bounded parallelism.
// Sessions without feedback are omitted; per-session failures degrade to the
// cache and are otherwise skipped rather than failing the whole batch.
func (s *FeedbackService) All(ctx context.Context, sessionIDs []string) map[string]model.Feedback {
	out := make(map[string]model.Feedback, len(sessionIDs))
	if len(sessionIDs) == 0 {
		return out
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, fetchAllWorkers)
	)
	for _, sessionID := range sessionIDs {
		wg.Add(1)
		sem <- struct{}{}
		go func(id string) {
			defer wg.Done()
			defer func() { <-sem }()

			rec, err := s.Get(ctx, id)
			if err != nil || rec == nil {
				return
			}
			mu.Lock()
			out[id] = *rec
			mu.Unlock()
		}(sessionID)
	}
	wg.Wait()
	return out
}

func isTransport(err error) bool {
	var fe *feedback.Error
	return errors.As(err, &fe) && fe.Code == feedback.ErrorTransport
}
