// Package service provides business logic for the chat viewer.
package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/copafer/chat-viewer/internal/model"
	"github.com/copafer/chat-viewer/internal/source"
	"github.com/copafer/chat-viewer/internal/transcript"
	"github.com/copafer/chat-viewer/pkg/logger"
	"github.com/copafer/chat-viewer/pkg/metrics"
)

// Dataset origins.
const (
	OriginWebhook = "webhook"
	OriginSample  = "sample"
	OriginLive    = "live"
)

// Fetcher fetches a flat message sequence from the upstream source.
type Fetcher interface {
	Fetch(ctx context.Context) ([]model.Message, error)
}

// DatasetService owns the in-memory conversation collection. The base
// collection is replaced wholesale on every successful ingest; a failed
// ingest leaves the previous dataset intact. Filtering always derives a new
// collection from a snapshot.
type DatasetService struct {
	fetcher          Fetcher
	useSampleOnError bool
	logger           *logger.Logger

	mu            sync.RWMutex
	conversations model.Collection
	loadedAt      time.Time
	origin        string
}

// NewDatasetService creates a dataset service. When useSampleOnError is set,
// a failed load substitutes the bundled sample dataset instead of reporting
// the error; this is the explicit fallback policy flag, not a hidden branch
// inside the pipeline.
func NewDatasetService(fetcher Fetcher, useSampleOnError bool, log *logger.Logger) *DatasetService {
	return &DatasetService{
		fetcher:          fetcher,
		useSampleOnError: useSampleOnError,
		logger:           log,
		conversations:    model.Collection{},
	}
}

// Load fetches from the upstream source, groups the records, and replaces the
// dataset. On failure the previous dataset is kept; if the sample fallback is
// enabled the bundled dataset is substituted and no error is reported.
func (s *DatasetService) Load(ctx context.Context) error {
	msgs, err := s.fetcher.Fetch(ctx)
	if err != nil {
		metrics.RecordIngest(OriginWebhook, "error")
		s.logger.Error("dataset load failed",
			zap.String("kind", string(source.KindOf(err))),
			zap.Error(err),
		)
		if s.useSampleOnError {
			return s.UseSample()
		}
		return err
	}

	s.replace(transcript.GroupBySession(msgs), OriginWebhook)
	metrics.RecordIngest(OriginWebhook, "ok")
	return nil
}

// UseSample replaces the dataset with the bundled example data.
func (s *DatasetService) UseSample() error {
	msgs, err := source.Sample()
	if err != nil {
		metrics.RecordIngest(OriginSample, "error")
		return err
	}
	s.replace(transcript.GroupBySession(msgs), OriginSample)
	metrics.RecordIngest(OriginSample, "ok")
	return nil
}

// Append merges live-ingested records into the dataset. The combined
// collection is regrouped, which keeps per-thread ordering deterministic
// because grouping is idempotent.
func (s *DatasetService) Append(msgs []model.Message) {
	if len(msgs) == 0 {
		return
	}
	s.mu.Lock()
	flat := append(transcript.Flatten(s.conversations), msgs...)
	s.conversations = transcript.GroupBySession(flat)
	s.loadedAt = time.Now()
	s.origin = OriginLive
	convs, total := len(s.conversations), s.conversations.Messages()
	s.mu.Unlock()

	metrics.SetDatasetSize(convs, total)
}

// Snapshot returns the base collection. The map is shared read-only; filters
// copy it before narrowing.
func (s *DatasetService) Snapshot() model.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conversations
}

// Conversations applies the filter pipeline to the current dataset.
func (s *DatasetService) Conversations(f transcript.Filters) model.Collection {
	return f.Apply(s.Snapshot())
}

// Get returns one conversation thread.
func (s *DatasetService) Get(sessionID string) ([]model.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs, ok := s.conversations[sessionID]
	return msgs, ok
}

// Info describes the loaded dataset.
func (s *DatasetService) Info() model.DatasetInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.DatasetInfo{
		Conversations: len(s.conversations),
		Messages:      s.conversations.Messages(),
		Origin:        s.origin,
		LoadedAt:      s.loadedAt,
	}
}

func (s *DatasetService) replace(c model.Collection, origin string) {
	s.mu.Lock()
	s.conversations = c
	s.loadedAt = time.Now()
	s.origin = origin
	convs, total := len(c), c.Messages()
	s.mu.Unlock()

	metrics.SetDatasetSize(convs, total)
	s.logger.Info("dataset replaced",
		zap.String("origin", origin),
		zap.Int("conversations", convs),
		zap.Int("messages", total),
	)
}
