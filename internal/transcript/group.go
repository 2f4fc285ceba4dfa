package transcript

import (
	"sort"

	"github.com/copafer/chat-viewer/internal/model"
)

// GroupBySession partitions a flat message sequence into per-session threads
// and sorts each thread by created_at ascending, falling back to the numeric
// id when either side lacks a timestamp. The sort is stable, so records with
// equal ordering keys keep their relative input order, and the operation is
// idempotent: regrouping a flattened collection yields the same result.
func GroupBySession(msgs []model.Message) model.Collection {
	grouped := make(model.Collection)
	for _, msg := range msgs {
		grouped[msg.SessionID] = append(grouped[msg.SessionID], msg)
	}
	for sessionID := range grouped {
		thread := grouped[sessionID]
		sort.SliceStable(thread, func(i, j int) bool {
			return messageBefore(thread[i], thread[j])
		})
	}
	return grouped
}

// Flatten concatenates every thread back into one flat sequence, visiting
// sessions in sorted key order so the output is deterministic.
func Flatten(c model.Collection) []model.Message {
	out := make([]model.Message, 0, c.Messages())
	for _, sessionID := range SessionIDs(c) {
		out = append(out, c[sessionID]...)
	}
	return out
}

// SessionIDs returns the collection's keys in sorted order. Bucket insertion
// order is not semantically meaningful, so consumers iterate via this.
func SessionIDs(c model.Collection) []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func messageBefore(a, b model.Message) bool {
	if a.CreatedAt != nil && b.CreatedAt != nil {
		return a.CreatedAt.Before(*b.CreatedAt)
	}
	return a.ID < b.ID
}
