package transcript

import (
	"strings"
	"time"

	"github.com/copafer/chat-viewer/internal/model"
)

// DateCriterion selects which message of a conversation must fall inside a
// date range for the conversation to match.
type DateCriterion string

const (
	// CriterionFirst anchors on the earliest timestamped message.
	CriterionFirst DateCriterion = "first"
	// CriterionLast anchors on the latest timestamped message.
	CriterionLast DateCriterion = "last"
	// CriterionAny matches if any timestamped message is in range.
	CriterionAny DateCriterion = "any"
)

// ValidCriterion reports whether s names a known date criterion.
func ValidCriterion(s string) bool {
	switch DateCriterion(s) {
	case CriterionFirst, CriterionLast, CriterionAny:
		return true
	}
	return false
}

// DateRange is an inclusive [Start, End] window with an anchor criterion.
type DateRange struct {
	Start     time.Time
	End       time.Time
	Criterion DateCriterion
}

// Filters holds the three composable predicates applied to a collection.
// Zero values are no-ops, so the zero Filters is the identity transform.
type Filters struct {
	// Client restricts the result to a single session id.
	Client string
	// Search retains conversations containing the term as a
	// case-insensitive substring of any message content.
	Search string
	// Dates retains conversations whose anchor message falls in range.
	Dates *DateRange
}

// Apply runs the filter stages in fixed order (client, date, search), each
// narrowing the previous stage's output. The input collection is never
// mutated; retained conversations keep their full message sequence. An empty
// result is valid and propagates without error.
func (f Filters) Apply(c model.Collection) model.Collection {
	out := make(model.Collection, len(c))
	for sessionID, msgs := range c {
		out[sessionID] = msgs
	}

	if f.Client != "" {
		// Omit the key entirely when the requested session is absent
		// rather than producing a phantom nil entry.
		if msgs, ok := out[f.Client]; ok {
			out = model.Collection{f.Client: msgs}
		} else {
			out = model.Collection{}
		}
	}

	if f.Dates != nil {
		narrowed := make(model.Collection, len(out))
		for sessionID, msgs := range out {
			if conversationInRange(msgs, *f.Dates) {
				narrowed[sessionID] = msgs
			}
		}
		out = narrowed
	}

	if f.Search != "" {
		term := strings.ToLower(f.Search)
		narrowed := make(model.Collection, len(out))
		for sessionID, msgs := range out {
			if anyContentContains(msgs, term) {
				narrowed[sessionID] = msgs
			}
		}
		out = narrowed
	}

	return out
}

// Empty reports whether every predicate is unset.
func (f Filters) Empty() bool {
	return f.Client == "" && f.Search == "" && f.Dates == nil
}

func conversationInRange(msgs []model.Message, r DateRange) bool {
	timestamped := make([]model.Message, 0, len(msgs))
	for _, msg := range msgs {
		if msg.CreatedAt != nil {
			timestamped = append(timestamped, msg)
		}
	}
	// A conversation with no timestamped messages cannot be excluded by a
	// filter it has no data for.
	if len(timestamped) == 0 {
		return true
	}

	switch r.Criterion {
	case CriterionFirst:
		return inRange(earliest(timestamped), r)
	case CriterionAny:
		for _, msg := range timestamped {
			if inRange(*msg.CreatedAt, r) {
				return true
			}
		}
		return false
	default: // CriterionLast
		return inRange(latest(timestamped), r)
	}
}

func earliest(msgs []model.Message) time.Time {
	min := *msgs[0].CreatedAt
	for _, msg := range msgs[1:] {
		if msg.CreatedAt.Before(min) {
			min = *msg.CreatedAt
		}
	}
	return min
}

func latest(msgs []model.Message) time.Time {
	max := *msgs[0].CreatedAt
	for _, msg := range msgs[1:] {
		if msg.CreatedAt.After(max) {
			max = *msg.CreatedAt
		}
	}
	return max
}

// inRange is inclusive on both ends.
func inRange(t time.Time, r DateRange) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

func anyContentContains(msgs []model.Message, lowerTerm string) bool {
	for _, msg := range msgs {
		if strings.Contains(strings.ToLower(msg.Message.Content), lowerTerm) {
			return true
		}
	}
	return false
}
