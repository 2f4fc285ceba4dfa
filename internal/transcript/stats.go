package transcript

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/copafer/chat-viewer/internal/model"
)

// Summary holds the dashboard's aggregate metrics. Rates are percentages
// rounded to one decimal place; AverageRating is nil, not zero, when no
// valid ratings exist.
type Summary struct {
	TotalConversations        int      `json:"total_conversations"`
	TotalMessages             int      `json:"total_messages"`
	AverageMessages           float64  `json:"average_messages_per_conversation"`
	AIResponseRate            float64  `json:"ai_response_rate"`
	FeedbackRate              float64  `json:"feedback_rate"`
	AverageRating             *float64 `json:"average_rating"`
	TotalHumanMessages        int      `json:"total_human_messages"`
	TotalAIMessages           int      `json:"total_ai_messages"`
	ConversationsWithFeedback int      `json:"conversations_with_feedback"`
	RatingsCount              int      `json:"ratings_count"`
}

// Calculate computes the aggregate summary over a collection, optionally
// enriched with feedback records keyed by session id. Only ratings in the
// valid 1-5 range contribute to the average.
func Calculate(c model.Collection, feedbacks map[string]model.Feedback) Summary {
	s := Summary{TotalConversations: len(c)}
	if s.TotalConversations == 0 {
		return s
	}

	totalRating := 0
	for sessionID, msgs := range c {
		s.TotalMessages += len(msgs)
		for _, msg := range msgs {
			switch msg.Message.Type {
			case model.RoleHuman:
				s.TotalHumanMessages++
			case model.RoleAI:
				s.TotalAIMessages++
			}
		}

		fb, ok := feedbacks[sessionID]
		if !ok {
			continue
		}
		if fb.Rating != nil || (fb.Comment != nil && *fb.Comment != "") {
			s.ConversationsWithFeedback++
		}
		if fb.HasRating() {
			totalRating += *fb.Rating
			s.RatingsCount++
		}
	}

	s.AverageMessages = round1(float64(s.TotalMessages) / float64(s.TotalConversations))
	if s.TotalMessages > 0 {
		s.AIResponseRate = round1(float64(s.TotalAIMessages) / float64(s.TotalMessages) * 100)
	}
	s.FeedbackRate = round1(float64(s.ConversationsWithFeedback) / float64(s.TotalConversations) * 100)
	if s.RatingsCount > 0 {
		avg := round1(float64(totalRating) / float64(s.RatingsCount))
		s.AverageRating = &avg
	}
	return s
}

// Period is a time-bucketing granularity.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// GroupByPeriod buckets conversations by the timestamp of their last message.
// Weekly keys use ISO-8601 week numbering ("2026-W35"); daily keys are
// "2026-08-27" and monthly keys "2026-08". Conversations whose last message
// has no timestamp are skipped.
func GroupByPeriod(c model.Collection, period Period) map[string][]string {
	buckets := make(map[string][]string)
	for _, sessionID := range SessionIDs(c) {
		msgs := c[sessionID]
		if len(msgs) == 0 {
			continue
		}
		last := msgs[len(msgs)-1]
		if last.CreatedAt == nil {
			continue
		}
		key := periodKey(*last.CreatedAt, period)
		buckets[key] = append(buckets[key], sessionID)
	}
	return buckets
}

func periodKey(t time.Time, period Period) string {
	switch period {
	case PeriodWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case PeriodMonth:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

// MessagesByType counts messages per author role.
func MessagesByType(c model.Collection) map[model.Role]int {
	counts := map[model.Role]int{model.RoleHuman: 0, model.RoleAI: 0}
	for _, msgs := range c {
		for _, msg := range msgs {
			if msg.Message.Type == model.RoleHuman || msg.Message.Type == model.RoleAI {
				counts[msg.Message.Type]++
			}
		}
	}
	return counts
}

// MessagesByHour counts timestamped messages per hour of day (0-23).
func MessagesByHour(c model.Collection) map[int]int {
	hourly := make(map[int]int, 24)
	for i := 0; i < 24; i++ {
		hourly[i] = 0
	}
	for _, msgs := range c {
		for _, msg := range msgs {
			if msg.CreatedAt != nil {
				hourly[msg.CreatedAt.Hour()]++
			}
		}
	}
	return hourly
}

// RatingDistribution counts feedback records per star rating.
func RatingDistribution(feedbacks map[string]model.Feedback) map[int]int {
	dist := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, fb := range feedbacks {
		if fb.HasRating() {
			dist[*fb.Rating]++
		}
	}
	return dist
}

// Activity is a ranked projection of one conversation for the dashboard.
type Activity struct {
	SessionID     string     `json:"session_id"`
	MessageCount  int        `json:"message_count"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	Preview       string     `json:"preview"`
}

// TopActive returns up to limit conversations ordered by descending message
// count. Ties keep sorted session-id order.
func TopActive(c model.Collection, limit int) []Activity {
	ranked := activities(c)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MessageCount > ranked[j].MessageCount
	})
	return clip(ranked, limit)
}

// Recent returns up to limit conversations ordered by descending last-message
// timestamp, with undated conversations trailing.
func Recent(c model.Collection, limit int) []Activity {
	ranked := activities(c)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].LastMessageAt, ranked[j].LastMessageAt
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.After(*b)
	})
	return clip(ranked, limit)
}

func activities(c model.Collection) []Activity {
	out := make([]Activity, 0, len(c))
	for _, sessionID := range SessionIDs(c) {
		msgs := c[sessionID]
		a := Activity{
			SessionID:    sessionID,
			MessageCount: len(msgs),
			Preview:      Preview(msgs),
		}
		if len(msgs) > 0 {
			a.LastMessageAt = msgs[len(msgs)-1].CreatedAt
		}
		out = append(out, a)
	}
	return out
}

func clip(a []Activity, limit int) []Activity {
	if limit > 0 && len(a) > limit {
		return a[:limit]
	}
	return a
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
