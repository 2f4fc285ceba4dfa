// Package model defines data structures for the chat viewer.
package model

import (
	"time"
)

// Role identifies the author of a message as recorded by the assistant
// backend: "human" for the customer, "ai" for the automated assistant.
type Role string

const (
	RoleHuman Role = "human"
	RoleAI    Role = "ai"
)

// Body is the typed content of a message record.
type Body struct {
	Type    Role   `json:"type"`
	Content string `json:"content"`
}

// Message is one transcript record as delivered by the upstream webhook.
// ID is a monotonically assigned integer used only as an ordering fallback
// when CreatedAt is missing on either side of a comparison.
type Message struct {
	ID        int64      `json:"id"`
	SessionID string     `json:"session_id"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	Message   Body       `json:"message"`
}

// Collection maps a session id to its ordered message thread. It is built
// once per ingestion and replaced wholesale; filters derive new, reduced
// collections and never mutate the base one.
type Collection map[string][]Message

// Messages returns the total message count across all conversations.
func (c Collection) Messages() int {
	total := 0
	for _, msgs := range c {
		total += len(msgs)
	}
	return total
}

// ConversationSummary is the sidebar projection of one conversation.
type ConversationSummary struct {
	SessionID     string     `json:"session_id"`
	Phone         string     `json:"phone"`
	Preview       string     `json:"preview"`
	MessageCount  int        `json:"message_count"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
}

// ListConversationsResponse is the response for listing conversations.
type ListConversationsResponse struct {
	Conversations []ConversationSummary `json:"conversations"`
	Total         int                   `json:"total"`
}

// ConversationResponse is the response for a single conversation thread.
type ConversationResponse struct {
	SessionID    string    `json:"session_id"`
	Phone        string    `json:"phone"`
	MessageCount int       `json:"message_count"`
	Messages     []Message `json:"messages"`
}

// DatasetInfo describes the currently loaded dataset.
type DatasetInfo struct {
	Conversations int       `json:"conversations"`
	Messages      int       `json:"messages"`
	Origin        string    `json:"origin"`
	LoadedAt      time.Time `json:"loaded_at"`
}
