package transcript

import (
	"strings"

	"github.com/copafer/chat-viewer/internal/model"
)

const previewMaxRunes = 40

// PreviewEmpty is the sentinel preview for a conversation with no messages.
// Grouping never produces empty threads, but the projection guards anyway.
const PreviewEmpty = "no messages"

// Preview returns the last message's content truncated to 40 characters,
// with a trailing ellipsis marker when longer.
func Preview(msgs []model.Message) string {
	if len(msgs) == 0 {
		return PreviewEmpty
	}
	content := msgs[len(msgs)-1].Message.Content
	runes := []rune(content)
	if len(runes) > previewMaxRunes {
		return string(runes[:previewMaxRunes]) + "..."
	}
	return content
}

// FormatPhone renders a phone-shaped session id for display, e.g.
// "5511960620053" becomes "+55 (11) 96062-0053". Ids that do not look like
// Brazilian numbers are returned unchanged.
func FormatPhone(sessionID string) string {
	if len(sessionID) < 10 {
		return sessionID
	}
	cleaned := digitsOnly(sessionID)
	switch len(cleaned) {
	case 13:
		return "+" + cleaned[:2] + " (" + cleaned[2:4] + ") " + cleaned[4:9] + "-" + cleaned[9:]
	case 12:
		return "+" + cleaned[:2] + " (" + cleaned[2:4] + ") " + cleaned[4:8] + "-" + cleaned[8:]
	}
	return sessionID
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
