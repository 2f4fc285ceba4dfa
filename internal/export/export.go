// Package export renders a conversation collection as downloadable JSON,
// plain-text, and CSV payloads.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/copafer/chat-viewer/internal/model"
	"github.com/copafer/chat-viewer/internal/transcript"
)

// Format names an export payload format.
type Format string

const (
	FormatJSON Format = "json"
	FormatTXT  Format = "txt"
	FormatCSV  Format = "csv"
)

// ValidFormat reports whether s names a known export format.
func ValidFormat(s string) bool {
	switch Format(s) {
	case FormatJSON, FormatTXT, FormatCSV:
		return true
	}
	return false
}

// ContentType returns the MIME type for a format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

const ruleLen = 50

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Document is the JSON export envelope. Parsing it back reproduces the same
// session keys and message counts.
type Document struct {
	ExportedAt          time.Time        `json:"exportedAt"`
	ExportedAtFormatted string           `json:"exportedAtFormatted"`
	TotalConversations  int              `json:"totalConversations"`
	TotalMessages       int              `json:"totalMessages"`
	Conversations       model.Collection `json:"conversations"`
}

// WriteJSON writes the JSON export document.
func WriteJSON(w io.Writer, c model.Collection, now time.Time) error {
	doc := Document{
		ExportedAt:          now,
		ExportedAtFormatted: formatDateTime(now),
		TotalConversations:  len(c),
		TotalMessages:       c.Messages(),
		Conversations:       c,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteTXT writes the human-readable export: a banner, summary counts, then
// one block per conversation listing "[time] sender" lines.
func WriteTXT(w io.Writer, c model.Collection, now time.Time) error {
	var b strings.Builder
	rule := strings.Repeat("=", ruleLen)

	b.WriteString(rule + "\n")
	b.WriteString("COPAFER - CONVERSATION EXPORT\n")
	b.WriteString(rule + "\n\n")
	fmt.Fprintf(&b, "Exported at: %s\n", formatDateTime(now))
	fmt.Fprintf(&b, "Total conversations: %d\n", len(c))
	fmt.Fprintf(&b, "Total messages: %d\n\n", c.Messages())

	for _, sessionID := range transcript.SessionIDs(c) {
		msgs := c[sessionID]

		b.WriteString(rule + "\n")
		fmt.Fprintf(&b, "CONVERSATION: %s\n", transcript.FormatPhone(sessionID))
		fmt.Fprintf(&b, "Session ID: %s\n", sessionID)
		fmt.Fprintf(&b, "Total messages: %d\n", len(msgs))
		b.WriteString(rule + "\n\n")

		for i, msg := range msgs {
			fmt.Fprintf(&b, "[%s] %s\n", messageTime(msg, i, now), senderLabel(msg.Message.Type))
			b.WriteString(msg.Message.Content + "\n\n")
		}

		b.WriteString(strings.Repeat("-", ruleLen) + "\n\n")
	}

	b.WriteString("\n" + rule + "\n")
	b.WriteString("END OF EXPORT\n")
	b.WriteString(rule + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteCSV writes one row per message, preceded by a UTF-8 byte-order mark so
// spreadsheet tools detect the encoding. Fields containing commas, quotes, or
// newlines are quoted with internal quotes doubled (RFC 4180, handled by
// encoding/csv).
func WriteCSV(w io.Writer, c model.Collection, now time.Time) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date/Time", "Sender", "Type", "Content", "SessionID", "FormattedPhone"}); err != nil {
		return err
	}

	for _, sessionID := range transcript.SessionIDs(c) {
		phone := transcript.FormatPhone(sessionID)
		for i, msg := range c[sessionID] {
			row := []string{
				messageTime(msg, i, now),
				senderLabel(msg.Message.Type),
				string(msg.Message.Type),
				msg.Message.Content,
				sessionID,
				phone,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// Write dispatches to the format-specific writer.
func Write(w io.Writer, format Format, c model.Collection, now time.Time) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, c, now)
	case FormatCSV:
		return WriteCSV(w, c, now)
	case FormatTXT:
		return WriteTXT(w, c, now)
	default:
		return fmt.Errorf("export: unknown format %q", format)
	}
}

// Filename encodes the export scope (single session id or "all"), a date
// stamp, and a time stamp, with a format-matching extension.
func Filename(sessionID string, format Format, now time.Time) string {
	date := now.Format("2006-01-02")
	clock := now.Format("150405")
	if sessionID != "" {
		return fmt.Sprintf("copafer-conversation-%s-%s-%s.%s", sessionID, date, clock, format)
	}
	return fmt.Sprintf("copafer-all-conversations-%s-%s.%s", date, clock, format)
}

func senderLabel(role model.Role) string {
	if role == model.RoleHuman {
		return "Customer"
	}
	return "Copafer AI"
}

// messageTime renders the wall-clock time of a message. Records without a
// timestamp (sample data) get a synthetic clock starting at 09:00:00 and
// advancing 30 seconds per message so exports stay readable.
func messageTime(msg model.Message, index int, now time.Time) string {
	if msg.CreatedAt != nil {
		return msg.CreatedAt.Format("15:04:05")
	}
	base := time.Date(now.Year(), now.Month(), now.Day(), 9, 0, 0, 0, now.Location())
	return base.Add(time.Duration(index) * 30 * time.Second).Format("15:04:05")
}

func formatDateTime(t time.Time) string {
	return t.Format("02/01/2006 15:04")
}
