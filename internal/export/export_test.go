package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/copafer/chat-viewer/internal/model"
	"github.com/copafer/chat-viewer/internal/transcript"
)

var exportedAt = time.Date(2026, 8, 27, 14, 30, 5, 0, time.UTC)

func fixture(t *testing.T) model.Collection {
	t.Helper()
	at := time.Date(2026, 8, 27, 10, 15, 0, 0, time.UTC)
	return transcript.GroupBySession([]model.Message{
		{ID: 1, SessionID: "5511960620053", CreatedAt: &at, Message: model.Body{Type: model.RoleHuman, Content: "hi, do you have nails?"}},
		{ID: 2, SessionID: "5511960620053", Message: model.Body{Type: model.RoleAI, Content: "yes, \"steel\" ones\nin stock"}},
		{ID: 3, SessionID: "551196060053", Message: model.Body{Type: model.RoleHuman, Content: "price?"}},
	})
}

func TestWriteJSON_RoundTrip(t *testing.T) {
	c := fixture(t)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, c, exportedAt))

	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Equal(t, 2, doc.TotalConversations)
	require.Equal(t, 3, doc.TotalMessages)
	require.Len(t, doc.Conversations, 2)
	require.Len(t, doc.Conversations["5511960620053"], 2)
	require.Len(t, doc.Conversations["551196060053"], 1)
}

func TestWriteTXT(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTXT(&buf, fixture(t), exportedAt))
	out := buf.String()

	require.Contains(t, out, "COPAFER - CONVERSATION EXPORT")
	require.Contains(t, out, "Total conversations: 2")
	require.Contains(t, out, "Total messages: 3")
	require.Contains(t, out, "Session ID: 5511960620053")
	require.Contains(t, out, "[10:15:00] Customer")
	// Undated second message gets the synthetic clock: 09:00:00 + 30s.
	require.Contains(t, out, "[09:00:30] Copafer AI")
	require.Contains(t, out, strings.Repeat("=", 50))
	require.Contains(t, out, "END OF EXPORT")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, fixture(t), exportedAt))
	raw := buf.Bytes()

	require.True(t, bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}), "CSV starts with a UTF-8 BOM")

	body := string(raw[3:])
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	require.Equal(t, "Date/Time,Sender,Type,Content,SessionID,FormattedPhone", lines[0])
	// Header + 3 message rows; the embedded newline row is quoted, so it
	// spans two physical lines.
	require.Len(t, lines, 5)
	require.Contains(t, body, `"yes, ""steel"" ones`)
}

func TestFilename(t *testing.T) {
	require.Equal(t,
		"copafer-conversation-5511960620053-2026-08-27-143005.csv",
		Filename("5511960620053", FormatCSV, exportedAt))
	require.Equal(t,
		"copafer-all-conversations-2026-08-27-143005.json",
		Filename("", FormatJSON, exportedAt))
}

func TestValidFormat(t *testing.T) {
	require.True(t, ValidFormat("json"))
	require.True(t, ValidFormat("txt"))
	require.True(t, ValidFormat("csv"))
	require.False(t, ValidFormat("xlsx"))
}
