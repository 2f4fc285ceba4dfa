package transcript

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/copafer/chat-viewer/internal/model"
)

func TestNormalize_BareArray(t *testing.T) {
	raw := json.RawMessage(`[
		{"id":1,"session_id":"A","message":{"type":"human","content":"hi"}},
		{"id":2,"session_id":"B","message":{"type":"ai","content":"hello"}}
	]`)

	msgs, err := Normalize(raw)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, "A", msgs[0].SessionID)
	require.Equal(t, model.RoleAI, msgs[1].Message.Type)
}

func TestNormalize_EmptyArrayIsValid(t *testing.T) {
	msgs, err := Normalize(json.RawMessage(`[]`))
	require.NoError(t, err)
	require.NotNil(t, msgs)
	require.Empty(t, msgs)
}

func TestNormalize_EnvelopeKeyPriority(t *testing.T) {
	// "data" wins over "results" even though both hold arrays.
	raw := json.RawMessage(`{
		"results":[{"id":9,"session_id":"X","message":{"type":"ai","content":"wrong"}}],
		"data":[{"id":1,"session_id":"A","message":{"type":"human","content":"right"}}]
	}`)

	msgs, err := Normalize(raw)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "A", msgs[0].SessionID)
}

func TestNormalize_EnvelopeVariants(t *testing.T) {
	for _, key := range []string{"data", "results", "items", "messages"} {
		raw, err := json.Marshal(map[string]any{
			key: []map[string]any{
				{"id": 1, "session_id": "A", "message": map[string]any{"type": "human", "content": "hi"}},
			},
		})
		require.NoError(t, err)

		msgs, err := Normalize(raw)
		require.NoError(t, err, "envelope key %q", key)
		require.Len(t, msgs, 1)
	}
}

func TestNormalize_SingleRecordObject(t *testing.T) {
	raw := json.RawMessage(`{"id":7,"session_id":"5511960620053","message":{"type":"human","content":"oi"}}`)

	msgs, err := Normalize(raw)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, int64(7), msgs[0].ID)
}

func TestNormalize_FirstArrayMemberFallback(t *testing.T) {
	raw := json.RawMessage(`{
		"meta":{"count":1},
		"payload":[{"id":3,"session_id":"C","message":{"type":"ai","content":"found"}}]
	}`)

	msgs, err := Normalize(raw)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "C", msgs[0].SessionID)
}

func TestNormalize_MalformedObject(t *testing.T) {
	_, err := Normalize(json.RawMessage(`{"foo":"bar"}`))
	require.Error(t, err)

	var malformed *MalformedResponseError
	require.True(t, errors.As(err, &malformed))
	require.Contains(t, malformed.Shape, "foo")
}

func TestNormalize_ScalarPayload(t *testing.T) {
	_, err := Normalize(json.RawMessage(`42`))
	var malformed *MalformedResponseError
	require.True(t, errors.As(err, &malformed))
}

func TestNormalize_ShapeTruncated(t *testing.T) {
	big := make([]byte, 0, 1024)
	big = append(big, `{"note":"`...)
	for i := 0; i < 500; i++ {
		big = append(big, 'x')
	}
	big = append(big, `"}`...)

	_, err := Normalize(big)
	var malformed *MalformedResponseError
	require.True(t, errors.As(err, &malformed))
	require.LessOrEqual(t, len(malformed.Shape), shapePreviewLen+3)
}
