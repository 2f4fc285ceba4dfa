// Package transcript implements the conversation data-shaping pipeline:
// normalizing raw webhook payloads into message records, grouping them into
// per-session threads, and filtering the grouped collection.
package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/copafer/chat-viewer/internal/model"
)

// envelopeKeys are the conventional member names checked, in priority order,
// when the payload wraps the record array inside an object.
var envelopeKeys = []string{"data", "results", "items", "messages"}

// shapePreviewLen bounds how much of an unrecognized payload is echoed back
// in a MalformedResponseError.
const shapePreviewLen = 200

// MalformedResponseError reports a payload that could not be coerced into a
// message sequence. Shape carries a truncated rendering of the received value
// for diagnosis.
type MalformedResponseError struct {
	Shape string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("transcript: response is not a message array, received shape: %s", e.Shape)
}

// Normalize coerces an arbitrary JSON payload into a flat message sequence.
// In priority order: a bare array is used directly; an object is probed for a
// conventional envelope member; an object that looks like a single message
// record is wrapped; otherwise the first remaining array-valued member (by
// sorted key, for determinism) is used. Anything else fails with
// *MalformedResponseError. An empty array is a valid, non-error result.
func Normalize(raw json.RawMessage) ([]model.Message, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, &MalformedResponseError{Shape: "(empty body)"}
	}

	if trimmed[0] == '[' {
		return decodeRecords(trimmed)
	}

	if trimmed[0] != '{' {
		return nil, &MalformedResponseError{Shape: shapePreview(trimmed)}
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &members); err != nil {
		return nil, &MalformedResponseError{Shape: shapePreview(trimmed)}
	}

	for _, key := range envelopeKeys {
		if arr, ok := arrayMember(members, key); ok {
			return decodeRecords(arr)
		}
	}

	// A single message record returned without an array wrapper.
	if hasMembers(members, "id", "session_id", "message") {
		var msg model.Message
		if err := json.Unmarshal(trimmed, &msg); err == nil {
			return []model.Message{msg}, nil
		}
	}

	// Last resort: first array-valued member. Keys are sorted so the choice
	// is deterministic across runs.
	keys := make([]string, 0, len(members))
	for k := range members {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if arr, ok := arrayMember(members, key); ok {
			return decodeRecords(arr)
		}
	}

	return nil, &MalformedResponseError{Shape: shapePreview(trimmed)}
}

func decodeRecords(arr json.RawMessage) ([]model.Message, error) {
	var msgs []model.Message
	if err := json.Unmarshal(arr, &msgs); err != nil {
		return nil, &MalformedResponseError{Shape: shapePreview(arr)}
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	return msgs, nil
}

func arrayMember(members map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	v, ok := members[key]
	if !ok {
		return nil, false
	}
	t := bytes.TrimSpace(v)
	if len(t) == 0 || t[0] != '[' {
		return nil, false
	}
	return t, true
}

func hasMembers(members map[string]json.RawMessage, keys ...string) bool {
	for _, k := range keys {
		if _, ok := members[k]; !ok {
			return false
		}
	}
	return true
}

func shapePreview(raw []byte) string {
	s := string(raw)
	if len(s) > shapePreviewLen {
		s = s[:shapePreviewLen] + "..."
	}
	return s
}
