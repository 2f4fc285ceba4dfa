package source

import (
	_ "embed"

	"github.com/copafer/chat-viewer/internal/model"
	"github.com/copafer/chat-viewer/internal/transcript"
)

//go:embed sample.json
var sampleJSON []byte

// Sample returns the bundled example dataset used as an explicit fallback
// when the upstream webhook is unavailable and the operator opted in.
func Sample() ([]model.Message, error) {
	return transcript.Normalize(sampleJSON)
}
