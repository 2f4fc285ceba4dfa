package model

// Feedback is a per-conversation rating record kept by the feedback side
// channel. Rating and Comment are both optional, but a valid record carries
// at least one of them.
type Feedback struct {
	SessionID string  `json:"session_id"`
	Rating    *int    `json:"rating,omitempty"`
	Comment   *string `json:"comment,omitempty"`
}

// HasRating reports whether the record carries a rating in the valid 1-5 range.
func (f Feedback) HasRating() bool {
	return f.Rating != nil && *f.Rating >= 1 && *f.Rating <= 5
}

// SaveFeedbackRequest is the request to save or update feedback.
type SaveFeedbackRequest struct {
	SessionID string  `json:"session_id"`
	Rating    *int    `json:"rating"`
	Comment   *string `json:"comment"`
}
