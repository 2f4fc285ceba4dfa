package middleware

import (
	"errors"
	"unicode/utf8"
)

// ValidateSessionID validates a session identifier. Session IDs are opaque
// upstream strings (usually phone numbers), so only shape is checked.
func ValidateSessionID(id string) error {
	if len(id) == 0 {
		return errors.New("session ID cannot be empty")
	}
	if len(id) > 128 {
		return errors.New("session ID exceeds maximum length")
	}
	if !utf8.ValidString(id) {
		return errors.New("session ID must be valid UTF-8")
	}
	return nil
}

// ValidateRating validates a feedback rating.
func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return errors.New("rating must be between 1 and 5")
	}
	return nil
}

// ValidateComment validates a feedback comment.
func ValidateComment(comment string) error {
	if len(comment) > 4000 {
		return errors.New("comment exceeds maximum length")
	}
	if !utf8.ValidString(comment) {
		return errors.New("comment must be valid UTF-8")
	}
	return nil
}

// ValidateSearchTerm validates a search query parameter.
func ValidateSearchTerm(term string) error {
	if len(term) > 512 {
		return errors.New("search term exceeds maximum length")
	}
	if !utf8.ValidString(term) {
		return errors.New("search term must be valid UTF-8")
	}
	return nil
}
