// Package feedback talks to the remote feedback side channel and keeps a
// local cache of fetched records.
package feedback

import "fmt"

// ErrorCode classifies a feedback operation failure.
type ErrorCode string

const (
	// ErrorValidation is a save attempt rejected before any network call.
	ErrorValidation ErrorCode = "VALIDATION"
	// ErrorTransport is a network, timeout, or upstream-status failure.
	ErrorTransport ErrorCode = "TRANSPORT"
	// ErrorContract is a 2xx response missing required fields.
	ErrorContract ErrorCode = "CONTRACT_VIOLATION"
)

// Error is a classified feedback failure.
type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("feedback: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("feedback: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}
