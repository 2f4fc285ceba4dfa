// Package source fetches transcript data from the upstream webhook and
// classifies failures so callers can choose recovery policy.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/copafer/chat-viewer/internal/model"
	"github.com/copafer/chat-viewer/internal/transcript"
	"github.com/copafer/chat-viewer/pkg/logger"
)

// Kind classifies a fetch failure.
type Kind string

const (
	// KindTimeout is a client-side deadline hit before the upstream answered.
	KindTimeout Kind = "TIMEOUT"
	// KindTransport is a network-level failure (DNS, connection refused, ...).
	KindTransport Kind = "TRANSPORT"
	// KindBadStatus is a non-2xx upstream response.
	KindBadStatus Kind = "BAD_STATUS"
	// KindMalformed is a 2xx response whose payload could not be normalized.
	KindMalformed Kind = "MALFORMED"
)

// Error is a classified fetch failure.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("source: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the classification from an error, or "" if it is not a
// source error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// Client fetches message records from the upstream webhook.
type Client struct {
	url        string
	timeout    time.Duration
	httpClient *http.Client
	logger     *logger.Logger
}

// New creates a new source client. Each fetch is bounded by timeout and not
// retried automatically; the caller decides when to retry.
func New(url string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		url:        url,
		timeout:    timeout,
		httpClient: &http.Client{},
		logger:     log,
	}
}

// Fetch performs one GET against the webhook and normalizes the payload into
// a flat message sequence. An empty sequence is a valid result.
func (c *Client) Fetch(ctx context.Context) ([]model.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: classifyTransport(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Kind: KindBadStatus,
			Err:  fmt.Errorf("HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: classifyTransport(err), Err: err}
	}

	msgs, err := transcript.Normalize(body)
	if err != nil {
		return nil, &Error{Kind: KindMalformed, Err: err}
	}
	return msgs, nil
}

func classifyTransport(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindTransport
}
