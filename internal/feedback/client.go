package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/copafer/chat-viewer/internal/model"
	"github.com/copafer/chat-viewer/pkg/logger"
)

// Client is the remote feedback API client. Every call is bounded by the
// configured timeout and never retried automatically; the one exception is
// the single bounded re-fetch after a save whose echo violates the contract.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a feedback client for the given webhook base URL.
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{},
		logger:     log,
	}
}

// Get fetches the feedback record for a session. A 404, an empty payload, or
// a record with a blank session_id all mean "no feedback yet" and return
// (nil, nil).
func (c *Client) Get(ctx context.Context, sessionID string) (*model.Feedback, error) {
	if sessionID == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := fmt.Sprintf("%s/getfeedback?session_id=%s", c.baseURL, url.QueryEscape(sessionID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, newError(ErrorTransport, "build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newError(ErrorTransport, "get feedback", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError(ErrorTransport, fmt.Sprintf("HTTP %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(ErrorTransport, "read body", err)
	}

	rec, err := decodeRecord(body)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.SessionID == "" {
		return nil, nil
	}
	return rec, nil
}

// Save persists a feedback record and returns the echoed record. A request
// with neither rating nor comment, or a rating outside 1-5, is rejected
// before any network call. When a 2xx response does not echo a populated
// session_id, the record is re-fetched once before the call is declared a
// contract violation.
func (c *Client) Save(ctx context.Context, req model.SaveFeedbackRequest) (*model.Feedback, error) {
	if err := validateSave(req); err != nil {
		return nil, err
	}

	payload := model.SaveFeedbackRequest{
		SessionID: req.SessionID,
		Rating:    req.Rating,
	}
	if req.Comment != nil {
		if trimmed := strings.TrimSpace(*req.Comment); trimmed != "" {
			payload.Comment = &trimmed
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, newError(ErrorValidation, "encode request", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+"/savefeedback", bytes.NewReader(body))
	if err != nil {
		return nil, newError(ErrorTransport, "build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, newError(ErrorTransport, "save feedback", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(ErrorTransport, "read body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError(ErrorTransport, serverMessage(resp.StatusCode, respBody), nil)
	}

	if len(bytes.TrimSpace(respBody)) == 0 {
		return c.recoverSavedRecord(ctx, req.SessionID, "server returned an empty body")
	}

	rec, err := decodeRecord(respBody)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.SessionID == "" {
		return c.recoverSavedRecord(ctx, req.SessionID, "echoed record is missing session_id")
	}
	return rec, nil
}

// recoverSavedRecord is the one bounded local recovery: re-fetch the record
// once, and give up with a contract violation if it still cannot be produced.
func (c *Client) recoverSavedRecord(ctx context.Context, sessionID, reason string) (*model.Feedback, error) {
	c.logger.Warn("feedback save echo violated contract, re-fetching once")
	rec, err := c.Get(ctx, sessionID)
	if err == nil && rec != nil && rec.SessionID != "" {
		return rec, nil
	}
	return nil, newError(ErrorContract, reason, err)
}

func validateSave(req model.SaveFeedbackRequest) error {
	if req.SessionID == "" {
		return newError(ErrorValidation, "session_id is required", nil)
	}
	hasComment := req.Comment != nil && strings.TrimSpace(*req.Comment) != ""
	if req.Rating == nil && !hasComment {
		return newError(ErrorValidation, "either a rating or a comment is required", nil)
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		return newError(ErrorValidation, "rating must be between 1 and 5", nil)
	}
	return nil
}

// decodeRecord accepts both a bare record object and a single-element array,
// the two shapes the webhook is known to produce.
func decodeRecord(body []byte) (*model.Feedback, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var recs []model.Feedback
		if err := json.Unmarshal(trimmed, &recs); err != nil {
			return nil, newError(ErrorContract, "response is not valid JSON", err)
		}
		if len(recs) == 0 {
			return nil, nil
		}
		return &recs[0], nil
	}

	var rec model.Feedback
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return nil, newError(ErrorContract, "response is not valid JSON", err)
	}
	return &rec, nil
}

func serverMessage(status int, body []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	if len(body) > 200 {
		body = body[:200]
	}
	if len(body) > 0 {
		return fmt.Sprintf("HTTP %d: %s", status, body)
	}
	return fmt.Sprintf("HTTP %d", status)
}
