package handler

import (
	"net/http"

	natsclient "github.com/copafer/chat-viewer/internal/nats"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	dataset    Dataset
	natsClient *natsclient.Client
}

// NewHealthHandler creates a new health handler. natsClient is nil when the
// live ingest channel is disabled.
func NewHealthHandler(dataset Dataset, natsClient *natsclient.Client) *HealthHandler {
	return &HealthHandler{
		dataset:    dataset,
		natsClient: natsClient,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	// The live channel only degrades readiness when it was configured.
	if h.natsClient != nil && !h.natsClient.IsConnected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "not ready",
			"reason":  "NATS not connected",
			"dataset": h.dataset.Info(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ready",
		"dataset": h.dataset.Info(),
	})
}
