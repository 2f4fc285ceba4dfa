package handler

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/copafer/chat-viewer/internal/export"
	"github.com/copafer/chat-viewer/internal/middleware"
	"github.com/copafer/chat-viewer/internal/model"
	"github.com/copafer/chat-viewer/pkg/logger"
	"github.com/copafer/chat-viewer/pkg/metrics"
)

// ExportHandler handles export downloads.
type ExportHandler struct {
	dataset Dataset
	logger  *logger.Logger
	now     func() time.Time
}

// NewExportHandler creates a new export handler.
func NewExportHandler(dataset Dataset, log *logger.Logger) *ExportHandler {
	return &ExportHandler{
		dataset: dataset,
		logger:  log,
		now:     time.Now,
	}
}

// Export handles GET /api/v1/export. The session parameter narrows the export
// to one conversation; the list filter parameters apply otherwise.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	formatStr := r.URL.Query().Get("format")
	if formatStr == "" {
		formatStr = string(export.FormatJSON)
	}
	if !export.ValidFormat(formatStr) {
		writeError(w, http.StatusBadRequest, "format must be json, txt, or csv")
		return
	}
	format := export.Format(formatStr)

	sessionID := r.URL.Query().Get("session")
	var collection model.Collection
	if sessionID != "" {
		if err := middleware.ValidateSessionID(sessionID); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		msgs, ok := h.dataset.Get(sessionID)
		if !ok {
			writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		collection = model.Collection{sessionID: msgs}
	} else {
		filters, err := parseFilters(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		collection = h.dataset.Conversations(filters)
	}

	now := h.now()
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename(sessionID, format, now)))

	if err := export.Write(w, format, collection, now); err != nil {
		// Headers are already out; all we can do is log.
		h.logger.Error("export write failed",
			zap.String("format", formatStr),
			zap.Error(err),
		)
		return
	}
	metrics.ExportsTotal.WithLabelValues(formatStr).Inc()
}
