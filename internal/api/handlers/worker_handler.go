package handlers

import (
	"net/http"
	"strings"

	"github.com/danghamo/presence/internal/tracking"
	"github.com/danghamo/presence/pkg/logger"
)

// WorkerHandler serves the current last-known positions and per-worker
// movement histories.
type WorkerHandler struct {
	logger     *logger.Logger
	dispatcher *tracking.Dispatcher
}

// NewWorkerHandler creates a new worker handler
func NewWorkerHandler(log *logger.Logger, dispatcher *tracking.Dispatcher) *WorkerHandler {
	return &WorkerHandler{
		logger:     log.WithComponent("worker-handler"),
		dispatcher: dispatcher,
	}
}

// ListResponse carries all current last-known positions
type ListResponse struct {
	Workers []tracking.PositionRecord `json:"workers"`
	Total   int                       `json:"total"`
}

// TimelineResponse carries one worker's movement history
type TimelineResponse struct {
	WorkerID string   `json:"workerId"`
	Timeline []string `json:"timeline"`
}

// HandleList handles GET /api/v1/workers
func (h *WorkerHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
		return
	}

	workers := h.dispatcher.Workers()
	writeJSON(w, http.StatusOK, ListResponse{
		Workers: workers,
		Total:   len(workers),
	})
}

// HandleTimeline handles GET /api/v1/workers/{id}/timeline
func (h *WorkerHandler) HandleTimeline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
		return
	}

	// Path shape: /api/v1/workers/{id}/timeline
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 5 || parts[4] != "timeline" || parts[3] == "" {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not found"})
		return
	}
	workerID := parts[3]

	writeJSON(w, http.StatusOK, TimelineResponse{
		WorkerID: workerID,
		Timeline: h.dispatcher.TimelineFor(workerID),
	})
}
