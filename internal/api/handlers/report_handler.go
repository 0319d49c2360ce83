package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/danghamo/presence/internal/tracking"
	"github.com/danghamo/presence/pkg/logger"
)

// ReportHandler handles inbound worker report submissions
type ReportHandler struct {
	logger     *logger.Logger
	dispatcher *tracking.Dispatcher
}

// NewReportHandler creates a new report handler
func NewReportHandler(log *logger.Logger, dispatcher *tracking.Dispatcher) *ReportHandler {
	return &ReportHandler{
		logger:     log.WithComponent("report-handler"),
		dispatcher: dispatcher,
	}
}

// SubmitResponse acknowledges an accepted report
type SubmitResponse struct {
	Message string `json:"message"`
}

// ErrorResponse carries a producer-facing error
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// HandleSubmit handles POST /api/v1/reports
func (h *ReportHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
		return
	}

	var report tracking.WorkerReport
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		h.logger.Debug("Failed to decode report body", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "malformed request body"})
		return
	}
	defer r.Body.Close()

	if err := h.dispatcher.Submit(r.Context(), report); err != nil {
		if tracking.IsValidationError(err) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error: err.Error(),
				Field: tracking.ValidationField(err),
			})
			return
		}

		h.logger.Error("Failed to process report",
			zap.String("workerId", report.WorkerID),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, SubmitResponse{
		Message: fmt.Sprintf("Worker %s recorded successfully", report.Status),
	})
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
