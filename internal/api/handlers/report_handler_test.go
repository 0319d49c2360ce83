package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danghamo/presence/internal/tracking"
	"github.com/danghamo/presence/pkg/logger"
)

func newTestDispatcher() *tracking.Dispatcher {
	return tracking.NewDispatcher(
		logger.NewDefault(),
		tracking.NewPositionStore(),
		tracking.NewTimeline(),
		tracking.NewAlertEvaluator([]int{1}),
		tracking.NewRegistry(),
	)
}

func TestReportHandler_HandleSubmit(t *testing.T) {
	dispatcher := newTestDispatcher()
	handler := NewReportHandler(logger.NewDefault(), dispatcher)

	t.Run("accepts a valid report", func(t *testing.T) {
		body := `{"workerId":"w1","workerName":"Alice","room":"Room 1","floor":1,"status":"Enter"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandleSubmit(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp SubmitResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Worker Enter recorded successfully", resp.Message)
	})

	t.Run("rejects a report with a missing field", func(t *testing.T) {
		body := `{"workerId":"w1","workerName":"Alice","room":"Room 1","status":"Enter"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandleSubmit(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "floor", resp.Field)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()

		handler.HandleSubmit(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects non-POST methods", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil)
		rec := httptest.NewRecorder()

		handler.HandleSubmit(rec, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestWorkerHandler(t *testing.T) {
	dispatcher := newTestDispatcher()
	reportHandler := NewReportHandler(logger.NewDefault(), dispatcher)
	workerHandler := NewWorkerHandler(logger.NewDefault(), dispatcher)

	submit := func(body string) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader(body))
		rec := httptest.NewRecorder()
		reportHandler.HandleSubmit(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	submit(`{"workerId":"w1","workerName":"Alice","room":"Room 1","floor":1,"status":"Enter"}`)
	submit(`{"workerId":"w2","workerName":"Bob","room":"Room 2","floor":1,"status":"Enter"}`)
	submit(`{"workerId":"w1","workerName":"Alice","room":"Room 3","floor":1,"status":"Enter"}`)

	t.Run("lists current positions", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/workers", nil)
		rec := httptest.NewRecorder()

		workerHandler.HandleList(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp ListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, 2, resp.Total)
		assert.Equal(t, "w1", resp.Workers[0].WorkerID)
		assert.Equal(t, "Room 3", resp.Workers[0].Room)
		assert.Equal(t, "w2", resp.Workers[1].WorkerID)
	})

	t.Run("returns a worker timeline", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/workers/w1/timeline", nil)
		rec := httptest.NewRecorder()

		workerHandler.HandleTimeline(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp TimelineResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "w1", resp.WorkerID)
		require.Len(t, resp.Timeline, 2)
		assert.Contains(t, resp.Timeline[0], "Room 1")
		assert.Contains(t, resp.Timeline[1], "Room 3")
	})

	t.Run("unknown worker timeline is empty", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/workers/ghost/timeline", nil)
		rec := httptest.NewRecorder()

		workerHandler.HandleTimeline(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp TimelineResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Empty(t, resp.Timeline)
	})

	t.Run("malformed timeline path is a 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/workers/w1", nil)
		rec := httptest.NewRecorder()

		workerHandler.HandleTimeline(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
