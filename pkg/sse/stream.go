package sse

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danghamo/presence/internal/tracking"
	"github.com/danghamo/presence/pkg/logger"
)

const heartbeatInterval = 30 * time.Second

// StreamHandler serves the SSE observer endpoint. Each accepted
// connection is wrapped as a Client and registered with the tracking
// registry; disconnects unregister it again.
type StreamHandler struct {
	logger   *logger.Logger
	registry *tracking.Registry
	shutdown chan struct{}
}

// NewStreamHandler creates an SSE handler over the given registry
func NewStreamHandler(log *logger.Logger, registry *tracking.Registry) *StreamHandler {
	return &StreamHandler{
		logger:   log.WithComponent("sse-stream"),
		registry: registry,
		shutdown: make(chan struct{}),
	}
}

// HandleStream handles SSE connections for live presence updates
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.logger.Error("SSE: client does not support flusher interface")
		http.Error(w, "Server-Sent Events not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // disable nginx buffering

	clientID := uuid.NewString()
	client := NewClient(clientID, w, flusher)

	h.registry.Register(client)
	defer func() {
		client.Close()
		h.registry.Unregister(clientID)
	}()

	h.logger.Debug("SSE client connected",
		zap.String("clientId", clientID),
		zap.String("remoteAddr", r.RemoteAddr))

	// Initial handshake so the viewer knows the stream is live
	initialMsg := fmt.Sprintf(`{"type":"connected","clientId":"%s"}`, clientID)
	if err := client.Send([]byte(initialMsg)); err != nil {
		h.logger.Warn("SSE: failed to write initial message",
			zap.String("clientId", clientID),
			zap.Error(err))
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-client.Done():
			h.logger.Debug("SSE client done signal received", zap.String("clientId", clientID))
			return
		case <-r.Context().Done():
			h.logger.Debug("SSE request context cancelled", zap.String("clientId", clientID))
			return
		case <-h.shutdown:
			h.logger.Debug("SSE handler shutdown signal received", zap.String("clientId", clientID))
			return
		case <-heartbeat.C:
			if err := h.sendHeartbeat(client); err != nil {
				h.logger.Warn("Failed to send heartbeat",
					zap.String("clientId", clientID),
					zap.Error(err))
				return
			}
		}
	}
}

// Close signals all open connections to shut down
func (h *StreamHandler) Close() {
	h.logger.Debug("Shutting down SSE stream handler")
	close(h.shutdown)
}

// sendHeartbeat keeps intermediaries from dropping an idle connection
func (h *StreamHandler) sendHeartbeat(client *Client) error {
	payload := fmt.Sprintf(`{"type":"heartbeat","timestamp":"%s"}`, time.Now().Format(time.RFC3339))
	return client.Send([]byte(payload))
}
