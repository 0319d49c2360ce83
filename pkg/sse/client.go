package sse

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Client is one connected SSE observer. It implements the connection
// handle capability the tracking core broadcasts through: a stable ID
// and a Send that frames one event as an SSE data line.
type Client struct {
	id        string
	writer    http.ResponseWriter
	flusher   http.Flusher
	done      chan struct{}
	closeOnce sync.Once
	mu        sync.Mutex // protects concurrent writes to this client

	lastSeenMu sync.Mutex
	lastSeen   time.Time
}

// NewClient wraps an HTTP response as an SSE client
func NewClient(id string, w http.ResponseWriter, flusher http.Flusher) *Client {
	return &Client{
		id:       id,
		writer:   w,
		flusher:  flusher,
		done:     make(chan struct{}),
		lastSeen: time.Now(),
	}
}

// ID returns the stable connection identifier
func (c *Client) ID() string {
	return c.id
}

// Send writes one encoded event as an SSE data frame and flushes it.
// A send on a closed client returns an error so the caller can drop it
// from the registry.
func (c *Client) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.done:
		return fmt.Errorf("client %s connection closed", c.id)
	default:
	}

	frame := fmt.Sprintf("data: %s\n\n", data)
	n, err := c.writer.Write([]byte(frame))
	if err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	if n != len(frame) {
		return fmt.Errorf("incomplete write: wrote %d/%d bytes", n, len(frame))
	}

	c.flusher.Flush()
	c.touch()
	return nil
}

// Close marks the client as disconnected. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// Done is closed when the client has been disconnected
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// LastSeen returns the time of the last successful write
func (c *Client) LastSeen() time.Time {
	c.lastSeenMu.Lock()
	defer c.lastSeenMu.Unlock()
	return c.lastSeen
}

func (c *Client) touch() {
	c.lastSeenMu.Lock()
	c.lastSeen = time.Now()
	c.lastSeenMu.Unlock()
}
