package tracking

import (
	"fmt"
	"sync"
	"time"
)

// timelineTimeLayout matches the timestamp format the CSV viewer expects
const timelineTimeLayout = "2006-01-02 15:04:05"

// Timeline keeps a per-worker append-only history of movement entries.
// Entries are human-readable strings, appended in processing order and
// never mutated or removed. Growth is unbounded.
type Timeline struct {
	mu      sync.RWMutex
	entries map[string][]string
}

// NewTimeline creates an empty timeline accumulator
func NewTimeline() *Timeline {
	return &Timeline{
		entries: make(map[string][]string),
	}
}

// Append adds an entry to a worker's history
func (t *Timeline) Append(workerID, entry string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[workerID] = append(t.entries[workerID], entry)
}

// All returns a copy of a worker's history, oldest first. Unknown
// workers get an empty slice, never an error.
func (t *Timeline) All(workerID string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entries := t.entries[workerID]
	out := make([]string, len(entries))
	copy(out, entries)
	return out
}

// Count returns the number of entries recorded for a worker
func (t *Timeline) Count(workerID string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries[workerID])
}

// formatTimelineEntry renders one movement transition as a timeline line
func formatTimelineEntry(at time.Time, workerName string, status Status, room string, floor int) string {
	return fmt.Sprintf("%s | %s | %s | %s | Floor %d",
		at.Format(timelineTimeLayout), workerName, status, room, floor)
}
