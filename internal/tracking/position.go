package tracking

import (
	"sort"
	"sync"
	"time"
)

// PositionRecord is the last-known position held for one worker. The
// store keeps at most one record per worker ID and overwrites it in
// place on every accepted report.
type PositionRecord struct {
	WorkerID   string    `json:"workerId"`
	WorkerName string    `json:"workerName"`
	Room       string    `json:"room"`
	Floor      int       `json:"floor"`
	Status     Status    `json:"status"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// PositionStore is the authoritative in-memory mapping from worker ID
// to last-known position. It performs no validation and no I/O.
type PositionStore struct {
	mu      sync.RWMutex
	records map[string]PositionRecord
}

// NewPositionStore creates an empty position store
func NewPositionStore() *PositionStore {
	return &PositionStore{
		records: make(map[string]PositionRecord),
	}
}

// Get returns the last-known record for a worker. The second return
// value is false when the worker has never been seen.
func (s *PositionStore) Get(workerID string) (PositionRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[workerID]
	return record, ok
}

// Put stores a record, replacing any prior record unconditionally
func (s *PositionStore) Put(workerID string, record PositionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[workerID] = record
}

// Snapshot returns a copy of all current records sorted by worker ID
func (s *PositionStore) Snapshot() []PositionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]PositionRecord, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].WorkerID < records[j].WorkerID
	})
	return records
}

// Load seeds the store with previously persisted records. Records
// already present win over loaded ones, so a warm start cannot clobber
// positions reported after boot.
func (s *PositionStore) Load(records []PositionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range records {
		if _, exists := s.records[record.WorkerID]; !exists {
			s.records[record.WorkerID] = record
		}
	}
}

// Len returns the number of known workers
func (s *PositionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
