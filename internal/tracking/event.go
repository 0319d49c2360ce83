package tracking

import (
	"time"
)

// BroadcastEvent is the wire payload fanned out to every connected
// observer after an accepted report. It carries the worker's latest
// position, the full current timeline for that worker and an optional
// alert. Constructed fresh per report and not retained.
//
// Wire keys are lowerCamel and stable: viewers key off them.
type BroadcastEvent struct {
	WorkerID   string                 `json:"workerId"`
	WorkerName string                 `json:"workerName"`
	Room       string                 `json:"room"`
	Floor      int                    `json:"floor"`
	Status     Status                 `json:"status"`
	Timeline   []string               `json:"timeline"`
	Alert      string                 `json:"alert,omitempty"`
	Changes    map[string]interface{} `json:"changes,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

// ReportAcceptedEvent is published to the event bus after every
// accepted report, for downstream collaborators such as the CSV
// recorder. The core does not depend on its delivery.
type ReportAcceptedEvent struct {
	EventID    string    `json:"event_id"`
	WorkerID   string    `json:"worker_id"`
	WorkerName string    `json:"worker_name"`
	Room       string    `json:"room"`
	Floor      int       `json:"floor"`
	Status     Status    `json:"status"`
	Moved      bool      `json:"moved"`
	Alert      string    `json:"alert,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
