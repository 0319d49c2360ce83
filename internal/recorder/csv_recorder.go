package recorder

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/danghamo/presence/internal/tracking"
	"github.com/danghamo/presence/pkg/logger"
)

var csvHeader = []string{"workerId", "workerName", "room", "floor", "status", "moved", "alert", "timestamp"}

// CSVRecorder appends one durable row per accepted report. It consumes
// ReportAcceptedEvent from the event bus; the tracking core never
// waits on it and never rolls back when a write fails.
type CSVRecorder struct {
	logger *logger.Logger
	path   string
	mu     sync.Mutex
}

// NewCSVRecorder creates a recorder writing to the given file,
// creating it with a header row when it does not exist yet.
func NewCSVRecorder(path string, log *logger.Logger) (*CSVRecorder, error) {
	r := &CSVRecorder{
		logger: log.WithComponent("csv-recorder"),
		path:   path,
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := r.writeHeader(); err != nil {
			return nil, fmt.Errorf("failed to create csv file: %w", err)
		}
		r.logger.Info("Created CSV record file", zap.String("path", path))
	}

	return r, nil
}

// HandleReportAccepted appends one row for an accepted report
func (r *CSVRecorder) HandleReportAccepted(ctx context.Context, event *tracking.ReportAcceptedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open csv file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	row := []string{
		event.WorkerID,
		event.WorkerName,
		event.Room,
		strconv.Itoa(event.Floor),
		event.Status.String(),
		strconv.FormatBool(event.Moved),
		event.Alert,
		event.Timestamp.Format("2006-01-02 15:04:05"),
	}
	if err := writer.Write(row); err != nil {
		return fmt.Errorf("failed to write csv row: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv row: %w", err)
	}

	r.logger.Debug("Recorded accepted report",
		zap.String("workerId", event.WorkerID),
		zap.String("room", event.Room))

	return nil
}

func (r *CSVRecorder) writeHeader() error {
	file, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}
