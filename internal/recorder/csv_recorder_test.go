package recorder

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danghamo/presence/internal/tracking"
	"github.com/danghamo/presence/pkg/logger"
)

func readRows(t *testing.T, path string) [][]string {
	t.Helper()

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")

	rec, err := NewCSVRecorder(path, logger.NewDefault())
	require.NoError(t, err)

	t.Run("creates file with header", func(t *testing.T) {
		rows := readRows(t, path)
		require.Len(t, rows, 1)
		assert.Equal(t, csvHeader, rows[0])
	})

	t.Run("appends one row per accepted report", func(t *testing.T) {
		event := &tracking.ReportAcceptedEvent{
			EventID:    "evt-1",
			WorkerID:   "w1",
			WorkerName: "Alice",
			Room:       "Room 2",
			Floor:      2,
			Status:     tracking.StatusEnter,
			Moved:      true,
			Alert:      "Unauthorized floor: Alice reported from floor 2",
			Timestamp:  time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		}

		require.NoError(t, rec.HandleReportAccepted(context.Background(), event))

		rows := readRows(t, path)
		require.Len(t, rows, 2)
		assert.Equal(t, []string{
			"w1", "Alice", "Room 2", "2", "Enter", "true",
			"Unauthorized floor: Alice reported from floor 2",
			"2025-06-01 10:00:00",
		}, rows[1])
	})

	t.Run("reopening an existing file keeps prior rows", func(t *testing.T) {
		rec2, err := NewCSVRecorder(path, logger.NewDefault())
		require.NoError(t, err)

		event := &tracking.ReportAcceptedEvent{
			EventID:    "evt-2",
			WorkerID:   "w1",
			WorkerName: "Alice",
			Room:       "Room 2",
			Floor:      2,
			Status:     tracking.StatusExit,
			Timestamp:  time.Date(2025, 6, 1, 10, 5, 0, 0, time.UTC),
		}
		require.NoError(t, rec2.HandleReportAccepted(context.Background(), event))

		rows := readRows(t, path)
		assert.Len(t, rows, 3)
	})
}
