package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasMoved(t *testing.T) {
	floor := func(f int) *int { return &f }

	t.Run("first sighting always counts as movement", func(t *testing.T) {
		report := WorkerReport{WorkerID: "w1", WorkerName: "Alice", Room: "Room 1", Floor: floor(1), Status: StatusEnter}
		assert.True(t, hasMoved(nil, report))
	})

	t.Run("room change is movement", func(t *testing.T) {
		previous := &PositionRecord{WorkerID: "w1", Room: "Room 1", Floor: 1}
		report := WorkerReport{WorkerID: "w1", Room: "Room 2", Floor: floor(1)}
		assert.True(t, hasMoved(previous, report))
	})

	t.Run("floor change is movement", func(t *testing.T) {
		previous := &PositionRecord{WorkerID: "w1", Room: "Room 1", Floor: 1}
		report := WorkerReport{WorkerID: "w1", Room: "Room 1", Floor: floor(2)}
		assert.True(t, hasMoved(previous, report))
	})

	t.Run("status change alone is not movement", func(t *testing.T) {
		previous := &PositionRecord{WorkerID: "w1", Room: "Room 1", Floor: 1, Status: StatusEnter}
		report := WorkerReport{WorkerID: "w1", Room: "Room 1", Floor: floor(1), Status: StatusExit}
		assert.False(t, hasMoved(previous, report))
	})

	t.Run("identical position is not movement", func(t *testing.T) {
		previous := &PositionRecord{WorkerID: "w1", Room: "Room 1", Floor: 1}
		report := WorkerReport{WorkerID: "w1", Room: "Room 1", Floor: floor(1)}
		assert.False(t, hasMoved(previous, report))
	})
}
