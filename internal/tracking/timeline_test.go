package tracking

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeline(t *testing.T) {
	t.Run("unknown worker yields empty history", func(t *testing.T) {
		timeline := NewTimeline()
		assert.Empty(t, timeline.All("nobody"))
		assert.Equal(t, 0, timeline.Count("nobody"))
	})

	t.Run("entries keep insertion order", func(t *testing.T) {
		timeline := NewTimeline()
		timeline.Append("w1", "first")
		timeline.Append("w1", "second")
		timeline.Append("w1", "third")

		assert.Equal(t, []string{"first", "second", "third"}, timeline.All("w1"))
	})

	t.Run("histories are per worker", func(t *testing.T) {
		timeline := NewTimeline()
		timeline.Append("w1", "alice moved")
		timeline.Append("w2", "bob moved")

		assert.Equal(t, []string{"alice moved"}, timeline.All("w1"))
		assert.Equal(t, []string{"bob moved"}, timeline.All("w2"))
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		timeline := NewTimeline()
		timeline.Append("w1", "original")

		entries := timeline.All("w1")
		entries[0] = "mutated"

		assert.Equal(t, []string{"original"}, timeline.All("w1"))
	})

	t.Run("concurrent appends are not lost", func(t *testing.T) {
		timeline := NewTimeline()

		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				timeline.Append("w1", fmt.Sprintf("entry %d", i))
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 100, timeline.Count("w1"))
	})
}

func TestFormatTimelineEntry(t *testing.T) {
	at := time.Date(2025, 6, 1, 14, 5, 9, 0, time.UTC)
	entry := formatTimelineEntry(at, "Alice", StatusExit, "Room 3", 2)
	require.Equal(t, "2025-06-01 14:05:09 | Alice | Exit | Room 3 | Floor 2", entry)
}
