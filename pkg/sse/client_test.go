package sse

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Send(t *testing.T) {
	t.Run("frames payload as an SSE data line", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		client := NewClient("c1", recorder, recorder)

		err := client.Send([]byte(`{"workerId":"w1"}`))
		require.NoError(t, err)
		assert.Equal(t, "data: {\"workerId\":\"w1\"}\n\n", recorder.Body.String())
		assert.True(t, recorder.Flushed)
	})

	t.Run("send after close fails", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		client := NewClient("c1", recorder, recorder)

		client.Close()
		err := client.Send([]byte(`{}`))
		assert.Error(t, err)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		client := NewClient("c1", recorder, recorder)

		client.Close()
		client.Close()

		select {
		case <-client.Done():
		default:
			t.Fatal("done channel should be closed")
		}
	})
}
