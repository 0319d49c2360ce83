package tracking

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type nopConn struct {
	id string
}

func (c *nopConn) ID() string             { return c.id }
func (c *nopConn) Send(data []byte) error { return nil }

func TestRegistry(t *testing.T) {
	t.Run("register and unregister", func(t *testing.T) {
		registry := NewRegistry()
		registry.Register(&nopConn{id: "c1"})
		registry.Register(&nopConn{id: "c2"})
		assert.Equal(t, 2, registry.Count())

		registry.Unregister("c1")
		assert.Equal(t, 1, registry.Count())
	})

	t.Run("unregister of absent connection is a no-op", func(t *testing.T) {
		registry := NewRegistry()
		registry.Unregister("never-registered")
		assert.Equal(t, 0, registry.Count())
	})

	t.Run("snapshot is detached from later changes", func(t *testing.T) {
		registry := NewRegistry()
		registry.Register(&nopConn{id: "c1"})

		snapshot := registry.Snapshot()
		registry.Register(&nopConn{id: "c2"})
		registry.Unregister("c1")

		assert.Len(t, snapshot, 1)
		assert.Equal(t, "c1", snapshot[0].ID())
	})

	t.Run("safe under concurrent access", func(t *testing.T) {
		registry := NewRegistry()

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(3)
			id := fmt.Sprintf("c%d", i)
			go func(id string) {
				defer wg.Done()
				registry.Register(&nopConn{id: id})
			}(id)
			go func(id string) {
				defer wg.Done()
				registry.Unregister(id)
			}(id)
			go func() {
				defer wg.Done()
				for _, handle := range registry.Snapshot() {
					_ = handle.Send(nil)
				}
			}()
		}
		wg.Wait()
	})
}
