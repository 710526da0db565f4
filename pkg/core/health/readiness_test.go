package health

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewReadiness(t *testing.T) {
	r := newReadiness(zap.NewNop(), false)

	assert.NotNil(t, r)
	assert.False(t, r.IsReady())
}

func TestAddComponent(t *testing.T) {
	t.Run("successfully adds component", func(t *testing.T) {
		r := newReadiness(zap.NewNop(), false)

		r.AddComponent("schema_store")

		assert.Len(t, r.components, 1)
		assert.Contains(t, r.components, "schema_store")
		assert.False(t, r.components["schema_store"].ready)
	})

	t.Run("returned function marks the component ready", func(t *testing.T) {
		r := newReadiness(zap.NewNop(), false)

		markReady := r.AddComponent("schema_store")
		assert.False(t, r.IsReady())

		markReady()

		assert.True(t, r.components["schema_store"].ready)
		assert.True(t, r.IsReady())
	})

	t.Run("panics on empty component name", func(t *testing.T) {
		r := newReadiness(zap.NewNop(), false)

		assert.Panics(t, func() {
			r.AddComponent("")
		})
	})

	t.Run("logs warning when adding duplicate component", func(t *testing.T) {
		r := newReadiness(zap.NewNop(), false)

		r.AddComponent("schema_store")
		r.AddComponent("schema_store")

		assert.Len(t, r.components, 1)
	})
}

func TestMarkReady(t *testing.T) {
	t.Run("successfully marks component ready", func(t *testing.T) {
		r := newReadiness(zap.NewNop(), false)

		r.AddComponent("schema_store")
		r.MarkReady("schema_store")

		assert.True(t, r.components["schema_store"].ready)
		assert.False(t, r.components["schema_store"].readyAt.IsZero())
	})

	t.Run("panics on empty component name", func(t *testing.T) {
		r := newReadiness(zap.NewNop(), false)

		assert.Panics(t, func() {
			r.MarkReady("")
		})
	})

	t.Run("panics on non-existent component", func(t *testing.T) {
		r := newReadiness(zap.NewNop(), false)

		assert.PanicsWithValue(t, "readiness: component 'schema_store' does not exist, must call AddComponent first", func() {
			r.MarkReady("schema_store")
		})
	})

	t.Run("marking an already ready component keeps the first readyAt", func(t *testing.T) {
		r := newReadiness(zap.NewNop(), false)

		r.AddComponent("schema_store")
		r.MarkReady("schema_store")
		firstReadyAt := r.components["schema_store"].readyAt

		r.MarkReady("schema_store")

		assert.Equal(t, firstReadyAt, r.components["schema_store"].readyAt)
	})
}

func TestIsReady(t *testing.T) {
	t.Run("not ready when no components", func(t *testing.T) {
		r := newReadiness(zap.NewNop(), false)

		assert.False(t, r.IsReady())
	})

	t.Run("not ready when only some components are ready", func(t *testing.T) {
		r := newReadiness(zap.NewNop(), false)

		r.AddComponent("schema_store")
		r.AddComponent("avro_serializer")
		r.MarkReady("schema_store")

		assert.False(t, r.IsReady())
	})

	t.Run("ready when all components are ready", func(t *testing.T) {
		r := newReadiness(zap.NewNop(), false)

		r.AddComponent("schema_store")
		r.AddComponent("avro_serializer")
		r.MarkReady("schema_store")
		r.MarkReady("avro_serializer")

		assert.True(t, r.IsReady())
	})
}

func TestGetStatus(t *testing.T) {
	t.Run("returns empty status when no components", func(t *testing.T) {
		r := newReadiness(zap.NewNop(), false)

		status := r.GetStatus()

		assert.False(t, status.Ready)
		assert.Empty(t, status.Components)
		assert.True(t, status.ReadyAt.IsZero())
		assert.True(t, status.KubernetesNotifiedAt.IsZero())
	})

	t.Run("returns components in sorted order", func(t *testing.T) {
		r := newReadiness(zap.NewNop(), false)

		r.AddComponent("schema_store")
		r.AddComponent("avro_serializer")
		r.AddComponent("cache_refresher")

		status := r.GetStatus()

		require.Len(t, status.Components, 3)
		assert.Equal(t, "avro_serializer", status.Components[0].Name)
		assert.Equal(t, "cache_refresher", status.Components[1].Name)
		assert.Equal(t, "schema_store", status.Components[2].Name)
	})

	t.Run("readyAt is the latest component readyAt", func(t *testing.T) {
		r := newReadiness(zap.NewNop(), false)

		r.AddComponent("schema_store")
		r.MarkReady("schema_store")

		time.Sleep(10 * time.Millisecond)

		r.AddComponent("avro_serializer")
		r.MarkReady("avro_serializer")

		status := r.GetStatus()

		assert.True(t, status.Ready)
		var maxComponentReadyAt time.Time
		for _, comp := range status.Components {
			if comp.ReadyAt.After(maxComponentReadyAt) {
				maxComponentReadyAt = comp.ReadyAt
			}
		}
		assert.Equal(t, maxComponentReadyAt, status.ReadyAt)
	})

	t.Run("readyAt stays zero while not ready", func(t *testing.T) {
		r := newReadiness(zap.NewNop(), false)

		r.AddComponent("schema_store")

		status := r.GetStatus()
		assert.False(t, status.Ready)
		assert.True(t, status.ReadyAt.IsZero())
		require.Len(t, status.Components, 1)
		assert.False(t, status.Components[0].StartedAt.IsZero())
		assert.True(t, status.Components[0].ReadyAt.IsZero())
	})
}

func TestWaitReady(t *testing.T) {
	t.Run("blocks until ready", func(t *testing.T) {
		r := newReadiness(zap.NewNop(), false)

		r.AddComponent("schema_store")

		ready := make(chan struct{})
		go func() {
			err := r.WaitReady(context.Background())
			assert.NoError(t, err)
			close(ready)
		}()

		select {
		case <-ready:
			t.Fatal("should not be ready yet")
		case <-time.After(50 * time.Millisecond):
		}

		r.MarkReady("schema_store")

		select {
		case <-ready:
		case <-time.After(100 * time.Millisecond):
			t.Fatal("should be ready now")
		}
	})

	t.Run("returns immediately when already ready", func(t *testing.T) {
		r := newReadiness(zap.NewNop(), false)

		r.AddComponent("schema_store")
		r.MarkReady("schema_store")

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		assert.NoError(t, r.WaitReady(ctx))
	})

	t.Run("returns error when context cancelled", func(t *testing.T) {
		r := newReadiness(zap.NewNop(), false)

		r.AddComponent("schema_store")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := r.WaitReady(ctx)
		assert.Equal(t, context.Canceled, err)
	})

	t.Run("returns error when context times out", func(t *testing.T) {
		r := newReadiness(zap.NewNop(), false)

		r.AddComponent("schema_store")

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err := r.WaitReady(ctx)
		assert.Equal(t, context.DeadlineExceeded, err)
	})
}

func TestMarkTrafficReady(t *testing.T) {
	t.Run("records the notification time", func(t *testing.T) {
		r := newReadiness(zap.NewNop(), false)

		r.AddComponent("schema_store")
		r.MarkReady("schema_store")

		r.MarkTrafficReady()

		status := r.GetStatus()
		assert.False(t, status.KubernetesNotifiedAt.IsZero())
	})

	t.Run("marks traffic ready only once", func(t *testing.T) {
		r := newReadiness(zap.NewNop(), true)

		r.AddComponent("schema_store")
		r.MarkReady("schema_store")

		r.MarkTrafficReady()
		firstNotifiedAt := r.GetStatus().KubernetesNotifiedAt

		time.Sleep(10 * time.Millisecond)
		r.MarkTrafficReady()
		secondNotifiedAt := r.GetStatus().KubernetesNotifiedAt

		assert.Equal(t, firstNotifiedAt, secondNotifiedAt)
	})
}

func TestWaitForTrafficReady(t *testing.T) {
	t.Run("component readiness suffices outside kubernetes", func(t *testing.T) {
		r := newReadiness(zap.NewNop(), false)

		r.AddComponent("schema_store")

		ready := make(chan struct{})
		go func() {
			err := r.WaitForTrafficReady(context.Background())
			assert.NoError(t, err)
			close(ready)
		}()

		select {
		case <-ready:
			t.Fatal("should not be ready yet")
		case <-time.After(50 * time.Millisecond):
		}

		r.MarkReady("schema_store")

		select {
		case <-ready:
		case <-time.After(100 * time.Millisecond):
			t.Fatal("should be ready now")
		}
	})

	t.Run("kubernetes mode waits for the traffic signal", func(t *testing.T) {
		r := newReadiness(zap.NewNop(), true)

		r.AddComponent("schema_store")

		ready := make(chan struct{})
		go func() {
			err := r.WaitForTrafficReady(context.Background())
			assert.NoError(t, err)
			close(ready)
		}()

		r.MarkReady("schema_store")

		select {
		case <-ready:
			t.Fatal("should still wait for the traffic signal")
		case <-time.After(50 * time.Millisecond):
		}

		r.MarkTrafficReady()

		select {
		case <-ready:
		case <-time.After(100 * time.Millisecond):
			t.Fatal("should be ready now")
		}
	})

	t.Run("returns immediately when already traffic ready", func(t *testing.T) {
		r := newReadiness(zap.NewNop(), true)

		r.AddComponent("schema_store")
		r.MarkReady("schema_store")
		r.MarkTrafficReady()

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		assert.NoError(t, r.WaitForTrafficReady(ctx))
	})

	t.Run("returns error when context cancelled before ready", func(t *testing.T) {
		r := newReadiness(zap.NewNop(), false)

		r.AddComponent("schema_store")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := r.WaitForTrafficReady(ctx)
		assert.Equal(t, context.Canceled, err)
	})

	t.Run("returns error when context expires before traffic signal", func(t *testing.T) {
		r := newReadiness(zap.NewNop(), true)

		r.AddComponent("schema_store")
		r.MarkReady("schema_store")

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err := r.WaitForTrafficReady(ctx)
		assert.Equal(t, context.DeadlineExceeded, err)
	})
}

func TestReadiness_Concurrency(t *testing.T) {
	t.Run("concurrent AddComponent and MarkReady", func(t *testing.T) {
		r := newReadiness(zap.NewNop(), false)

		componentCount := 100
		var wg sync.WaitGroup

		for i := 0; i < componentCount; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				name := fmt.Sprintf("component-%03d", idx)
				markReady := r.AddComponent(name)
				markReady()
			}(i)
		}

		wg.Wait()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, r.WaitReady(ctx))
		assert.True(t, r.IsReady())
		assert.Len(t, r.GetStatus().Components, componentCount)
	})

	t.Run("multiple concurrent waiters all unblock", func(t *testing.T) {
		r := newReadiness(zap.NewNop(), false)

		r.AddComponent("schema_store")

		var wg sync.WaitGroup
		var mu sync.Mutex
		readyCount := 0

		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := r.WaitReady(context.Background()); err == nil {
					mu.Lock()
					readyCount++
					mu.Unlock()
				}
			}()
		}

		time.Sleep(50 * time.Millisecond)
		r.MarkReady("schema_store")

		wg.Wait()
		assert.Equal(t, 10, readyCount)
	})

	t.Run("concurrent GetStatus calls", func(t *testing.T) {
		r := newReadiness(zap.NewNop(), false)

		r.AddComponent("schema_store")
		r.AddComponent("avro_serializer")

		done := make(chan struct{})
		for i := 0; i < 50; i++ {
			go func() {
				for j := 0; j < 100; j++ {
					status := r.GetStatus()
					assert.Len(t, status.Components, 2)
				}
				done <- struct{}{}
			}()
		}

		timeout := time.After(5 * time.Second)
		for i := 0; i < 50; i++ {
			select {
			case <-done:
			case <-timeout:
				t.Fatal("timeout waiting for concurrent GetStatus calls to complete")
			}
		}
	})
}
