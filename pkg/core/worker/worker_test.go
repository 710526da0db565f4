package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// mockReadinessWaiter is a mock implementation of health.ReadinessWaiter
type mockReadinessWaiter struct {
	readyChan        chan struct{}
	trafficReadyChan chan struct{}
}

func newMockReadinessWaiter() *mockReadinessWaiter {
	return &mockReadinessWaiter{
		readyChan:        make(chan struct{}),
		trafficReadyChan: make(chan struct{}),
	}
}

func (m *mockReadinessWaiter) WaitReady(ctx context.Context) error {
	select {
	case <-m.readyChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *mockReadinessWaiter) WaitForTrafficReady(ctx context.Context) error {
	select {
	case <-m.trafficReadyChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *mockReadinessWaiter) MarkReady() {
	select {
	case <-m.readyChan:
	default:
		close(m.readyChan)
	}
}

func (m *mockReadinessWaiter) MarkTrafficReady() {
	select {
	case <-m.trafficReadyChan:
	default:
		close(m.trafficReadyChan)
	}
}

// mockShutdowner is a mock implementation of fx.Shutdowner
type mockShutdowner struct {
	shutdownCalled atomic.Bool
}

func (m *mockShutdowner) Shutdown(opts ...fx.ShutdownOption) error {
	m.shutdownCalled.Store(true)
	return nil
}

// mockLifecycle is a mock implementation of fx.Lifecycle
type mockLifecycle struct {
	hooks []fx.Hook
}

func (m *mockLifecycle) Append(hook fx.Hook) {
	m.hooks = append(m.hooks, hook)
}

// newTestWorker builds a baseWorker with readiness already satisfied.
func newTestWorker(runFunc func(ctx context.Context) error, options Options) (*baseWorker, *mockShutdowner) {
	readiness := newMockReadinessWaiter()
	readiness.MarkReady()
	readiness.MarkTrafficReady()
	shutdowner := &mockShutdowner{}

	return &baseWorker{
		name:       "refresh worker",
		log:        zap.NewNop(),
		runFunc:    runFunc,
		shutdowner: shutdowner,
		readiness:  readiness,
		options:    options,
	}, shutdowner
}

func TestOptions(t *testing.T) {
	testCases := []struct {
		name   string
		option Option
		check  func(Options) bool
	}{
		{"WithTrafficReady", WithTrafficReady(), func(o Options) bool { return o.WaitForTrafficReady }},
		{"WithReady", WithReady(), func(o Options) bool { return o.WaitReady }},
		{"WithShutdown", WithShutdown(), func(o Options) bool { return o.ShutdownOnError }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			opts := Options{}
			tc.option(&opts)
			assert.True(t, tc.check(opts))
		})
	}
}

func TestBaseWorker_Start(t *testing.T) {
	t.Run("starts worker and runs function", func(t *testing.T) {
		executed := make(chan struct{})
		w, _ := newTestWorker(func(ctx context.Context) error {
			close(executed)
			<-ctx.Done()
			return nil
		}, Options{})

		w.Start()

		select {
		case <-executed:
		case <-time.After(100 * time.Millisecond):
			t.Fatal("run function was not executed")
		}

		w.Stop(context.Background())
	})

	t.Run("passes a cancellable context to the run function", func(t *testing.T) {
		ctxReceived := make(chan context.Context, 1)
		w, _ := newTestWorker(func(ctx context.Context) error {
			ctxReceived <- ctx
			<-ctx.Done()
			return nil
		}, Options{})

		w.Start()

		var ctx context.Context
		select {
		case ctx = <-ctxReceived:
		case <-time.After(100 * time.Millisecond):
			t.Fatal("did not receive context")
		}

		require.NotNil(t, ctx)
		assert.NoError(t, ctx.Err())

		w.Stop(context.Background())

		assert.Error(t, ctx.Err())
	})
}

func TestBaseWorker_Stop(t *testing.T) {
	t.Run("stops worker gracefully", func(t *testing.T) {
		stopped := make(chan struct{})
		w, _ := newTestWorker(func(ctx context.Context) error {
			<-ctx.Done()
			close(stopped)
			return nil
		}, Options{})

		w.Start()
		time.Sleep(50 * time.Millisecond)

		w.Stop(context.Background())

		select {
		case <-stopped:
		case <-time.After(100 * time.Millisecond):
			t.Fatal("worker did not stop")
		}
	})

	t.Run("gives up when the worker ignores cancellation", func(t *testing.T) {
		w, _ := newTestWorker(func(ctx context.Context) error {
			time.Sleep(5 * time.Second)
			return nil
		}, Options{})

		w.Start()
		time.Sleep(50 * time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		start := time.Now()
		w.Stop(ctx)
		elapsed := time.Since(start)

		assert.Less(t, elapsed, 200*time.Millisecond)
	})

	t.Run("handles stop before start", func(t *testing.T) {
		w := &baseWorker{
			name: "refresh worker",
			log:  zap.NewNop(),
		}

		assert.NotPanics(t, func() {
			w.Stop(context.Background())
		})
	})
}

func TestBaseWorker_WaitReady(t *testing.T) {
	t.Run("waits for readiness before running", func(t *testing.T) {
		readiness := newMockReadinessWaiter()

		executed := atomic.Bool{}
		w := &baseWorker{
			name: "refresh worker",
			log:  zap.NewNop(),
			runFunc: func(ctx context.Context) error {
				executed.Store(true)
				<-ctx.Done()
				return nil
			},
			readiness: readiness,
			options:   Options{WaitReady: true},
		}

		w.Start()
		time.Sleep(50 * time.Millisecond)

		assert.False(t, executed.Load(), "run function should not have executed yet")

		readiness.MarkReady()
		time.Sleep(50 * time.Millisecond)

		assert.True(t, executed.Load(), "run function should have executed")

		w.Stop(context.Background())
	})

	t.Run("stops if cancelled while waiting for readiness", func(t *testing.T) {
		readiness := newMockReadinessWaiter()

		executed := atomic.Bool{}
		w := &baseWorker{
			name: "refresh worker",
			log:  zap.NewNop(),
			runFunc: func(ctx context.Context) error {
				executed.Store(true)
				return nil
			},
			readiness: readiness,
			options:   Options{WaitReady: true},
		}

		w.Start()
		time.Sleep(50 * time.Millisecond)

		w.Stop(context.Background())

		assert.False(t, executed.Load(), "run function should not have executed")
	})
}

func TestBaseWorker_WaitForTrafficReady(t *testing.T) {
	t.Run("waits for both readiness signals in order", func(t *testing.T) {
		readiness := newMockReadinessWaiter()

		executed := atomic.Bool{}
		w := &baseWorker{
			name: "event consumer",
			log:  zap.NewNop(),
			runFunc: func(ctx context.Context) error {
				executed.Store(true)
				<-ctx.Done()
				return nil
			},
			readiness: readiness,
			options:   Options{WaitReady: true, WaitForTrafficReady: true},
		}

		w.Start()
		time.Sleep(50 * time.Millisecond)

		assert.False(t, executed.Load())

		readiness.MarkReady()
		time.Sleep(50 * time.Millisecond)

		assert.False(t, executed.Load(), "should still wait for traffic readiness")

		readiness.MarkTrafficReady()
		time.Sleep(50 * time.Millisecond)

		assert.True(t, executed.Load())

		w.Stop(context.Background())
	})

	t.Run("stops if cancelled while waiting for traffic readiness", func(t *testing.T) {
		readiness := newMockReadinessWaiter()

		executed := atomic.Bool{}
		w := &baseWorker{
			name: "event consumer",
			log:  zap.NewNop(),
			runFunc: func(ctx context.Context) error {
				executed.Store(true)
				return nil
			},
			readiness: readiness,
			options:   Options{WaitForTrafficReady: true},
		}

		w.Start()
		time.Sleep(50 * time.Millisecond)

		w.Stop(context.Background())

		assert.False(t, executed.Load(), "run function should not have executed")
	})
}

func TestBaseWorker_ShutdownOnError(t *testing.T) {
	t.Run("triggers shutdown on error", func(t *testing.T) {
		w, shutdowner := newTestWorker(func(ctx context.Context) error {
			return errors.New("fatal error")
		}, Options{ShutdownOnError: true})

		w.Start()
		time.Sleep(100 * time.Millisecond)

		assert.True(t, shutdowner.shutdownCalled.Load())
	})

	t.Run("does not trigger shutdown when no error", func(t *testing.T) {
		w, shutdowner := newTestWorker(func(ctx context.Context) error {
			return nil
		}, Options{ShutdownOnError: true})

		w.Start()
		time.Sleep(100 * time.Millisecond)

		assert.False(t, shutdowner.shutdownCalled.Load())
	})

	t.Run("logs error but does not shutdown when disabled", func(t *testing.T) {
		w, shutdowner := newTestWorker(func(ctx context.Context) error {
			return errors.New("non-fatal error")
		}, Options{ShutdownOnError: false})

		w.Start()
		time.Sleep(100 * time.Millisecond)

		assert.False(t, shutdowner.shutdownCalled.Load())
	})
}

func TestRegisterWorker(t *testing.T) {
	t.Run("registers start and stop hooks", func(t *testing.T) {
		startCalled := atomic.Bool{}
		stopCalled := atomic.Bool{}

		w, _ := newTestWorker(func(ctx context.Context) error {
			startCalled.Store(true)
			<-ctx.Done()
			stopCalled.Store(true)
			return nil
		}, Options{})

		lc := &mockLifecycle{}
		registerWorker(lc, w)

		require.Len(t, lc.hooks, 1)

		require.NoError(t, lc.hooks[0].OnStart(context.Background()))

		time.Sleep(50 * time.Millisecond)
		assert.True(t, startCalled.Load())

		require.NoError(t, lc.hooks[0].OnStop(context.Background()))

		time.Sleep(50 * time.Millisecond)
		assert.True(t, stopCalled.Load())
	})
}

func TestBaseWorker_RestartCycles(t *testing.T) {
	counter := atomic.Int32{}
	w, _ := newTestWorker(func(ctx context.Context) error {
		counter.Add(1)
		<-ctx.Done()
		return nil
	}, Options{})

	for i := 0; i < 5; i++ {
		w.Start()
		time.Sleep(20 * time.Millisecond)
		w.Stop(context.Background())
	}

	assert.Equal(t, int32(5), counter.Load())
}

// compile-time check that something satisfying runnable can be registered
type noopRunnable struct{}

func (noopRunnable) Run(ctx context.Context) error { return nil }

func TestRegister_ReturnsAnnotatedProvider(t *testing.T) {
	provider := Register[noopRunnable]("noop", WithReady(), WithShutdown())
	assert.NotNil(t, provider)
}
