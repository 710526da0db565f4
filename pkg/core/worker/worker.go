package worker

import (
	"context"
	"sync"

	"github.com/Sokol111/eventsourcing-commons/pkg/core/health"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// worker represents a background worker that can be started and stopped.
type worker interface {
	Start()
	Stop(ctx context.Context)
}

// runnable is a type that has a Run method that can return a fatal error.
type runnable interface {
	Run(ctx context.Context) error
}

// Options contains configuration for a worker.
type Options struct {
	WaitForTrafficReady bool
	WaitReady           bool
	ShutdownOnError     bool
}

// Option is a functional option for configuring a worker.
type Option func(*Options)

// WithTrafficReady makes the worker wait for traffic readiness before starting.
func WithTrafficReady() Option {
	return func(o *Options) {
		o.WaitForTrafficReady = true
	}
}

// WithReady makes the worker wait for all components to be ready before starting.
func WithReady() Option {
	return func(o *Options) {
		o.WaitReady = true
	}
}

// WithShutdown makes the worker trigger application shutdown on fatal error.
func WithShutdown() Option {
	return func(o *Options) {
		o.ShutdownOnError = true
	}
}

// baseWorker runs a function in a goroutine tied to the fx lifecycle.
type baseWorker struct {
	name       string
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	log        *zap.Logger
	runFunc    func(ctx context.Context) error
	shutdowner fx.Shutdowner
	readiness  health.ReadinessWaiter
	options    Options
}

// Start starts the worker by running the function in a goroutine.
func (w *baseWorker) Start() {
	w.log.Info("starting " + w.name)
	ctx, cancel := context.WithCancel(context.Background())
	w.cancelFunc = cancel
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()
}

func (w *baseWorker) run(ctx context.Context) {
	if w.options.WaitReady {
		w.log.Info("waiting for components readiness")
		if err := w.readiness.WaitReady(ctx); err != nil {
			w.log.Info(w.name + " stopped (cancelled while waiting for readiness)")
			return
		}
		w.log.Info("components readiness achieved")
	}

	if w.options.WaitForTrafficReady {
		w.log.Info("waiting for traffic readiness")
		if err := w.readiness.WaitForTrafficReady(ctx); err != nil {
			w.log.Info(w.name + " stopped (cancelled while waiting for traffic readiness)")
			return
		}
		w.log.Info("traffic readiness achieved, starting work")
	}

	err := w.runFunc(ctx)
	if err == nil {
		w.log.Info(w.name + " stopped")
		return
	}

	if w.options.ShutdownOnError {
		w.log.Error(w.name+" fatal error, initiating shutdown", zap.Error(err))
		if shutdownErr := w.shutdowner.Shutdown(fx.ExitCode(1)); shutdownErr != nil {
			w.log.Error("failed to initiate shutdown", zap.Error(shutdownErr))
		}
	} else {
		w.log.Error(w.name+" stopped with error", zap.Error(err))
	}
}

// Stop cancels the worker and waits for the goroutine to finish, or until
// the context expires for workers that do not honor cancellation promptly.
func (w *baseWorker) Stop(ctx context.Context) {
	w.log.Info("stopping " + w.name)
	if w.cancelFunc != nil {
		w.cancelFunc()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.log.Info(w.name + " shut down")
	case <-ctx.Done():
		w.log.Warn(w.name + " did not stop before deadline")
	}
}

// registerWorker registers a worker with fx.Lifecycle to start and stop with the application.
func registerWorker(lc fx.Lifecycle, w worker) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			w.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			w.Stop(ctx)
			return nil
		},
	})
}

// Register creates an fx.Annotate that provides a worker for the given dependency type.
// The dependency must have a Run(ctx context.Context) error method.
//
// Options:
//   - WithReady(): wait for all components to be ready before starting
//   - WithTrafficReady(): wait for traffic readiness before starting
//   - WithShutdown(): trigger application shutdown on fatal error
//
// Example:
//
//	worker.Register[*cacheRefresher]("schema cache refresher", worker.WithReady())
//	worker.Register[*consumer]("event consumer", worker.WithTrafficReady(), worker.WithShutdown())
func Register[T runnable](name string, opts ...Option) any {
	options := Options{}
	for _, opt := range opts {
		opt(&options)
	}

	return fx.Annotate(
		func(lc fx.Lifecycle, log *zap.Logger, shutdowner fx.Shutdowner, readiness health.ReadinessWaiter, dep T) worker {
			w := &baseWorker{
				name:       name,
				log:        log,
				runFunc:    dep.Run,
				shutdowner: shutdowner,
				readiness:  readiness,
				options:    options,
			}
			registerWorker(lc, w)
			return w
		},
		fx.ResultTags(`group:"workers"`),
	)
}

// NewWorkerModule consumes the "workers" value group so every worker
// registered via Register is instantiated and bound to the lifecycle.
// Without a consumer, fx would never build the group members.
func NewWorkerModule() fx.Option {
	return fx.Module("workers",
		fx.Invoke(fx.Annotate(
			func(workers []worker) {},
			fx.ParamTags(`group:"workers"`),
		)),
	)
}
