package health

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

type component struct {
	name      string
	ready     bool
	startedAt time.Time
	readyAt   time.Time
}

// readiness tracks the startup state of registered components.
// The service is ready once every registered component has been marked
// ready. In Kubernetes mode, traffic readiness additionally requires an
// explicit MarkTrafficReady call, which the readiness probe handler
// issues once the platform has observed the ready state.
type readiness struct {
	mu                  sync.RWMutex
	components          map[string]*component
	readyChan           chan struct{}
	readyOnce           sync.Once
	trafficChan         chan struct{}
	trafficOnce         sync.Once
	trafficReadyAt      time.Time
	runningInKubernetes bool
	logger              *zap.Logger
}

var (
	_ ComponentManager  = (*readiness)(nil)
	_ ReadinessChecker  = (*readiness)(nil)
	_ ReadinessWaiter   = (*readiness)(nil)
	_ TrafficController = (*readiness)(nil)
)

func newReadiness(logger *zap.Logger, runningInKubernetes bool) *readiness {
	return &readiness{
		components:          make(map[string]*component),
		readyChan:           make(chan struct{}),
		trafficChan:         make(chan struct{}),
		runningInKubernetes: runningInKubernetes,
		logger:              logger,
	}
}

// AddComponent registers a component and returns a function that marks
// it ready. Registering the same name twice logs a warning and returns
// a mark-ready function for the existing registration.
func (r *readiness) AddComponent(name string) func() {
	if name == "" {
		panic("readiness: component name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.components[name]; exists {
		r.logger.Warn("component already registered", zap.String("component", name))
	} else {
		r.components[name] = &component{name: name, startedAt: time.Now()}
	}

	return func() { r.MarkReady(name) }
}

// MarkReady marks a registered component as ready. Marking an already
// ready component is a no-op. Marking an unregistered component panics:
// that is a wiring bug, not a runtime condition.
func (r *readiness) MarkReady(name string) {
	if name == "" {
		panic("readiness: component name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	comp, exists := r.components[name]
	if !exists {
		panic(fmt.Sprintf("readiness: component '%s' does not exist, must call AddComponent first", name))
	}
	if comp.ready {
		return
	}

	comp.ready = true
	comp.readyAt = time.Now()
	r.logger.Info("component ready", zap.String("component", name))

	for _, c := range r.components {
		if !c.ready {
			return
		}
	}

	r.readyOnce.Do(func() {
		close(r.readyChan)
		r.logger.Info("all components are ready",
			zap.Int("components", len(r.components)),
		)
	})
}

func (r *readiness) IsReady() bool {
	select {
	case <-r.readyChan:
		return true
	default:
		return false
	}
}

func (r *readiness) GetStatus() ReadinessStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status := ReadinessStatus{
		Ready:                r.IsReady(),
		Components:           make([]ComponentStatus, 0, len(r.components)),
		KubernetesNotifiedAt: r.trafficReadyAt,
	}

	for _, comp := range r.components {
		status.Components = append(status.Components, ComponentStatus{
			Name:      comp.name,
			Ready:     comp.ready,
			StartedAt: comp.startedAt,
			ReadyAt:   comp.readyAt,
		})
		if status.Ready && comp.readyAt.After(status.ReadyAt) {
			status.ReadyAt = comp.readyAt
		}
	}

	slices.SortFunc(status.Components, func(a, b ComponentStatus) int {
		return strings.Compare(a.Name, b.Name)
	})

	return status
}

// MarkTrafficReady signals that the service may start handling traffic.
// Outside Kubernetes this is implied by component readiness; the call is
// recorded either way so GetStatus reports when it happened.
func (r *readiness) MarkTrafficReady() {
	r.trafficOnce.Do(func() {
		r.mu.Lock()
		r.trafficReadyAt = time.Now()
		r.mu.Unlock()
		close(r.trafficChan)
		r.logger.Info("service marked ready for traffic")
	})
}

// WaitReady blocks until all components are ready or the context is done.
func (r *readiness) WaitReady(ctx context.Context) error {
	select {
	case <-r.readyChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitForTrafficReady blocks until the service is ready to handle traffic.
// In Kubernetes mode this requires both component readiness and an
// explicit MarkTrafficReady call; otherwise component readiness suffices.
func (r *readiness) WaitForTrafficReady(ctx context.Context) error {
	if err := r.WaitReady(ctx); err != nil {
		return err
	}
	if !r.runningInKubernetes {
		return nil
	}
	select {
	case <-r.trafficChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
