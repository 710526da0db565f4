package health

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewReadinessModule provides component readiness tracking. The single
// readiness instance is exposed through narrow interfaces so consumers
// depend only on the part they use.
func NewReadinessModule() fx.Option {
	return fx.Module("readiness",
		fx.Provide(
			newConfig,
			func(logger *zap.Logger, cfg Config) *readiness {
				return newReadiness(logger, cfg.RunningInKubernetes)
			},
			func(r *readiness) ComponentManager { return r },
			func(r *readiness) ReadinessChecker { return r },
			func(r *readiness) ReadinessWaiter { return r },
			func(r *readiness) TrafficController { return r },
		),
	)
}
