package avro

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Sokol111/eventsourcing-commons/pkg/core/health"
	"github.com/Sokol111/eventsourcing-commons/pkg/serialization/schemastore"
	"github.com/Sokol111/eventsourcing-commons/pkg/serialization/typemap"
)

// NewSerializerModule provides the Avro serializer wired to the configured
// schema store and a shared type registry. Domain modules contribute
// bindings by invoking against *typemap.Registry; bound schemas are pushed
// to the store on start.
func NewSerializerModule() fx.Option {
	return fx.Module("avro-serializer",
		fx.Provide(
			provideRegistry,
			provideSerializer,
		),
	)
}

func provideRegistry() (*typemap.Registry, error) {
	return typemap.NewRegistry()
}

func provideSerializer(lc fx.Lifecycle, store schemastore.Store, registry *typemap.Registry, log *zap.Logger, cm health.ComponentManager) (Serializer, error) {
	s, err := New(
		WithSchemaStore(store),
		WithRegistry(registry),
		WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	markReady := cm.AddComponent("avro_serializer")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := s.RegisterSchemas(ctx); err != nil {
				return err
			}
			log.Info("avro serializer ready")
			markReady()
			return nil
		},
	})
	return s, nil
}
