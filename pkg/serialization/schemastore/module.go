package schemastore

import (
	"context"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/schemaregistry"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Sokol111/eventsourcing-commons/pkg/core/health"
	"github.com/Sokol111/eventsourcing-commons/pkg/core/worker"
)

// NewSchemaStoreModule provides the schema store selected by configuration:
// an in-memory store for tests and single-process setups, or a Confluent
// Schema Registry backed store with a periodic cache refresher.
func NewSchemaStoreModule() fx.Option {
	return fx.Module("schema-store",
		fx.Provide(
			newConfig,
			provideStore,
			provideResolver,
			worker.Register[*cacheRefresher]("schema cache refresher", worker.WithReady()),
		),
	)
}

func provideStore(lc fx.Lifecycle, cfg Config, log *zap.Logger, cm health.ComponentManager) (Store, *cacheRefresher, error) {
	markReady := cm.AddComponent("schema_store")

	switch cfg.Mode {
	case ModeMemory:
		store := NewMemoryStore()
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				log.Info("in-memory schema store ready")
				markReady()
				return nil
			},
		})
		return store, newCacheRefresher(nil, 0, log), nil

	case ModeConfluent:
		client, err := newRegistryClient(cfg.Confluent)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create schema registry client: %w", err)
		}
		store := NewConfluentStore(client, log, cfg.Confluent)

		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if _, err := store.Schemas(ctx); err != nil {
					return fmt.Errorf("failed to warm schema cache: %w", err)
				}
				log.Info("confluent schema store ready", zap.String("url", cfg.Confluent.URL))
				markReady()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				log.Info("closing schema registry client")
				return client.Close()
			},
		})
		return store, newCacheRefresher(store, *cfg.Confluent.RefreshInterval, log), nil

	default:
		return nil, nil, fmt.Errorf("unknown schema-store mode %q", cfg.Mode)
	}
}

func provideResolver(store Store) Resolver {
	return store
}

func newRegistryClient(cfg ConfluentConfig) (schemaregistry.Client, error) {
	conf := schemaregistry.NewConfig(cfg.URL)
	conf.RequestTimeoutMs = int(cfg.RequestTimeout.Milliseconds())
	return schemaregistry.NewClient(conf)
}
