// Package serialization aggregates the serialization engine's fx modules.
package serialization

import (
	"go.uber.org/fx"

	"github.com/Sokol111/eventsourcing-commons/pkg/serialization/avro"
	"github.com/Sokol111/eventsourcing-commons/pkg/serialization/schemastore"
)

// NewSerializationModule wires the schema store (with its cache refresher)
// and the Avro serializer. Domain modules contribute type bindings against
// the provided *typemap.Registry.
func NewSerializationModule() fx.Option {
	return fx.Options(
		schemastore.NewSchemaStoreModule(),
		avro.NewSerializerModule(),
	)
}
