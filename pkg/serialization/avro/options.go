package avro

import (
	"go.uber.org/zap"

	"github.com/Sokol111/eventsourcing-commons/pkg/serialization/codec"
	"github.com/Sokol111/eventsourcing-commons/pkg/serialization/converter"
	"github.com/Sokol111/eventsourcing-commons/pkg/serialization/schemastore"
	"github.com/Sokol111/eventsourcing-commons/pkg/serialization/typemap"
)

type options struct {
	store     schemastore.Store
	registry  *typemap.Registry
	bindings  []typemap.Binding
	revisions RevisionResolver
	metadata  codec.Codec
	edges     []converter.Edge
	log       *zap.Logger
}

// Option configures the serializer at construction time. Construction is
// single-threaded; the built serializer is immutable and safe for concurrent
// use.
type Option func(*options)

func defaultOptions() options {
	return options{
		store:     schemastore.NewMemoryStore(),
		revisions: NewSchemaRevisionResolver(),
		metadata:  codec.NewMsgpackCodec(),
		log:       zap.NewNop(),
	}
}

// WithSchemaStore replaces the default in-memory schema store.
func WithSchemaStore(store schemastore.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithRegistry supplies a pre-populated type registry.
func WithRegistry(registry *typemap.Registry) Option {
	return func(o *options) {
		o.registry = registry
	}
}

// WithBindings registers additional type bindings on top of the registry.
func WithBindings(bindings ...typemap.Binding) Option {
	return func(o *options) {
		o.bindings = append(o.bindings, bindings...)
	}
}

// WithRevisionResolver replaces the default schema-based revision resolver.
func WithRevisionResolver(revisions RevisionResolver) Option {
	return func(o *options) {
		o.revisions = revisions
	}
}

// WithMetadataCodec replaces the default msgpack metadata delegate.
func WithMetadataCodec(c codec.Codec) Option {
	return func(o *options) {
		o.metadata = c
	}
}

// WithConverterEdges adds conversion edges after the built-in ones; an edge
// for an already-registered (source, target) pair replaces the built-in.
func WithConverterEdges(edges ...converter.Edge) Option {
	return func(o *options) {
		o.edges = append(o.edges, edges...)
	}
}

// WithLogger replaces the default no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}
