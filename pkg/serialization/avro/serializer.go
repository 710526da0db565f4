// Package avro implements the schema-aware serializer: payloads travel as
// Avro single-object envelopes identified by schema fingerprint, with a
// converter chain routing between typed structs, generic records and
// envelope bytes, and graceful degradation when a payload's type is unknown
// to the running process.
package avro

import (
	"context"
	"fmt"
	"reflect"

	hambavro "github.com/hamba/avro/v2"
	"go.uber.org/zap"

	"github.com/Sokol111/eventsourcing-commons/pkg/core/logger"
	"github.com/Sokol111/eventsourcing-commons/pkg/messaging"
	"github.com/Sokol111/eventsourcing-commons/pkg/serialization/codec"
	"github.com/Sokol111/eventsourcing-commons/pkg/serialization/converter"
	"github.com/Sokol111/eventsourcing-commons/pkg/serialization/schemastore"
	"github.com/Sokol111/eventsourcing-commons/pkg/serialization/serde"
	"github.com/Sokol111/eventsourcing-commons/pkg/serialization/typemap"
)

// Serializer converts payloads between representations, embedding schema
// identity on the wire instead of type names.
type Serializer interface {
	// Serialize expresses a payload in the target representation.
	Serialize(ctx context.Context, value any, target serde.Representation) (serde.Object, error)

	// Deserialize materializes a serialized object back into a Go value.
	// An identity that resolves to no registered type yields a
	// serde.UnknownPayload, not an error.
	Deserialize(ctx context.Context, object serde.Object) (any, error)

	// CanSerializeTo reports whether typed payloads can reach the target
	// representation.
	CanSerializeTo(target serde.Representation) bool

	// SerializedTypeOf computes the identity a payload would carry on the
	// wire.
	SerializedTypeOf(value any) (serde.Type, error)

	// RuntimeTypeOf maps a wire identity to the Go type it materializes as.
	// Unknown names map to serde.UnknownRuntimeType, never an error.
	RuntimeTypeOf(t serde.Type) reflect.Type

	// RegisterSchemas pushes every bound schema to the schema store.
	RegisterSchemas(ctx context.Context) error
}

type serializer struct {
	store     schemastore.Store
	registry  *typemap.Registry
	revisions RevisionResolver
	metadata  codec.Codec
	chain     *converter.Chain
	envelopes *EnvelopeCodec
	log       *zap.Logger
	throttler *logger.LogThrottler

	typed   schemaTypeSerializer
	generic schemaTypeSerializer
}

// New builds a serializer. Without options it runs self-contained: in-memory
// schema store, empty type registry, schema-based revisions, msgpack
// metadata delegate.
func New(opts ...Option) (Serializer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	registry := o.registry
	if registry == nil {
		var err error
		registry, err = typemap.NewRegistry()
		if err != nil {
			return nil, err
		}
	}
	for _, binding := range o.bindings {
		if err := registry.Register(binding); err != nil {
			return nil, err
		}
	}

	s := &serializer{
		store:     o.store,
		registry:  registry,
		revisions: o.revisions,
		metadata:  o.metadata,
		envelopes: NewEnvelopeCodec(o.store),
		log:       o.log,
		throttler: logger.NewLogThrottler(o.log, 0),
	}

	chain, err := converter.NewBuilder().
		Register(serde.Typed, serde.Generic, s.typedToGeneric).
		Register(serde.Generic, serde.Envelope, s.genericToEnvelope).
		Register(serde.Envelope, serde.Generic, s.envelopeToGeneric).
		RegisterEdges(o.edges...).
		Build()
	if err != nil {
		return nil, err
	}

	s.chain = chain
	s.typed = schemaTypeSerializer{native: serde.Typed, chain: chain}
	s.generic = schemaTypeSerializer{native: serde.Generic, chain: chain}
	return s, nil
}

func (s *serializer) Serialize(ctx context.Context, value any, target serde.Representation) (serde.Object, error) {
	switch payload := value.(type) {
	case nil:
		return serde.Object{Type: serde.EmptyType(), Representation: target}, nil

	case messaging.Metadata:
		return s.serializeMetadata(payload, target)

	case *serde.GenericRecord:
		identity, err := s.SerializedTypeOf(payload)
		if err != nil {
			return serde.Object{}, err
		}
		return s.generic.serialize(ctx, payload, identity, target)

	default:
		identity, err := s.SerializedTypeOf(value)
		if err != nil {
			return serde.Object{}, err
		}
		return s.typed.serialize(ctx, value, identity, target)
	}
}

// serializeMetadata delegates to the metadata codec. The delegate produces
// self-describing bytes, so only the byte-shaped target is legal and the
// result is not envelope-framed.
func (s *serializer) serializeMetadata(meta messaging.Metadata, target serde.Representation) (serde.Object, error) {
	if target != serde.Envelope {
		return serde.Object{}, fmt.Errorf("%w: metadata serializes to %s only, not %s",
			ErrUnsupportedConversion, serde.Envelope, target)
	}

	data, err := s.metadata.Marshal(meta)
	if err != nil {
		return serde.Object{}, err
	}
	return serde.Object{
		Type:           serde.NewType(messaging.MetadataTypeName, ""),
		Representation: target,
		Data:           data,
	}, nil
}

func (s *serializer) Deserialize(ctx context.Context, object serde.Object) (any, error) {
	if object.Type.IsEmpty() {
		return nil, nil
	}

	if object.Type.Name == messaging.MetadataTypeName {
		return s.deserializeMetadata(object)
	}

	binding, ok := s.registry.ByName(object.Type.Name)
	if !ok {
		s.throttler.Warn(object.Type.Name, "deserializing payload of unknown type",
			zap.String("type", object.Type.String()),
			zap.String("representation", string(object.Representation)))
		return serde.UnknownPayload{SerializedType: object.Type, Object: object}, nil
	}

	value, err := s.decode(ctx, object, binding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeserialization, err)
	}
	return value, nil
}

func (s *serializer) deserializeMetadata(object serde.Object) (any, error) {
	data, ok := object.Data.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: metadata payload is %T, not bytes", ErrDeserialization, object.Data)
	}

	meta := messaging.Metadata{}
	if err := s.metadata.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeserialization, err)
	}
	return meta, nil
}

// decode materializes a binding's Go value from the object. Generic records
// decode directly with their carried writer schema; every other
// representation is routed to envelope bytes first.
func (s *serializer) decode(ctx context.Context, object serde.Object, binding typemap.Binding) (any, error) {
	if object.Representation == serde.Generic {
		record, ok := object.Data.(*serde.GenericRecord)
		if !ok {
			return nil, fmt.Errorf("expected *serde.GenericRecord, got %T", object.Data)
		}
		payload, err := hambavro.Marshal(record.Schema(), record.Fields())
		if err != nil {
			return nil, fmt.Errorf("failed to re-encode %s: %w", record.FullName(), err)
		}
		return s.decodePayload(record.Schema(), payload, binding)
	}

	converted, err := s.chain.Convert(ctx, object.Data, object.Representation, serde.Envelope)
	if err != nil {
		return nil, err
	}
	data, ok := converted.([]byte)
	if !ok {
		return nil, fmt.Errorf("expected envelope bytes, got %T", converted)
	}

	fp, payload, err := s.envelopes.parser.Parse(data)
	if err != nil {
		return nil, err
	}
	writer, err := s.store.ByFingerprint(ctx, fp)
	if err != nil {
		return nil, err
	}
	return s.decodePayload(writer, payload, binding)
}

// decodePayload decodes Avro binary written with the writer schema into a
// fresh value of the binding's type. A writer that differs from the reader
// goes through compatibility resolution, so defaulted field drift decodes
// instead of failing.
func (s *serializer) decodePayload(writer hambavro.Schema, payload []byte, binding typemap.Binding) (any, error) {
	schema := writer
	reader := binding.Schema()
	if writer.Fingerprint() != reader.Fingerprint() {
		resolved, err := hambavro.NewSchemaCompatibility().Resolve(reader, writer)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve writer schema for %s: %w", binding.Name, err)
		}
		schema = resolved
	}

	value := binding.Factory()
	if err := hambavro.Unmarshal(schema, payload, value); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", binding.Name, err)
	}
	return reflect.ValueOf(value).Elem().Interface(), nil
}

func (s *serializer) CanSerializeTo(target serde.Representation) bool {
	return s.chain.CanConvert(serde.Typed, target)
}

func (s *serializer) SerializedTypeOf(value any) (serde.Type, error) {
	switch payload := value.(type) {
	case nil:
		return serde.EmptyType(), nil

	case messaging.Metadata:
		return serde.NewType(messaging.MetadataTypeName, ""), nil

	case *serde.GenericRecord:
		revision, err := s.revisions.Revision(payload.Schema())
		if err != nil {
			return serde.Type{}, err
		}
		return serde.NewType(payload.FullName(), revision), nil

	default:
		binding, ok := s.registry.ByValue(value)
		if !ok {
			return serde.Type{}, fmt.Errorf("%w: %T is not a registered type", ErrUnsupportedPayload, value)
		}
		revision, err := s.revisions.Revision(binding.Schema())
		if err != nil {
			return serde.Type{}, err
		}
		return serde.NewType(binding.Name, revision), nil
	}
}

var metadataRuntimeType = reflect.TypeOf(messaging.Metadata{})

func (s *serializer) RuntimeTypeOf(t serde.Type) reflect.Type {
	if t.IsEmpty() {
		return nil
	}
	if t.Name == messaging.MetadataTypeName {
		return metadataRuntimeType
	}
	if binding, ok := s.registry.ByName(t.Name); ok {
		return binding.GoType
	}
	return serde.UnknownRuntimeType
}

func (s *serializer) RegisterSchemas(ctx context.Context) error {
	for _, binding := range s.registry.Bindings() {
		if _, err := s.store.Register(ctx, binding.Schema()); err != nil {
			return fmt.Errorf("failed to register schema %s: %w", binding.Name, err)
		}
		s.log.Debug("registered schema", zap.String("name", binding.Name))
	}
	return nil
}

// Converter edges installed by New.

func (s *serializer) typedToGeneric(_ context.Context, value any) (any, error) {
	binding, ok := s.registry.ByValue(value)
	if !ok {
		return nil, fmt.Errorf("no schema binding for %T", value)
	}

	data, err := hambavro.Marshal(binding.Schema(), value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", binding.Name, err)
	}

	record, err := serde.NewGenericRecord(binding.Schema())
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if err := hambavro.Unmarshal(binding.Schema(), data, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode %s into a record: %w", binding.Name, err)
	}
	for name, fieldValue := range fields {
		if err := record.Set(name, fieldValue); err != nil {
			return nil, err
		}
	}
	return record, nil
}

func (s *serializer) genericToEnvelope(ctx context.Context, value any) (any, error) {
	record, ok := value.(*serde.GenericRecord)
	if !ok {
		return nil, fmt.Errorf("expected *serde.GenericRecord, got %T", value)
	}
	return s.envelopes.Encode(ctx, record)
}

func (s *serializer) envelopeToGeneric(ctx context.Context, value any) (any, error) {
	data, ok := value.([]byte)
	if !ok {
		return nil, fmt.Errorf("expected envelope bytes, got %T", value)
	}
	return s.envelopes.Decode(ctx, data)
}
