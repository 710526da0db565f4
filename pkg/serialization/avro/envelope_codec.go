package avro

import (
	"context"
	"fmt"

	hambavro "github.com/hamba/avro/v2"

	"github.com/Sokol111/eventsourcing-commons/pkg/serialization/envelope"
	"github.com/Sokol111/eventsourcing-commons/pkg/serialization/schemastore"
	"github.com/Sokol111/eventsourcing-commons/pkg/serialization/serde"
)

// EnvelopeCodec translates between generic records and single-object
// envelopes, keeping the schema store in the loop: encoding registers the
// writer schema, so a successful encode is always decodable by any process
// sharing the store.
type EnvelopeCodec struct {
	store   schemastore.Store
	parser  envelope.Parser
	builder envelope.Builder
}

func NewEnvelopeCodec(store schemastore.Store) *EnvelopeCodec {
	parser, builder := envelope.NewSingleObjectFormat()
	return &EnvelopeCodec{store: store, parser: parser, builder: builder}
}

// Encode frames a generic record as envelope bytes. Registration is
// idempotent for identical schema text; a fingerprint already bound to a
// different schema fails with ErrFingerprintCollision.
func (c *EnvelopeCodec) Encode(ctx context.Context, record *serde.GenericRecord) ([]byte, error) {
	schema := record.Schema()

	fp, err := c.store.Register(ctx, schema)
	if err != nil {
		return nil, err
	}

	payload, err := hambavro.Marshal(schema, record.Fields())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", record.FullName(), err)
	}
	return c.builder.Build(fp, payload), nil
}

// Decode parses envelope bytes, resolves the writer schema by fingerprint
// and materializes the payload as a generic record carrying that schema.
func (c *EnvelopeCodec) Decode(ctx context.Context, data []byte) (*serde.GenericRecord, error) {
	fp, payload, err := c.parser.Parse(data)
	if err != nil {
		return nil, err
	}

	schema, err := c.store.ByFingerprint(ctx, fp)
	if err != nil {
		return nil, err
	}

	record, err := serde.NewGenericRecord(schema)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if err := hambavro.Unmarshal(schema, payload, &fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", record.FullName(), err)
	}
	for name, value := range fields {
		if err := record.Set(name, value); err != nil {
			return nil, err
		}
	}
	return record, nil
}
