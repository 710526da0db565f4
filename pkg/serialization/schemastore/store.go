// Package schemastore resolves and registers Avro schemas by wire
// fingerprint and by logical name. The in-memory store is the default; the
// Confluent-backed store adapts a Schema Registry cluster to the same
// contract.
package schemastore

import (
	"context"

	hambavro "github.com/hamba/avro/v2"

	"github.com/Sokol111/eventsourcing-commons/pkg/serialization/envelope"
)

// Resolver is the read side of the schema store: pure lookups, no mutation.
// Implementations are safe for concurrent use.
type Resolver interface {
	// ByFingerprint returns the schema whose canonical form digests to the
	// given wire fingerprint. Unknown fingerprints yield ErrSchemaNotFound;
	// fingerprints observed for two distinct schemas yield
	// ErrFingerprintCollision.
	ByFingerprint(ctx context.Context, fp envelope.Fingerprint) (hambavro.Schema, error)

	// ByName returns the current schema for a logical type name (the schema
	// full name). Unknown names yield ErrSchemaNotFound.
	ByName(ctx context.Context, fullName string) (hambavro.Schema, error)
}

// Store adds registration and listing on top of Resolver.
type Store interface {
	Resolver

	// Register makes a schema resolvable and returns its wire fingerprint.
	// Registering identical schema text again is a no-op; a fingerprint
	// already bound to different schema text fails with
	// ErrFingerprintCollision.
	Register(ctx context.Context, schema hambavro.Schema) (envelope.Fingerprint, error)

	// Schemas lists all known schemas.
	Schemas(ctx context.Context) ([]hambavro.Schema, error)
}

// schemaFullName names a schema for diagnostics.
func schemaFullName(schema hambavro.Schema) string {
	if named, ok := schema.(hambavro.NamedSchema); ok {
		return named.FullName()
	}
	return string(schema.Type())
}

// sameSchema reports whether two schemas share canonical form, compared via
// their SHA-256 fingerprints so a CRC-64 wire collision cannot mask a
// difference.
func sameSchema(a, b hambavro.Schema) bool {
	return a.Fingerprint() == b.Fingerprint()
}
