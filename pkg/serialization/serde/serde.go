// Package serde defines the value shapes exchanged by the serialization
// engine: representation kinds, type identities, serialized objects,
// schema-carrying generic records, and the unknown-type marker.
package serde

// Representation identifies the shape a payload is expressed in while it
// moves through the converter graph. The set is open: callers may define
// their own kinds and register conversion edges for them.
type Representation string

const (
	// Typed is a concrete Go struct matching a registered schema.
	Typed Representation = "typed-record"

	// Generic is a schema-carrying record with a dynamic field map.
	Generic Representation = "generic-record"

	// Envelope is the binary single-object encoding:
	// magic bytes, schema fingerprint, Avro payload.
	Envelope Representation = "envelope"
)

// Object pairs a payload with its declared type identity and the
// representation kind of Data. Objects are transient: created and consumed
// within a single serialize or deserialize call, never persisted.
type Object struct {
	// Type is the logical identity of the payload.
	Type Type
	// Representation is the kind Data is expressed in.
	Representation Representation
	// Data holds the payload in the declared representation.
	Data any
}
