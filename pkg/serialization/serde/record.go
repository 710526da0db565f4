package serde

import (
	"fmt"

	hambavro "github.com/hamba/avro/v2"
)

// GenericRecord is a schema-carrying record with a dynamic field map. It is
// the intermediate representation between envelope bytes and typed structs,
// and the working shape for payload transformation pipelines (e.g. upcasters
// rewriting old event versions). A record is mutable while it is being
// populated and must be treated as read-only once handed to a converter.
type GenericRecord struct {
	schema *hambavro.RecordSchema
	fields map[string]any
}

// NewGenericRecord creates an empty record for the given schema.
// The schema must be an Avro record schema.
func NewGenericRecord(schema hambavro.Schema) (*GenericRecord, error) {
	record, ok := schema.(*hambavro.RecordSchema)
	if !ok {
		return nil, fmt.Errorf("generic record requires a record schema, got %s", schema.Type())
	}
	return &GenericRecord{
		schema: record,
		fields: make(map[string]any, len(record.Fields())),
	}, nil
}

// Schema returns the record's Avro schema.
func (r *GenericRecord) Schema() hambavro.Schema {
	return r.schema
}

// FullName returns the schema full name (namespace.name).
func (r *GenericRecord) FullName() string {
	return r.schema.FullName()
}

// Set stores a field value. The field must exist in the schema.
func (r *GenericRecord) Set(name string, value any) error {
	if !r.hasField(name) {
		return fmt.Errorf("schema %s has no field %q", r.FullName(), name)
	}
	r.fields[name] = value
	return nil
}

// Get returns a field value and whether it has been set.
func (r *GenericRecord) Get(name string) (any, bool) {
	value, ok := r.fields[name]
	return value, ok
}

// Fields returns a copy of the populated field map.
func (r *GenericRecord) Fields() map[string]any {
	out := make(map[string]any, len(r.fields))
	for name, value := range r.fields {
		out[name] = value
	}
	return out
}

func (r *GenericRecord) hasField(name string) bool {
	for _, field := range r.schema.Fields() {
		if field.Name() == name {
			return true
		}
	}
	return false
}
