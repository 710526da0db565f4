// Package typemap maps logical schema names to the Go types and factories
// used to materialize them. The registry replaces reflection-driven class
// loading: it is populated explicitly at startup, and a missing entry is the
// natural unknown-type path rather than an error.
package typemap

import (
	"fmt"
	"reflect"

	hambavro "github.com/hamba/avro/v2"
)

// Binding ties a logical type name to its Avro schema and the Go type used
// to materialize payloads of that name.
type Binding struct {
	// Name is the schema full name (namespace.name); it doubles as the
	// logical type name on the wire.
	Name string
	// GoType is the Go struct type payloads of this name decode into.
	GoType reflect.Type
	// Factory returns a pointer to a fresh zero value for decoding.
	Factory func() any
	// SchemaJSON is the Avro schema in JSON format.
	SchemaJSON string

	// schema is the parsed Avro schema, populated by NewBinding.
	schema hambavro.Schema
}

// Schema returns the parsed Avro schema.
func (b Binding) Schema() hambavro.Schema {
	return b.schema
}

// NewBinding parses the schema and probes the factory. The schema must be a
// named Avro schema (its full name becomes the binding name) and the factory
// must return a non-nil pointer.
func NewBinding(schemaJSON string, factory func() any) (Binding, error) {
	if factory == nil {
		return Binding{}, fmt.Errorf("factory cannot be nil")
	}

	schema, err := hambavro.Parse(schemaJSON)
	if err != nil {
		return Binding{}, fmt.Errorf("failed to parse avro schema: %w", err)
	}
	named, ok := schema.(hambavro.NamedSchema)
	if !ok {
		return Binding{}, fmt.Errorf("schema is not a named schema (record/enum/fixed)")
	}

	probe := reflect.ValueOf(factory())
	if probe.Kind() != reflect.Ptr {
		return Binding{}, fmt.Errorf("factory for %s must return a pointer", named.FullName())
	}
	if probe.IsNil() {
		return Binding{}, fmt.Errorf("factory for %s returned a nil pointer", named.FullName())
	}

	return Binding{
		Name:       named.FullName(),
		GoType:     probe.Type().Elem(),
		Factory:    factory,
		SchemaJSON: schemaJSON,
		schema:     schema,
	}, nil
}
