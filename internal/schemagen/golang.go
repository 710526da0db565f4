package schemagen

import (
	"fmt"
	"sort"

	"github.com/dave/jennifer/jen"
	"github.com/ettle/strcase"
	"github.com/hamba/avro/v2"
)

// goTypeName converts a named schema's short name into an exported Go type name.
// e.g. "order_created" -> "OrderCreated", "accountId" -> "AccountID"
func goTypeName(schema avro.NamedSchema) string {
	return strcase.ToGoPascal(schema.Name())
}

// goFieldName converts an Avro field name into an exported Go field name.
func goFieldName(name string) string {
	return strcase.ToGoPascal(name)
}

// collectNamedSchemas walks every source schema and gathers all named types
// (records, enums and fixeds) reachable from them, deduplicated by full name
// and sorted by full name. Fixed types carrying a decimal logical type map to
// *big.Rat and are not collected. It fails when two distinct Avro names would
// collide on the same Go type name.
func collectNamedSchemas(sources []*SourceSchema) ([]avro.NamedSchema, error) {
	found := make(map[string]avro.NamedSchema)

	var visit func(schema avro.Schema)
	visit = func(schema avro.Schema) {
		switch s := schema.(type) {
		case *avro.RefSchema:
			visit(s.Schema())
		case *avro.RecordSchema:
			if _, ok := found[s.FullName()]; ok {
				return
			}
			found[s.FullName()] = s
			for _, field := range s.Fields() {
				visit(field.Type())
			}
		case *avro.EnumSchema:
			found[s.FullName()] = s
		case *avro.FixedSchema:
			if isDecimal(s.Logical()) {
				return
			}
			found[s.FullName()] = s
		case *avro.ArraySchema:
			visit(s.Items())
		case *avro.MapSchema:
			visit(s.Values())
		case *avro.UnionSchema:
			for _, branch := range s.Types() {
				visit(branch)
			}
		}
	}

	for _, src := range sources {
		visit(src.Record)
	}

	named := make([]avro.NamedSchema, 0, len(found))
	for _, schema := range found {
		named = append(named, schema)
	}
	sort.Slice(named, func(i, j int) bool {
		return named[i].FullName() < named[j].FullName()
	})

	byGoName := make(map[string]string, len(named))
	for _, schema := range named {
		name := goTypeName(schema)
		if existing, ok := byGoName[name]; ok {
			return nil, fmt.Errorf("schemas %s and %s map to the same Go type name %s", existing, schema.FullName(), name)
		}
		byGoName[name] = schema.FullName()
	}

	return named, nil
}

// goType maps an Avro schema to the Go type used in generated structs,
// following hamba/avro conventions: logical timestamps and dates become
// time.Time, times become time.Duration, decimals become *big.Rat, nullable
// unions become pointers and any other union becomes any.
func goType(schema avro.Schema) *jen.Statement {
	switch s := schema.(type) {
	case *avro.RefSchema:
		return goType(s.Schema())
	case *avro.RecordSchema:
		return jen.Id(goTypeName(s))
	case *avro.EnumSchema:
		return jen.Id(goTypeName(s))
	case *avro.FixedSchema:
		if isDecimal(s.Logical()) {
			return jen.Op("*").Qual("math/big", "Rat")
		}
		return jen.Id(goTypeName(s))
	case *avro.ArraySchema:
		return jen.Index().Add(goType(s.Items()))
	case *avro.MapSchema:
		return jen.Map(jen.String()).Add(goType(s.Values()))
	case *avro.UnionSchema:
		return unionGoType(s)
	case *avro.PrimitiveSchema:
		return primitiveGoType(s)
	default:
		return jen.Any()
	}
}

// unionGoType maps a union schema to a Go type. Nullable two-branch unions map
// to the branch type itself when it is already nilable in Go, and to a pointer
// otherwise. Any other union maps to any.
func unionGoType(schema *avro.UnionSchema) *jen.Statement {
	if !schema.Nullable() {
		return jen.Any()
	}

	branch := nonNullBranch(schema)
	if branch == nil {
		return jen.Any()
	}

	if nilableGoType(branch) {
		return goType(branch)
	}
	return jen.Op("*").Add(goType(branch))
}

// nonNullBranch returns the single non-null branch of a nullable union.
func nonNullBranch(schema *avro.UnionSchema) avro.Schema {
	for _, branch := range schema.Types() {
		if branch.Type() != avro.Null {
			return branch
		}
	}
	return nil
}

// nilableGoType reports whether the schema maps to a Go type that can already
// hold nil, so a nullable union around it needs no extra pointer.
func nilableGoType(schema avro.Schema) bool {
	switch s := schema.(type) {
	case *avro.RefSchema:
		return nilableGoType(s.Schema())
	case *avro.ArraySchema, *avro.MapSchema:
		return true
	case *avro.FixedSchema:
		return isDecimal(s.Logical())
	case *avro.PrimitiveSchema:
		if s.Type() == avro.Bytes {
			// Both []byte and *big.Rat hold nil.
			return true
		}
		return false
	default:
		return false
	}
}

func primitiveGoType(schema *avro.PrimitiveSchema) *jen.Statement {
	if logical := schema.Logical(); logical != nil {
		switch logical.Type() {
		case avro.Date, avro.TimestampMillis, avro.TimestampMicros, avro.LocalTimestampMillis, avro.LocalTimestampMicros:
			return jen.Qual("time", "Time")
		case avro.TimeMillis, avro.TimeMicros:
			return jen.Qual("time", "Duration")
		case avro.Decimal:
			return jen.Op("*").Qual("math/big", "Rat")
		case avro.UUID:
			return jen.String()
		}
	}

	switch schema.Type() {
	case avro.Boolean:
		return jen.Bool()
	case avro.Int:
		return jen.Int()
	case avro.Long:
		return jen.Int64()
	case avro.Float:
		return jen.Float32()
	case avro.Double:
		return jen.Float64()
	case avro.Bytes:
		return jen.Index().Byte()
	case avro.String:
		return jen.String()
	default:
		return jen.Any()
	}
}

func isDecimal(logical avro.LogicalSchema) bool {
	return logical != nil && logical.Type() == avro.Decimal
}
