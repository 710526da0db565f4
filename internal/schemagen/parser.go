package schemagen

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hamba/avro/v2"
)

// SourceSchema is a parsed top-level record schema together with the file it came from.
type SourceSchema struct {
	// FilePath is the absolute path of the .avsc file.
	FilePath string

	// Record is the parsed top-level record schema.
	Record *avro.RecordSchema
}

// Parser reads and parses Avro record schemas from the input directory.
type Parser struct {
	config *Config
}

// NewParser creates a new Parser with the given configuration.
func NewParser(cfg *Config) *Parser {
	return &Parser{config: cfg}
}

// ParseSchemas reads every .avsc file in the input directory and parses it as a
// top-level record schema. Files are read in sorted filename order, so named
// types defined in one file may be referenced by name from later files. The
// returned schemas are sorted by full name.
func (p *Parser) ParseSchemas() ([]*SourceSchema, error) {
	pattern := filepath.Join(p.config.InputDir, "*.avsc")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list schema files: %w", err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no .avsc files found in %s", p.config.InputDir)
	}

	sort.Strings(files)

	// A fresh cache per run keeps named-type definitions scoped to this
	// invocation while still letting files reference each other.
	cache := &avro.SchemaCache{}

	seen := make(map[string]string, len(files))
	schemas := make([]*SourceSchema, 0, len(files))

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema file %s: %w", file, err)
		}

		parsed, err := avro.ParseWithCache(string(data), "", cache)
		if err != nil {
			return nil, fmt.Errorf("failed to parse schema file %s: %w", file, err)
		}

		record, ok := parsed.(*avro.RecordSchema)
		if !ok {
			return nil, fmt.Errorf("schema file %s must contain a record schema at the top level, got %s", file, parsed.Type())
		}

		if existing, dup := seen[record.FullName()]; dup {
			return nil, fmt.Errorf("duplicate schema %s defined in %s and %s", record.FullName(), existing, file)
		}
		seen[record.FullName()] = file

		schemas = append(schemas, &SourceSchema{
			FilePath: file,
			Record:   record,
		})
	}

	sort.Slice(schemas, func(i, j int) bool {
		return schemas[i].Record.FullName() < schemas[j].Record.FullName()
	})

	return schemas, nil
}
