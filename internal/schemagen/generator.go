package schemagen

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dave/jennifer/jen"
	"github.com/ettle/strcase"
	"github.com/hamba/avro/v2"
)

const typemapImport = "github.com/Sokol111/eventsourcing-commons/pkg/serialization/typemap"

// Generator orchestrates the code generation process.
type Generator struct {
	config *Config
	parser *Parser
}

// New creates a new Generator with the given configuration.
func New(cfg *Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.AbsolutePaths(); err != nil {
		return nil, err
	}

	return &Generator{
		config: cfg,
		parser: NewParser(cfg),
	}, nil
}

// Generate runs the complete code generation process.
func (g *Generator) Generate() error {
	if err := g.config.ValidateForGeneration(); err != nil {
		return err
	}

	g.log("Starting code generation...")

	g.log("Parsing schemas from %s", g.config.InputDir)
	sources, err := g.parser.ParseSchemas()
	if err != nil {
		return fmt.Errorf("failed to parse schemas: %w", err)
	}
	g.log("Found %d record schemas", len(sources))

	named, err := collectNamedSchemas(sources)
	if err != nil {
		return err
	}

	if err := g.createOutputDir(); err != nil {
		return err
	}

	if err := g.generateTypes(named); err != nil {
		return err
	}

	if err := g.generateSchemas(sources); err != nil {
		return err
	}

	if err := g.generateBindings(sources); err != nil {
		return err
	}

	g.log("✓ Code generation complete!")
	return nil
}

// Validate parses the schemas without generating code.
func (g *Generator) Validate() error {
	sources, err := g.parser.ParseSchemas()
	if err != nil {
		return err
	}

	if _, err := collectNamedSchemas(sources); err != nil {
		return err
	}

	for _, src := range sources {
		g.log("✓ %s (%s)", filepath.Base(src.FilePath), src.Record.FullName())
	}

	return nil
}

// createOutputDir creates the output directory.
func (g *Generator) createOutputDir() error {
	if err := os.MkdirAll(g.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", g.config.OutputDir, err)
	}

	return nil
}

// generateTypes generates the types.gen.go file with one Go type per named schema.
func (g *Generator) generateTypes(named []avro.NamedSchema) error {
	g.log("Generating Go types...")

	f := jen.NewFile(g.config.Package)
	f.HeaderComment("Code generated by schemagen. DO NOT EDIT.")

	for _, schema := range named {
		switch s := schema.(type) {
		case *avro.RecordSchema:
			emitRecord(f, s)
		case *avro.EnumSchema:
			emitEnum(f, s)
		case *avro.FixedSchema:
			emitFixed(f, s)
		}
	}

	outputFile := filepath.Join(g.config.OutputDir, "types.gen.go")
	if err := f.Save(outputFile); err != nil {
		return fmt.Errorf("failed to write types: %w", err)
	}

	g.log("  Created types.gen.go")
	return nil
}

func emitRecord(f *jen.File, schema *avro.RecordSchema) {
	name := goTypeName(schema)
	f.Commentf("%s is the Go representation of the Avro record %s.", name, schema.FullName())
	f.Type().Id(name).StructFunc(func(group *jen.Group) {
		for _, field := range schema.Fields() {
			group.Id(goFieldName(field.Name())).Add(goType(field.Type())).Tag(map[string]string{
				"avro": field.Name(),
				"json": field.Name(),
			})
		}
	})
	f.Line()
}

func emitEnum(f *jen.File, schema *avro.EnumSchema) {
	name := goTypeName(schema)
	f.Commentf("%s is the Go representation of the Avro enum %s.", name, schema.FullName())
	f.Type().Id(name).String()
	f.Line()

	f.Const().DefsFunc(func(group *jen.Group) {
		for _, symbol := range schema.Symbols() {
			group.Id(name + strcase.ToGoPascal(symbol)).Id(name).Op("=").Lit(symbol)
		}
	})
	f.Line()
}

func emitFixed(f *jen.File, schema *avro.FixedSchema) {
	name := goTypeName(schema)
	f.Commentf("%s is the Go representation of the Avro fixed %s (%d bytes).", name, schema.FullName(), schema.Size())
	f.Type().Id(name).Index(jen.Lit(schema.Size())).Byte()
	f.Line()
}

// generateSchemas generates the schemas.gen.go file with one canonical schema
// constant per source record.
func (g *Generator) generateSchemas(sources []*SourceSchema) error {
	g.log("Generating schema constants...")

	f := jen.NewFile(g.config.Package)
	f.HeaderComment("Code generated by schemagen. DO NOT EDIT.")

	f.Comment("Avro schemas in canonical form, as parsed from the source .avsc files.")
	f.Const().DefsFunc(func(group *jen.Group) {
		for _, src := range sources {
			group.Id(goTypeName(src.Record) + "Schema").Op("=").Lit(src.Record.String())
		}
	})

	outputFile := filepath.Join(g.config.OutputDir, "schemas.gen.go")
	if err := f.Save(outputFile); err != nil {
		return fmt.Errorf("failed to write schemas: %w", err)
	}

	g.log("  Created schemas.gen.go")
	return nil
}

// generateBindings generates the bindings.gen.go file with one binding
// constructor per source record plus an aggregated Bindings function.
func (g *Generator) generateBindings(sources []*SourceSchema) error {
	g.log("Generating bindings...")

	f := jen.NewFile(g.config.Package)
	f.HeaderComment("Code generated by schemagen. DO NOT EDIT.")

	f.ImportName(typemapImport, "typemap")

	for _, src := range sources {
		name := goTypeName(src.Record)
		f.Commentf("New%sBinding builds the schema binding for %s.", name, src.Record.FullName())
		f.Func().Id("New"+name+"Binding").Params().Params(jen.Qual(typemapImport, "Binding"), jen.Error()).Block(
			jen.Return(jen.Qual(typemapImport, "NewBinding").Call(
				jen.Id(name+"Schema"),
				jen.Func().Params().Any().Block(jen.Return(jen.Op("&").Id(name).Values())),
			)),
		)
		f.Line()
	}

	f.Comment("Bindings builds the schema bindings for every generated record type.")
	f.Func().Id("Bindings").Params().Params(jen.Index().Qual(typemapImport, "Binding"), jen.Error()).Block(
		jen.Id("builders").Op(":=").Index().Struct(
			jen.Id("name").String(),
			jen.Id("build").Func().Params().Params(jen.Qual(typemapImport, "Binding"), jen.Error()),
		).ValuesFunc(func(group *jen.Group) {
			for _, src := range sources {
				group.Values(jen.Lit(src.Record.FullName()), jen.Id("New"+goTypeName(src.Record)+"Binding"))
			}
		}),
		jen.Line(),
		jen.Id("bindings").Op(":=").Make(jen.Index().Qual(typemapImport, "Binding"), jen.Lit(0), jen.Len(jen.Id("builders"))),
		jen.For(jen.List(jen.Id("_"), jen.Id("b")).Op(":=").Range().Id("builders")).Block(
			jen.List(jen.Id("binding"), jen.Err()).Op(":=").Id("b").Dot("build").Call(),
			jen.If(jen.Err().Op("!=").Nil()).Block(
				jen.Return(jen.Nil(), jen.Qual("fmt", "Errorf").Call(jen.Lit("failed to build binding for %s: %w"), jen.Id("b").Dot("name"), jen.Err())),
			),
			jen.Id("bindings").Op("=").Append(jen.Id("bindings"), jen.Id("binding")),
		),
		jen.Return(jen.Id("bindings"), jen.Nil()),
	)

	outputFile := filepath.Join(g.config.OutputDir, "bindings.gen.go")
	if err := f.Save(outputFile); err != nil {
		return fmt.Errorf("failed to write bindings: %w", err)
	}

	g.log("  Created bindings.gen.go")
	return nil
}

// log prints a message if verbose mode is enabled.
func (g *Generator) log(format string, args ...any) {
	if g.config.Verbose {
		fmt.Printf(format+"\n", args...)
	}
}
