// Package main provides the schemagen CLI tool for generating Go code from Avro record schemas.
//
// Usage:
//
//	schemagen generate --input ./schemas --output ./gen/events --package events
//
// The tool reads .avsc files and generates Go structs with avro tags, canonical
// schema constants, and typemap bindings ready for serializer registration.
package main

import (
	"fmt"
	"os"

	"github.com/Sokol111/eventsourcing-commons/internal/schemagen"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "schemagen",
		Short:   "Generate Go code from Avro record schemas",
		Long:    `schemagen generates Go types, schema constants, and serializer bindings from Avro record schemas.`,
		Version: version,
	}

	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newValidateCmd())

	return rootCmd
}

func newGenerateCmd() *cobra.Command {
	cfg := &schemagen.Config{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate Go code from Avro record schemas",
		Long: `Generate Go code from Avro record schemas.

This command reads .avsc files from the input directory and generates
Go structs with avro tags, canonical schema constants, and typemap
bindings for serializer registration.

Example:
  schemagen generate --input ./schemas --output ./gen/events --package events`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cfg)
		},
	}

	// Required flags
	cmd.Flags().StringVarP(&cfg.InputDir, "input", "i", "", "Directory containing .avsc schema files (required)")
	cmd.Flags().StringVarP(&cfg.OutputDir, "output", "o", "", "Output directory for generated code (required)")

	// Optional flags
	cmd.Flags().StringVarP(&cfg.Package, "package", "p", "events", "Go package name for generated code")
	cmd.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable verbose output")

	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func newValidateCmd() *cobra.Command {
	cfg := &schemagen.Config{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate Avro record schemas without generating code",
		Long: `Validate Avro record schemas without generating code.

This command parses every .avsc file in the input directory and reports
the first schema that fails to parse, is not a record, or collides with
another schema.

Example:
  schemagen validate --input ./schemas --verbose`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cfg)
		},
	}

	cmd.Flags().StringVarP(&cfg.InputDir, "input", "i", "", "Directory containing .avsc schema files (required)")
	cmd.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable verbose output")

	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runGenerate(cfg *schemagen.Config) error {
	gen, err := schemagen.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}

	if err := gen.Generate(); err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	return nil
}

func runValidate(cfg *schemagen.Config) error {
	gen, err := schemagen.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}

	if err := gen.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Println("schemas are valid")
	return nil
}
