// Package schemagen provides functionality to generate Go code from Avro record schemas.
//
// The package reads .avsc files from an input directory, parses them with
// hamba/avro, and generates Go structs with avro tags, canonical schema
// constants, and typemap bindings ready for registration with the serializer.
//
// Basic usage:
//
//	cfg := &schemagen.Config{
//		InputDir:  "./schemas",
//		OutputDir: "./gen/events",
//		Package:   "events",
//	}
//
//	gen, err := schemagen.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := gen.Generate(); err != nil {
//		log.Fatal(err)
//	}
package schemagen

import (
	"fmt"
	"path/filepath"
)

// Config holds the configuration for the schema generator.
type Config struct {
	// InputDir is the directory containing .avsc schema files.
	// This is required.
	InputDir string

	// OutputDir is the directory where generated code will be written.
	// This is required for generation.
	OutputDir string

	// Package is the Go package name for generated code.
	// Defaults to "events" if not specified.
	Package string

	// Verbose enables detailed logging during generation.
	Verbose bool
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("input directory is required")
	}

	if c.Package == "" {
		c.Package = "events"
	}

	return nil
}

// ValidateForGeneration checks that the configuration is valid for code generation.
func (c *Config) ValidateForGeneration() error {
	if err := c.Validate(); err != nil {
		return err
	}

	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required for generation")
	}

	return nil
}

// AbsolutePaths converts relative paths to absolute paths.
func (c *Config) AbsolutePaths() error {
	var err error

	if c.InputDir != "" {
		c.InputDir, err = filepath.Abs(c.InputDir)
		if err != nil {
			return fmt.Errorf("failed to resolve input directory: %w", err)
		}
	}

	if c.OutputDir != "" {
		c.OutputDir, err = filepath.Abs(c.OutputDir)
		if err != nil {
			return fmt.Errorf("failed to resolve output directory: %w", err)
		}
	}

	return nil
}
