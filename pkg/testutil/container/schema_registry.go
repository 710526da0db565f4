// Package container provides testcontainers helpers for integration tests.
package container

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	defaultRedpandaImage  = "redpandadata/redpanda:v24.1.1"
	defaultStartupTimeout = 60 * time.Second
	schemaRegistryPort    = "8081/tcp"
	kafkaPort             = "9092/tcp"
)

// SchemaRegistry is a running Redpanda container exposing the Confluent
// schema registry HTTP API. Redpanda bundles a Kafka broker and a schema
// registry in a single process, which keeps integration tests down to one
// container.
type SchemaRegistry struct {
	container testcontainers.Container

	// URL is the base URL of the schema registry HTTP API.
	URL string
}

// SchemaRegistryOption configures the schema registry container.
type SchemaRegistryOption func(*schemaRegistryOptions)

type schemaRegistryOptions struct {
	image          string
	startupTimeout time.Duration
}

// WithImage overrides the Redpanda image to start.
func WithImage(image string) SchemaRegistryOption {
	return func(o *schemaRegistryOptions) {
		o.image = image
	}
}

// WithStartupTimeout overrides the deadline for the container to become ready.
func WithStartupTimeout(timeout time.Duration) SchemaRegistryOption {
	return func(o *schemaRegistryOptions) {
		o.startupTimeout = timeout
	}
}

// StartSchemaRegistry starts a Redpanda container and waits until both the
// broker and the schema registry answer.
func StartSchemaRegistry(ctx context.Context, opts ...SchemaRegistryOption) (*SchemaRegistry, error) {
	options := &schemaRegistryOptions{
		image:          defaultRedpandaImage,
		startupTimeout: defaultStartupTimeout,
	}
	for _, opt := range opts {
		opt(options)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        options.image,
			ExposedPorts: []string{schemaRegistryPort, kafkaPort},
			Cmd: []string{
				"redpanda", "start",
				"--mode", "dev-container",
				"--smp", "1",
				"--memory", "512M",
				"--reserve-memory", "0M",
				"--overprovisioned",
				"--node-id", "0",
				"--kafka-addr", "PLAINTEXT://0.0.0.0:9092",
				"--advertise-kafka-addr", "PLAINTEXT://localhost:9092",
				"--schema-registry-addr", "0.0.0.0:8081",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort(kafkaPort),
				wait.ForHTTP("/subjects").
					WithPort(schemaRegistryPort).
					WithStatusCodeMatcher(func(status int) bool { return status == http.StatusOK }),
			).WithDeadline(options.startupTimeout),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start redpanda container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx) //nolint:errcheck // best effort cleanup
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, schemaRegistryPort)
	if err != nil {
		_ = container.Terminate(ctx) //nolint:errcheck // best effort cleanup
		return nil, fmt.Errorf("failed to get schema registry port: %w", err)
	}

	return &SchemaRegistry{
		container: container,
		URL:       fmt.Sprintf("http://%s:%s", host, port.Port()),
	}, nil
}

// Terminate stops and removes the container.
func (s *SchemaRegistry) Terminate(ctx context.Context) error {
	if s.container == nil {
		return nil
	}
	return s.container.Terminate(ctx)
}

// KafkaBroker returns the address of the bundled Kafka broker.
func (s *SchemaRegistry) KafkaBroker(ctx context.Context) (string, error) {
	host, err := s.container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := s.container.MappedPort(ctx, kafkaPort)
	if err != nil {
		return "", fmt.Errorf("failed to get kafka port: %w", err)
	}

	return fmt.Sprintf("%s:%s", host, port.Port()), nil
}
