// Package converter implements a chaining converter graph between payload
// representations. Edges are collected by a Builder and frozen into an
// immutable Chain with precomputed multi-hop routes.
package converter

import (
	"context"
	"fmt"

	"github.com/Sokol111/eventsourcing-commons/pkg/serialization/serde"
)

// ConvertFunc transforms a value from one representation into another. The
// context is passed through from Chain.Convert for edges that do I/O, such
// as schema lookups. Functions must not mutate the Chain they are registered
// with.
type ConvertFunc func(ctx context.Context, value any) (any, error)

// Edge is a directed conversion capability between two representation kinds.
type Edge struct {
	Source  serde.Representation
	Target  serde.Representation
	Convert ConvertFunc
}

// Builder collects conversion edges before freezing them into a Chain.
// Registration is not safe for concurrent use: configure the builder fully,
// call Build once, then share the resulting Chain.
type Builder struct {
	edges []Edge
}

// NewBuilder creates an empty edge collector.
func NewBuilder() *Builder {
	return &Builder{}
}

// Register adds a directed edge. Registering a second edge for an identical
// (source, target) pair replaces the earlier one in place; edges are never
// dropped implicitly.
func (b *Builder) Register(source, target serde.Representation, fn ConvertFunc) *Builder {
	for i := range b.edges {
		if b.edges[i].Source == source && b.edges[i].Target == target {
			b.edges[i].Convert = fn
			return b
		}
	}
	b.edges = append(b.edges, Edge{Source: source, Target: target, Convert: fn})
	return b
}

// RegisterEdges adds a batch of edges in order.
func (b *Builder) RegisterEdges(edges ...Edge) *Builder {
	for _, edge := range edges {
		b.Register(edge.Source, edge.Target, edge.Convert)
	}
	return b
}

// Build validates the collected edges and computes the routing table.
// The builder may be reused afterwards; the returned Chain is detached.
func (b *Builder) Build() (*Chain, error) {
	for _, edge := range b.edges {
		if edge.Source == "" || edge.Target == "" {
			return nil, fmt.Errorf("conversion edge %q -> %q: representation must not be empty", edge.Source, edge.Target)
		}
		if edge.Source == edge.Target {
			return nil, fmt.Errorf("conversion edge %s -> %s: source and target must differ", edge.Source, edge.Target)
		}
		if edge.Convert == nil {
			return nil, fmt.Errorf("conversion edge %s -> %s has no convert function", edge.Source, edge.Target)
		}
	}
	return newChain(b.edges), nil
}
