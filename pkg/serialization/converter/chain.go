package converter

import (
	"context"
	"fmt"

	"github.com/Sokol111/eventsourcing-commons/pkg/serialization/serde"
)

// Chain is an immutable conversion router. Every representation kind seen at
// build time gets a dense node ID, and all pairwise routes are precomputed
// with a breadth-first search preferring the fewest hops and, among
// equal-length paths, the earliest-registered edges. No graph search happens
// at call time. Chains are safe for concurrent use.
type Chain struct {
	nodes map[serde.Representation]int
	edges []Edge

	// routes[src][dst] lists edge indices to apply in order. nil means no
	// path; the empty route is the identity conversion.
	routes [][][]int
}

func newChain(edges []Edge) *Chain {
	c := &Chain{
		nodes: make(map[serde.Representation]int),
		edges: append([]Edge(nil), edges...),
	}

	for _, edge := range c.edges {
		c.addNode(edge.Source)
		c.addNode(edge.Target)
	}

	// Adjacency in registration order, so BFS resolves equal-length ties in
	// favor of earlier registrations.
	outgoing := make([][]int, len(c.nodes))
	for i, edge := range c.edges {
		src := c.nodes[edge.Source]
		outgoing[src] = append(outgoing[src], i)
	}

	n := len(c.nodes)
	c.routes = make([][][]int, n)
	for start := 0; start < n; start++ {
		c.routes[start] = make([][]int, n)
		c.routes[start][start] = []int{}

		visited := make([]bool, n)
		visited[start] = true
		queue := []int{start}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			for _, edgeIdx := range outgoing[current] {
				next := c.nodes[c.edges[edgeIdx].Target]
				if visited[next] {
					continue
				}
				visited[next] = true
				route := make([]int, 0, len(c.routes[start][current])+1)
				route = append(route, c.routes[start][current]...)
				route = append(route, edgeIdx)
				c.routes[start][next] = route
				queue = append(queue, next)
			}
		}
	}

	return c
}

func (c *Chain) addNode(r serde.Representation) {
	if _, ok := c.nodes[r]; !ok {
		c.nodes[r] = len(c.nodes)
	}
}

// CanConvert reports whether a route (direct, composed, or identity) exists
// from source to target.
func (c *Chain) CanConvert(source, target serde.Representation) bool {
	if source == target {
		return true
	}
	return c.route(source, target) != nil
}

// Convert applies the precomputed route from source to target. The identity
// conversion returns the value unchanged. A missing route yields
// ErrNoConversionPath; errors from edge functions propagate with the failing
// hop named.
func (c *Chain) Convert(ctx context.Context, value any, source, target serde.Representation) (any, error) {
	if source == target {
		return value, nil
	}
	route := c.route(source, target)
	if route == nil {
		return nil, fmt.Errorf("%w: %s -> %s", ErrNoConversionPath, source, target)
	}

	current := value
	for _, edgeIdx := range route {
		edge := c.edges[edgeIdx]
		next, err := edge.Convert(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("converting %s -> %s: %w", edge.Source, edge.Target, err)
		}
		current = next
	}
	return current, nil
}

// Hops returns the number of edges on the route from source to target, or -1
// when no route exists. Intended for diagnostics.
func (c *Chain) Hops(source, target serde.Representation) int {
	if source == target {
		return 0
	}
	route := c.route(source, target)
	if route == nil {
		return -1
	}
	return len(route)
}

func (c *Chain) route(source, target serde.Representation) []int {
	src, ok := c.nodes[source]
	if !ok {
		return nil
	}
	dst, ok := c.nodes[target]
	if !ok {
		return nil
	}
	return c.routes[src][dst]
}
