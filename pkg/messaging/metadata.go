// Package messaging carries the host-framework surface the serialization
// engine plugs into: event messages, their metadata bag, and context-driven
// metadata enrichment.
package messaging

import (
	"slices"

	"github.com/samber/lo"
)

// MetadataTypeName is the logical type identity metadata carries on the
// wire. Metadata bytes travel in the delegate codec's format, never
// envelope-framed, so the name is the only routing signal.
const MetadataTypeName = "messaging.Metadata"

// Metadata is a key-value bag attached to every message. Helpers copy on
// write: the receiver is never mutated, so metadata can be shared freely
// between messages.
type Metadata map[string]any

// With returns a copy with one entry added or replaced.
func (m Metadata) With(key string, value any) Metadata {
	out := make(Metadata, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out[key] = value
	return out
}

// Merged returns a copy with all entries of other added; other wins on key
// conflicts.
func (m Metadata) Merged(other Metadata) Metadata {
	out := make(Metadata, len(m)+len(other))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Value returns an entry and whether it exists.
func (m Metadata) Value(key string) (any, bool) {
	value, ok := m[key]
	return value, ok
}

// Keys returns the metadata keys in sorted order.
func (m Metadata) Keys() []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}
