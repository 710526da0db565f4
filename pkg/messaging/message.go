package messaging

import (
	"time"

	"github.com/google/uuid"
)

// EventMessage is the unit a serializer is asked to encode: a payload plus
// identity, timestamp and metadata. Name and Revision mirror the payload's
// serialized type and are filled in by the hosting layer.
type EventMessage struct {
	ID        string
	Name      string
	Revision  string
	Timestamp time.Time
	Payload   any
	Metadata  Metadata
}

// NewEventMessage wraps a payload with a fresh UUID, a UTC timestamp and
// empty metadata.
func NewEventMessage(payload any) EventMessage {
	return EventMessage{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Payload:   payload,
		Metadata:  Metadata{},
	}
}

// WithMetadata returns a copy of the message with its metadata replaced.
func (m EventMessage) WithMetadata(meta Metadata) EventMessage {
	m.Metadata = meta
	return m
}

// AndMetadata returns a copy of the message with the entries merged into
// its metadata.
func (m EventMessage) AndMetadata(meta Metadata) EventMessage {
	m.Metadata = m.Metadata.Merged(meta)
	return m
}
