package messaging

import (
	"context"

	"github.com/Sokol111/eventsourcing-commons/pkg/observability/tracing"
)

// Metadata keys stamped by Enrich.
const (
	MetadataKeyTraceID   = "trace_id"
	MetadataKeySpanID    = "span_id"
	MetadataKeyMessageID = "message_id"
)

// Enrich stamps the active trace context and the message ID into the
// message metadata. Without an active span the trace keys are left out.
func Enrich(ctx context.Context, msg EventMessage) EventMessage {
	meta := msg.Metadata
	if traceID := tracing.TraceID(ctx); traceID != "" {
		meta = meta.With(MetadataKeyTraceID, traceID).With(MetadataKeySpanID, tracing.SpanID(ctx))
	}
	meta = meta.With(MetadataKeyMessageID, msg.ID)
	return msg.WithMetadata(meta)
}
