package avro

import (
	"context"
	"fmt"

	"github.com/Sokol111/eventsourcing-commons/pkg/serialization/converter"
	"github.com/Sokol111/eventsourcing-commons/pkg/serialization/serde"
)

// schemaTypeSerializer carries a payload expressed in one native
// representation through the converter chain to the requested target. Two
// instances exist, one per schema-backed payload family: typed structs and
// generic records.
type schemaTypeSerializer struct {
	native serde.Representation
	chain  *converter.Chain
}

func (s schemaTypeSerializer) serialize(ctx context.Context, value any, identity serde.Type, target serde.Representation) (serde.Object, error) {
	if target == s.native {
		return serde.Object{Type: identity, Representation: target, Data: value}, nil
	}
	if !s.chain.CanConvert(s.native, target) {
		return serde.Object{}, fmt.Errorf("%w: %s -> %s", ErrUnsupportedConversion, s.native, target)
	}

	converted, err := s.chain.Convert(ctx, value, s.native, target)
	if err != nil {
		return serde.Object{}, err
	}
	return serde.Object{Type: identity, Representation: target, Data: converted}, nil
}
