package avro

import "errors"

var (
	// ErrUnsupportedConversion reports a target representation no conversion
	// route leads to.
	ErrUnsupportedConversion = errors.New("unsupported conversion")

	// ErrUnsupportedPayload reports a serialize input that is neither a
	// registered type nor one of the built-in payload shapes.
	ErrUnsupportedPayload = errors.New("unsupported payload")

	// ErrDeserialization wraps every failure on the deserialization path.
	// The cause is preserved: errors.Is finds both this sentinel and the
	// underlying error.
	ErrDeserialization = errors.New("deserialization failed")
)
