// Package envelope implements the binary single-object encoding that frames
// an Avro payload with a magic marker and the writer schema's fingerprint:
//
//	[0xC3 0x01][8-byte CRC-64-AVRO fingerprint][Avro binary payload]
//
// The framing layer performs no schema lookups; resolving fingerprints to
// schemas is the schema store's job.
package envelope

import "fmt"

// Magic marks the single-object encoding. Any byte sequence not beginning
// with these two bytes is rejected before any fingerprint lookup.
var Magic = [2]byte{0xC3, 0x01}

// headerSize is magic plus fingerprint.
const headerSize = len(Magic) + FingerprintSize

// Parser extracts the schema fingerprint and payload from envelope bytes.
type Parser interface {
	// Parse splits envelope bytes into fingerprint and payload.
	// Expected format: [0xC3 0x01][fingerprint (8 bytes)][payload]
	Parse(data []byte) (Fingerprint, []byte, error)
}

// Builder assembles envelope bytes from a fingerprint and payload.
type Builder interface {
	// Build frames a payload: [0xC3 0x01][fingerprint (8 bytes)][payload]
	Build(fp Fingerprint, payload []byte) []byte
}

type singleObjectFormat struct{}

// NewSingleObjectFormat creates the parser and builder for the single-object
// encoding.
func NewSingleObjectFormat() (Parser, Builder) {
	f := &singleObjectFormat{}
	return f, f
}

func (f *singleObjectFormat) Parse(data []byte) (Fingerprint, []byte, error) {
	// Validate minimum length
	if len(data) < headerSize {
		return Fingerprint{}, nil, fmt.Errorf("%w: expected at least %d bytes, got %d", ErrInvalidFormat, headerSize, len(data))
	}

	// Check magic bytes
	if data[0] != Magic[0] || data[1] != Magic[1] {
		return Fingerprint{}, nil, fmt.Errorf("%w: bad magic bytes 0x%02x 0x%02x", ErrInvalidFormat, data[0], data[1])
	}

	var fp Fingerprint
	copy(fp[:], data[len(Magic):headerSize])
	return fp, data[headerSize:], nil
}

func (f *singleObjectFormat) Build(fp Fingerprint, payload []byte) []byte {
	result := make([]byte, headerSize+len(payload))
	result[0] = Magic[0]
	result[1] = Magic[1]
	copy(result[len(Magic):headerSize], fp[:])
	copy(result[headerSize:], payload)
	return result
}
