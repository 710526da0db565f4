package envelope

import (
	"encoding/hex"
	"fmt"

	hambavro "github.com/hamba/avro/v2"
)

// FingerprintSize is the width of a schema fingerprint on the wire.
const FingerprintSize = 8

// Fingerprint is the CRC-64-AVRO digest of a schema's canonical form. It
// identifies the writer schema inside an envelope without embedding the
// schema text. Identical schema text always yields an identical fingerprint;
// a collision between distinct schemas is fatal ambiguity and is surfaced by
// the schema store, never resolved by guessing.
type Fingerprint [FingerprintSize]byte

// String renders the fingerprint as lowercase hex.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// FingerprintOf computes the wire fingerprint for a schema.
func FingerprintOf(schema hambavro.Schema) (Fingerprint, error) {
	digest, err := schema.FingerprintUsing(hambavro.CRC64Avro)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("failed to fingerprint schema: %w", err)
	}
	if len(digest) != FingerprintSize {
		return Fingerprint{}, fmt.Errorf("unexpected fingerprint length %d", len(digest))
	}

	var fp Fingerprint
	copy(fp[:], digest)
	return fp, nil
}
