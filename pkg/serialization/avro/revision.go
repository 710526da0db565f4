package avro

import (
	"encoding/hex"

	hambavro "github.com/hamba/avro/v2"
)

// RevisionResolver derives the revision component of a type identity from a
// schema. The revision travels inside the logical identity and is
// deliberately a different digest family from the CRC-64 wire fingerprint:
// the wire format stays stable even if the revision scheme changes.
type RevisionResolver interface {
	Revision(schema hambavro.Schema) (string, error)
}

type schemaRevisionResolver struct{}

// NewSchemaRevisionResolver derives the revision from the schema shape: the
// first 8 bytes of its SHA-256 fingerprint, lowercase hex. Identical schema
// text yields the identical revision in every process.
func NewSchemaRevisionResolver() RevisionResolver {
	return schemaRevisionResolver{}
}

func (schemaRevisionResolver) Revision(schema hambavro.Schema) (string, error) {
	digest := schema.Fingerprint()
	return hex.EncodeToString(digest[:8]), nil
}

type fixedRevisionResolver struct {
	revision string
}

// NewFixedRevisionResolver answers with a constant revision, for projects
// that version payloads by deployment rather than by schema shape.
func NewFixedRevisionResolver(revision string) RevisionResolver {
	return fixedRevisionResolver{revision: revision}
}

func (r fixedRevisionResolver) Revision(hambavro.Schema) (string, error) {
	return r.revision, nil
}
