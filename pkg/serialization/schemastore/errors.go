package schemastore

import "errors"

var (
	// ErrSchemaNotFound is returned when a fingerprint or logical name has no
	// known schema.
	ErrSchemaNotFound = errors.New("schema not found")

	// ErrFingerprintCollision reports two distinct schemas digesting to the
	// same wire fingerprint. This is fatal ambiguity: the store refuses to
	// guess which schema a payload was written with.
	ErrFingerprintCollision = errors.New("schema fingerprint collision")
)
