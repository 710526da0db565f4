package serde

// EmptyTypeName is the logical name reserved for the empty-type sentinel.
const EmptyTypeName = "empty"

// Type identifies a payload's logical type on the wire: an Avro schema full
// name plus an optional revision tag. Type is an immutable value; two
// identities are equal iff both fields match.
type Type struct {
	// Name is the logical type name (namespace.name for schema-backed types).
	Name string
	// Revision is an optional version-compatibility tag, independent of the
	// binary schema fingerprint.
	Revision string
}

// NewType creates a type identity from a logical name and revision.
func NewType(name, revision string) Type {
	return Type{Name: name, Revision: revision}
}

// EmptyType returns the sentinel identity used for nil payloads.
func EmptyType() Type {
	return Type{Name: EmptyTypeName}
}

// IsEmpty reports whether the identity is the empty-type sentinel.
func (t Type) IsEmpty() bool {
	return t.Name == EmptyTypeName
}

// String renders "name" or "name@revision".
func (t Type) String() string {
	if t.Revision == "" {
		return t.Name
	}
	return t.Name + "@" + t.Revision
}
