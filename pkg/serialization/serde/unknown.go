package serde

import "reflect"

// UnknownPayload stands in for a payload whose type identity could not be
// resolved to a registered Go type. It preserves the original serialized
// object so the caller can retry later (e.g. after the type is registered)
// or surface it diagnostically. Produced only during deserialization, never
// during serialization.
type UnknownPayload struct {
	// SerializedType is the identity that failed to resolve.
	SerializedType Type
	// Object is the serialized object exactly as received.
	Object Object
}

// UnknownRuntimeType is the runtime type reported for identities that cannot
// be resolved to a registered type.
var UnknownRuntimeType = reflect.TypeOf(UnknownPayload{})
