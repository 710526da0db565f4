// Package codec provides self-describing byte codecs for payloads that do
// not travel as Avro records, such as message metadata.
package codec

type Codec interface {
	// Name identifies the wire format, e.g. "msgpack" or "json".
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}
