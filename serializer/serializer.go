// Package serializer converts between domain values and the byte
// arrays the wire protocol carries. Implementations must be
// deterministic enough that fingerprinting a deserialized key equals
// fingerprinting the original (see Fingerprint below) — structured
// keys do not preserve Go identity across a round trip, so the client
// indexes on the serialized form instead.
package serializer

import "fmt"

// Serializer converts a domain value to and from bytes for one wire
// format. Instances are immutable and safe to share across every
// Cache obtained from a Session.
type Serializer interface {
	Format() string
	Serialize(v interface{}) ([]byte, error)
	Deserialize(data []byte, out interface{}) error
}

// ByFormat resolves a config-level format identifier (spec §6) to a
// concrete Serializer.
func ByFormat(name string) (Serializer, error) {
	switch name {
	case "", "json":
		return JSON{}, nil
	case "msgpack":
		return Msgpack{}, nil
	default:
		return nil, fmt.Errorf("serializer: unknown format %q", name)
	}
}
