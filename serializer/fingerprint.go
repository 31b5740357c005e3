package serializer

import "encoding/base64"

// Fingerprint returns the deterministic textual form of a domain key
// used as a client-side map index (spec §3 Key fingerprint). Two key
// values the server would consider equal must serialize to identical
// bytes under ser, so serialize-then-encode is sufficient: this
// function never inspects key structure itself.
func Fingerprint(ser Serializer, key interface{}) (string, error) {
	raw, err := ser.Serialize(key)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// FingerprintBytes is used when the key has already been serialized
// (e.g. an inbound event's raw key bytes), avoiding a re-serialize
// round trip.
func FingerprintBytes(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}
