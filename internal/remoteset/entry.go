package remoteset

import (
	"sync"

	"github.com/rlubke/coherence-go-client/serializer"
)

// Entry is the (keyBytes, valueBytes, serializer) triple of spec §3
// Named Cache Entry, with lazy one-shot deserialization for key and
// value.
type Entry[K any, V any] struct {
	ser       serializer.Serializer
	keyBytes  []byte
	valBytes  []byte

	keyOnce sync.Once
	key     K
	keyErr  error

	valOnce sync.Once
	val     V
	valErr  error
}

func newEntry[K any, V any](ser serializer.Serializer, keyBytes, valBytes []byte) *Entry[K, V] {
	return &Entry[K, V]{ser: ser, keyBytes: keyBytes, valBytes: valBytes}
}

// Key deserializes the entry's key exactly once.
func (e *Entry[K, V]) Key() (K, error) {
	e.keyOnce.Do(func() { e.keyErr = e.ser.Deserialize(e.keyBytes, &e.key) })
	return e.key, e.keyErr
}

// Value deserializes the entry's value exactly once.
func (e *Entry[K, V]) Value() (V, error) {
	e.valOnce.Do(func() { e.valErr = e.ser.Deserialize(e.valBytes, &e.val) })
	return e.val, e.valErr
}
