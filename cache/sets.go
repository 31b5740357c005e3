package cache

import (
	"github.com/rlubke/coherence-go-client/filters"
	"github.com/rlubke/coherence-go-client/internal/remoteset"
)

// Entry is one (key, value) pair yielded by an EntrySet iteration,
// with lazy one-shot deserialization of both key and value.
type Entry[K any, V any] = remoteset.Entry[K, V]

// KeySet returns a view over every key in the map (spec §4.3).
func (c *Cache[K, V]) KeySet() *remoteset.KeySet[K] {
	return remoteset.NewKeySet[K](c.sess.Client(), c.name, c.serializer())
}

// EntrySet returns a view over every entry in the map.
func (c *Cache[K, V]) EntrySet() *remoteset.EntrySet[K, V] {
	return remoteset.NewEntrySet[K, V](c.sess.Client(), c.name, c.serializer(), nil)
}

// EntrySetFiltered scopes the entry view to entries matching filter,
// iterated via the server-side Entries RPC rather than a full scan.
func (c *Cache[K, V]) EntrySetFiltered(filter filters.Filter) (*remoteset.EntrySet[K, V], error) {
	encoded, err := filter.Encode()
	if err != nil {
		return nil, err
	}
	return remoteset.NewEntrySet[K, V](c.sess.Client(), c.name, c.serializer(), encoded), nil
}

// ValueSet returns a view over every value in the map.
func (c *Cache[K, V]) ValueSet() *remoteset.ValueSet[V] {
	return remoteset.NewValueSet[V](c.sess.Client(), c.name, c.serializer(), nil)
}

// ValueSetFiltered scopes the value view to entries matching filter.
func (c *Cache[K, V]) ValueSetFiltered(filter filters.Filter) (*remoteset.ValueSet[V], error) {
	encoded, err := filter.Encode()
	if err != nil {
		return nil, err
	}
	return remoteset.NewValueSet[V](c.sess.Client(), c.name, c.serializer(), encoded), nil
}
