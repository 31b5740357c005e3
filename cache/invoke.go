package cache

import (
	"context"
	"io"

	"github.com/rlubke/coherence-go-client/aggregators"
	"github.com/rlubke/coherence-go-client/filters"
	"github.com/rlubke/coherence-go-client/internal/factory"
	"github.com/rlubke/coherence-go-client/internal/wire"
	"github.com/rlubke/coherence-go-client/processors"
)

// Invoke runs processor against key's entry server-side and
// deserializes its result into the returned value (spec §1 scope
// note: processors execute entirely server-side).
func (c *Cache[K, V]) Invoke(ctx context.Context, key K, processor processors.Processor) (result V, err error) {
	var zero V
	if err := c.checkNotDestroyed("Cache.Invoke"); err != nil {
		return zero, err
	}
	keyBytes, err := c.serializer().Serialize(key)
	if err != nil {
		return zero, wire.Newf(wire.KindProtocol, "Cache.Invoke", err)
	}
	procBytes, err := processor.Encode()
	if err != nil {
		return zero, wire.Newf(wire.KindProtocol, "Cache.Invoke", err)
	}
	resp, err := c.sess.Client().Invoke(ctx, factory.Invoke(c.name, keyBytes, procBytes))
	if err != nil {
		return zero, wire.Newf(wire.KindTransportFailure, "Cache.Invoke", err)
	}
	var v V
	if err := c.serializer().Deserialize(resp.Result, &v); err != nil {
		return zero, wire.Newf(wire.KindProtocol, "Cache.Invoke", err)
	}
	return v, nil
}

// InvokeAll runs processor against every entry matching filter (or,
// if keys is non-empty, against exactly those keys), draining the
// per-entry result stream into a map keyed by the deserialized key.
// A nil filter with an empty keys targets the whole map.
func (c *Cache[K, V]) InvokeAll(ctx context.Context, filter filters.Filter, keys []K, processor processors.Processor) (map[K]V, error) {
	if err := c.checkNotDestroyed("Cache.InvokeAll"); err != nil {
		return nil, err
	}
	var filterBytes []byte
	if filter != nil {
		var err error
		filterBytes, err = filter.Encode()
		if err != nil {
			return nil, wire.Newf(wire.KindProtocol, "Cache.InvokeAll", err)
		}
	}
	keyBytesList, err := c.serializeKeys(keys)
	if err != nil {
		return nil, err
	}
	procBytes, err := processor.Encode()
	if err != nil {
		return nil, wire.Newf(wire.KindProtocol, "Cache.InvokeAll", err)
	}

	stream, err := c.sess.Client().InvokeAll(ctx, factory.InvokeAll(c.name, filterBytes, keyBytesList, procBytes))
	if err != nil {
		return nil, wire.Newf(wire.KindTransportFailure, "Cache.InvokeAll", err)
	}

	results := make(map[K]V)
	for {
		entry, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, wire.Newf(wire.KindTransportFailure, "Cache.InvokeAll", err)
		}
		var k K
		if err := c.serializer().Deserialize(entry.Key, &k); err != nil {
			return nil, wire.Newf(wire.KindProtocol, "Cache.InvokeAll", err)
		}
		var v V
		if err := c.serializer().Deserialize(entry.Result, &v); err != nil {
			return nil, wire.Newf(wire.KindProtocol, "Cache.InvokeAll", err)
		}
		results[k] = v
	}
	return results, nil
}

// Aggregate runs aggregator over every entry matching filter (or,
// if keys is non-empty, over exactly those keys) and deserializes its
// single server-computed result into out.
func (c *Cache[K, V]) Aggregate(ctx context.Context, filter filters.Filter, keys []K, aggregator aggregators.Aggregator, out interface{}) error {
	if err := c.checkNotDestroyed("Cache.Aggregate"); err != nil {
		return err
	}
	var filterBytes []byte
	if filter != nil {
		var err error
		filterBytes, err = filter.Encode()
		if err != nil {
			return wire.Newf(wire.KindProtocol, "Cache.Aggregate", err)
		}
	}
	keyBytesList, err := c.serializeKeys(keys)
	if err != nil {
		return err
	}
	aggBytes, err := aggregator.Encode()
	if err != nil {
		return wire.Newf(wire.KindProtocol, "Cache.Aggregate", err)
	}
	resp, err := c.sess.Client().Aggregate(ctx, factory.Aggregate(c.name, filterBytes, keyBytesList, aggBytes))
	if err != nil {
		return wire.Newf(wire.KindTransportFailure, "Cache.Aggregate", err)
	}
	if err := c.serializer().Deserialize(resp.Result, out); err != nil {
		return wire.Newf(wire.KindProtocol, "Cache.Aggregate", err)
	}
	return nil
}

func (c *Cache[K, V]) serializeKeys(keys []K) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	out := make([][]byte, len(keys))
	for i, k := range keys {
		b, err := c.serializer().Serialize(k)
		if err != nil {
			return nil, wire.Newf(wire.KindProtocol, "Cache.serializeKeys", err)
		}
		out[i] = b
	}
	return out, nil
}
