package cache

import (
	"context"

	"github.com/rlubke/coherence-go-client/internal/factory"
	"github.com/rlubke/coherence-go-client/internal/wire"
)

// Get reads key. The returned bool reports whether the entry was
// present; if false, value is the zero value of V.
func (c *Cache[K, V]) Get(ctx context.Context, key K) (value V, present bool, err error) {
	var zero V
	if err := c.checkNotDestroyed("Cache.Get"); err != nil {
		return zero, false, err
	}
	keyBytes, err := c.serializer().Serialize(key)
	if err != nil {
		return zero, false, wire.Newf(wire.KindProtocol, "Cache.Get", err)
	}
	resp, err := c.sess.Client().Get(ctx, factory.Get(c.name, keyBytes))
	if err != nil {
		return zero, false, wire.Newf(wire.KindTransportFailure, "Cache.Get", err)
	}
	if !resp.Present {
		return zero, false, nil
	}
	var v V
	if err := c.serializer().Deserialize(resp.Value, &v); err != nil {
		return zero, false, wire.Newf(wire.KindProtocol, "Cache.Get", err)
	}
	return v, true, nil
}

// Put writes key/value, returning the previous value and whether one
// was present (spec round-trip law: put(k, v) then get(k) returns v).
func (c *Cache[K, V]) Put(ctx context.Context, key K, value V) (previous V, present bool, err error) {
	var zero V
	if err := c.checkNotDestroyed("Cache.Put"); err != nil {
		return zero, false, err
	}
	keyBytes, err := c.serializer().Serialize(key)
	if err != nil {
		return zero, false, wire.Newf(wire.KindProtocol, "Cache.Put", err)
	}
	valBytes, err := c.serializer().Serialize(value)
	if err != nil {
		return zero, false, wire.Newf(wire.KindProtocol, "Cache.Put", err)
	}
	resp, err := c.sess.Client().Put(ctx, factory.Put(c.name, keyBytes, valBytes, 0))
	if err != nil {
		return zero, false, wire.Newf(wire.KindTransportFailure, "Cache.Put", err)
	}
	if !resp.Present {
		return zero, false, nil
	}
	var prev V
	if err := c.serializer().Deserialize(resp.PreviousValue, &prev); err != nil {
		return zero, false, wire.Newf(wire.KindProtocol, "Cache.Put", err)
	}
	return prev, true, nil
}

// Remove removes key, returning the removed value and whether one
// was present.
func (c *Cache[K, V]) Remove(ctx context.Context, key K) (previous V, present bool, err error) {
	var zero V
	if err := c.checkNotDestroyed("Cache.Remove"); err != nil {
		return zero, false, err
	}
	keyBytes, err := c.serializer().Serialize(key)
	if err != nil {
		return zero, false, wire.Newf(wire.KindProtocol, "Cache.Remove", err)
	}
	resp, err := c.sess.Client().Remove(ctx, factory.Remove(c.name, keyBytes))
	if err != nil {
		return zero, false, wire.Newf(wire.KindTransportFailure, "Cache.Remove", err)
	}
	if !resp.Present {
		return zero, false, nil
	}
	var prev V
	if err := c.serializer().Deserialize(resp.PreviousValue, &prev); err != nil {
		return zero, false, wire.Newf(wire.KindProtocol, "Cache.Remove", err)
	}
	return prev, true, nil
}

// RemoveMapping removes the (key, value) pair only if both match the
// server's current entry.
func (c *Cache[K, V]) RemoveMapping(ctx context.Context, key K, value V) (bool, error) {
	if err := c.checkNotDestroyed("Cache.RemoveMapping"); err != nil {
		return false, err
	}
	keyBytes, err := c.serializer().Serialize(key)
	if err != nil {
		return false, wire.Newf(wire.KindProtocol, "Cache.RemoveMapping", err)
	}
	valBytes, err := c.serializer().Serialize(value)
	if err != nil {
		return false, wire.Newf(wire.KindProtocol, "Cache.RemoveMapping", err)
	}
	resp, err := c.sess.Client().RemoveMapping(ctx, factory.RemoveMapping(c.name, keyBytes, valBytes))
	if err != nil {
		return false, wire.Newf(wire.KindTransportFailure, "Cache.RemoveMapping", err)
	}
	return resp.Removed, nil
}

func (c *Cache[K, V]) ContainsKey(ctx context.Context, key K) (bool, error) {
	if err := c.checkNotDestroyed("Cache.ContainsKey"); err != nil {
		return false, err
	}
	keyBytes, err := c.serializer().Serialize(key)
	if err != nil {
		return false, wire.Newf(wire.KindProtocol, "Cache.ContainsKey", err)
	}
	resp, err := c.sess.Client().ContainsKey(ctx, factory.ContainsKey(c.name, keyBytes))
	if err != nil {
		return false, wire.Newf(wire.KindTransportFailure, "Cache.ContainsKey", err)
	}
	return resp.Present, nil
}

func (c *Cache[K, V]) Size(ctx context.Context) (int64, error) {
	if err := c.checkNotDestroyed("Cache.Size"); err != nil {
		return 0, err
	}
	resp, err := c.sess.Client().Size(ctx, factory.Size(c.name))
	if err != nil {
		return 0, wire.Newf(wire.KindTransportFailure, "Cache.Size", err)
	}
	return resp.Size, nil
}

func (c *Cache[K, V]) Clear(ctx context.Context) error {
	if err := c.checkNotDestroyed("Cache.Clear"); err != nil {
		return err
	}
	_, err := c.sess.Client().Clear(ctx, factory.Clear(c.name))
	if err != nil {
		return wire.Newf(wire.KindTransportFailure, "Cache.Clear", err)
	}
	return nil
}

// Truncate removes all entries without generating events, and
// without going through the normal remove path server-side.
func (c *Cache[K, V]) Truncate(ctx context.Context) error {
	if err := c.checkNotDestroyed("Cache.Truncate"); err != nil {
		return err
	}
	_, err := c.sess.Client().Truncate(ctx, factory.Truncate(c.name))
	if err != nil {
		return wire.Newf(wire.KindTransportFailure, "Cache.Truncate", err)
	}
	return nil
}

// Destroy releases the remote map entirely. After Destroy, every
// subsequent operation on this facade fails with PreconditionFailure
// (spec scenario 5), matching what a server-initiated DESTROYED
// lifecycle message also does.
func (c *Cache[K, V]) Destroy(ctx context.Context) error {
	if err := c.checkNotDestroyed("Cache.Destroy"); err != nil {
		return err
	}
	_, err := c.sess.Client().Destroy(ctx, factory.Destroy(c.name))
	if err != nil {
		return wire.Newf(wire.KindTransportFailure, "Cache.Destroy", err)
	}
	c.destroyedMu.Lock()
	c.destroyed = true
	c.destroyedMu.Unlock()
	return nil
}
