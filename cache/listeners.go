package cache

import (
	"context"

	"github.com/rlubke/coherence-go-client/filters"
	"github.com/rlubke/coherence-go-client/internal/event"
)

// MapListener receives notifications for inserted/updated/deleted
// entries (spec §4.5). The zero value registers for no event kinds;
// set the func fields you care about before calling AddMapListener or
// AddKeyListener.
type MapListener = event.Listener

// MapEvent describes one inserted/updated/deleted mutation delivered
// to a registered MapListener.
type MapEvent = event.MapEvent

// AddMapListener registers l for every entry matching filter
// (nil matches every entry), at the given detail level (spec §4.5
// registerFilterListener). Registering the same *MapListener again at
// the same lite value is idempotent.
func (c *Cache[K, V]) AddMapListener(ctx context.Context, l *MapListener, filter filters.Filter, lite bool) error {
	if err := c.checkNotDestroyed("Cache.AddMapListener"); err != nil {
		return err
	}
	return c.manager().RegisterFilterListener(ctx, l, filter, lite)
}

// RemoveMapListener unregisters l from filter's subscription.
func (c *Cache[K, V]) RemoveMapListener(ctx context.Context, l *MapListener, filter filters.Filter) error {
	return c.manager().RemoveFilterListener(ctx, l, filter)
}

// AddKeyListener registers l for mutations of one key (spec §4.5
// registerKeyListener).
func (c *Cache[K, V]) AddKeyListener(ctx context.Context, l *MapListener, key K, lite bool) error {
	if err := c.checkNotDestroyed("Cache.AddKeyListener"); err != nil {
		return err
	}
	keyBytes, err := c.serializer().Serialize(key)
	if err != nil {
		return err
	}
	return c.manager().RegisterKeyListener(ctx, l, keyBytes, lite)
}

// RemoveKeyListener unregisters l from key's subscription.
func (c *Cache[K, V]) RemoveKeyListener(ctx context.Context, l *MapListener, key K) error {
	keyBytes, err := c.serializer().Serialize(key)
	if err != nil {
		return err
	}
	return c.manager().RemoveKeyListener(ctx, l, keyBytes)
}
