// Package cache implements the Named Map Facade (spec §4.6): the
// single object an application holds, exposing get/put/remove/
// invoke/addListener/entrySet/... and composing the Request Factory,
// Page Advancer, Remote Set Views, and Events Manager. Its lifetime
// dominates that of its Events Manager (spec §4.6), which is why the
// manager is constructed lazily on first use rather than eagerly in
// New.
//
// Each data operation serializes its arguments, builds its request
// with internal/factory, and calls the session's NamedCacheClient
// directly; there is no shared call helper between the operations.
package cache

import (
	"errors"
	"sync"

	"github.com/rlubke/coherence-go-client/internal/eventsmanager"
	"github.com/rlubke/coherence-go-client/internal/wire"
	"github.com/rlubke/coherence-go-client/serializer"
	"github.com/rlubke/coherence-go-client/session"
)

var errDestroyed = errors.New("cache: map destroyed")

// Cache is a NamedMap/NamedCache facade bound to one remote map name.
// K and V are the application's key and value types; the wire
// protocol only ever sees their serialized bytes.
type Cache[K any, V any] struct {
	sess *session.Session
	name string

	mgrOnce sync.Once
	mgrMu   sync.Mutex
	mgr     *eventsmanager.Manager

	destroyedMu sync.Mutex
	destroyed   bool
}

// New returns a facade over the remote map named name, using sess's
// shared connection and serializer.
func New[K any, V any](sess *session.Session, name string) *Cache[K, V] {
	return &Cache[K, V]{sess: sess, name: name}
}

// Name returns the remote map name this facade is bound to.
func (c *Cache[K, V]) Name() string { return c.name }

func (c *Cache[K, V]) serializer() serializer.Serializer { return c.sess.Serializer() }

// manager returns this Cache's Events Manager, constructing it on
// first use (spec §3: "the duplex stream is created on the first
// addListener on the Events Manager"). A background goroutine watches
// the manager's Lifecycle channel so a server-initiated DESTROYED
// notification marks this facade destroyed even if the caller never
// called Destroy itself.
func (c *Cache[K, V]) manager() *eventsmanager.Manager {
	c.mgrOnce.Do(func() {
		mgr := eventsmanager.New(c.sess.Client(), c.name, c.serializer(), c.sess.Logger(), c.sess.LogMinLevel())
		c.mgrMu.Lock()
		c.mgr = mgr
		c.mgrMu.Unlock()
		go c.watchLifecycle(mgr)
	})
	c.mgrMu.Lock()
	defer c.mgrMu.Unlock()
	return c.mgr
}

func (c *Cache[K, V]) watchLifecycle(mgr *eventsmanager.Manager) {
	for l := range mgr.Lifecycle() {
		if l == eventsmanager.LifecycleDestroyed {
			c.destroyedMu.Lock()
			c.destroyed = true
			c.destroyedMu.Unlock()
		}
	}
}

// Close releases this facade's Events Manager, cancelling its duplex
// stream and rejecting any outstanding subscription acks. It does not
// close the underlying Session, which may be shared by other Caches.
func (c *Cache[K, V]) Close() error {
	c.mgrMu.Lock()
	mgr := c.mgr
	c.mgrMu.Unlock()
	if mgr == nil {
		return nil
	}
	return mgr.Close()
}

func (c *Cache[K, V]) checkNotDestroyed(op string) error {
	c.destroyedMu.Lock()
	destroyed := c.destroyed
	c.destroyedMu.Unlock()
	if destroyed {
		return wire.Newf(wire.KindPreconditionFailure, op, errDestroyed)
	}
	return nil
}
