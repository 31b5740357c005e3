package listenergroup

import (
	"context"

	"github.com/rlubke/coherence-go-client/internal/factory"
	"github.com/rlubke/coherence-go-client/pb"
)

// KeyGroup is a Listener Group whose target is a single key. On
// unsubscribe it removes itself from the Events Manager's keyGroups
// index by fingerprint (spec §4.4).
type KeyGroup struct {
	base
	keyFingerprint string
}

// NewKeyGroup constructs a KeyGroup for cacheName/keyBytes, keyed in
// the owner's keyGroups index by keyFingerprint. onRemoved is called
// once the group becomes empty and has successfully unsubscribed.
func NewKeyGroup(subscriber Subscriber, cacheName, keyFingerprint string, keyBytes []byte, onRemoved func()) *KeyGroup {
	g := &KeyGroup{keyFingerprint: keyFingerprint}
	g.base = newBase(subscriber, cacheName, func(subscribe, lite bool) *pb.ListenerRequest {
		return factory.Subscribe(cacheName, factory.KeyTarget(keyBytes), subscribe, lite)
	})
	g.postUnsubscribe = func(ctx context.Context) error {
		if onRemoved != nil {
			onRemoved()
		}
		return nil
	}
	return g
}
