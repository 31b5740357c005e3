package listenergroup

import (
	"context"

	"github.com/rlubke/coherence-go-client/internal/factory"
	"github.com/rlubke/coherence-go-client/internal/wire"
	"github.com/rlubke/coherence-go-client/pb"
)

// FilterGroup is a Listener Group whose target is a filter
// expression. On subscribe it registers its client-assigned FilterID
// in the owner's filterIdIndex (echoed back by the server per spec
// §4.1); on unsubscribe it removes both the filterIdIndex entry and
// the filterGroups entry (spec §4.4).
type FilterGroup struct {
	base
	filterIdentity string
	filterID       wire.FilterID
}

// NewFilterGroup constructs a FilterGroup for cacheName/filterBytes,
// keyed in the owner's filterGroups index by filterIdentity (the
// filter's structural identity) and in filterIdIndex by filterID
// once subscribed. onSubscribed/onRemoved maintain those indexes.
func NewFilterGroup(
	subscriber Subscriber,
	cacheName, filterIdentity string,
	filterBytes []byte,
	filterID wire.FilterID,
	onSubscribed func(id wire.FilterID),
	onRemoved func(id wire.FilterID),
) *FilterGroup {
	g := &FilterGroup{filterIdentity: filterIdentity, filterID: filterID}
	g.base = newBase(subscriber, cacheName, func(subscribe, lite bool) *pb.ListenerRequest {
		return factory.Subscribe(cacheName, factory.FilterTarget(filterBytes, int32(filterID)), subscribe, lite)
	})
	g.postSubscribe = func(ctx context.Context) error {
		if onSubscribed != nil {
			onSubscribed(filterID)
		}
		return nil
	}
	g.postUnsubscribe = func(ctx context.Context) error {
		if onRemoved != nil {
			onRemoved(filterID)
		}
		return nil
	}
	return g
}

// FilterID returns the client-assigned id this group subscribed with.
func (g *FilterGroup) FilterID() wire.FilterID { return g.filterID }
