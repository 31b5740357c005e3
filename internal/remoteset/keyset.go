// Package remoteset implements the Remote Set Views (spec §4.3):
// stateless facades over a remote map's keys, entries, and values,
// each producing a fresh internal/pageadvancer.Advancer per
// iteration. size/clear delegate straight through to the underlying
// RPC, mirroring the teacher's own stateless delegate methods
// (RPCClient.Members/MembersFiltered in rpc_client.go simply issue
// one RPC and return its response — the same call-through shape used
// here for Size/Clear).
package remoteset

import (
	"context"

	"github.com/rlubke/coherence-go-client/internal/factory"
	"github.com/rlubke/coherence-go-client/internal/pageadvancer"
	"github.com/rlubke/coherence-go-client/internal/wire"
	"github.com/rlubke/coherence-go-client/pb"
	"github.com/rlubke/coherence-go-client/serializer"
)

// KeySet is a deletable, sizeable, asynchronously iterable view of a
// remote map's keys (spec §4.3).
type KeySet[K any] struct {
	client    pb.NamedCacheClient
	cacheName string
	ser       serializer.Serializer
}

// NewKeySet constructs a KeySet bound to cacheName on client.
func NewKeySet[K any](client pb.NamedCacheClient, cacheName string, ser serializer.Serializer) *KeySet[K] {
	return &KeySet[K]{client: client, cacheName: cacheName, ser: ser}
}

// All returns a fresh Advancer over every key in the map. A fresh
// Advancer must be obtained for a fresh iteration (spec §4.2
// Restartability); this method is what does that.
func (s *KeySet[K]) All() *pageadvancer.Advancer[K] {
	return pageadvancer.New[K](keyPageHelper[K]{client: s.client, cacheName: s.cacheName, ser: s.ser})
}

func (s *KeySet[K]) Size(ctx context.Context) (int64, error) {
	resp, err := s.client.Size(ctx, factory.Size(s.cacheName))
	if err != nil {
		return 0, wire.Newf(wire.KindTransportFailure, "KeySet.Size", err)
	}
	return resp.Size, nil
}

func (s *KeySet[K]) Clear(ctx context.Context) error {
	_, err := s.client.Clear(ctx, factory.Clear(s.cacheName))
	if err != nil {
		return wire.Newf(wire.KindTransportFailure, "KeySet.Clear", err)
	}
	return nil
}

// Delete removes key remotely, resolving true iff the server reported
// a prior value (spec §4.3 KeySet delete).
func (s *KeySet[K]) Delete(ctx context.Context, key K) (bool, error) {
	keyBytes, err := s.ser.Serialize(key)
	if err != nil {
		return false, wire.Newf(wire.KindProtocol, "KeySet.Delete", err)
	}
	resp, err := s.client.Remove(ctx, factory.Remove(s.cacheName, keyBytes))
	if err != nil {
		return false, wire.Newf(wire.KindTransportFailure, "KeySet.Delete", err)
	}
	return resp.Present, nil
}

// Has, Add, and synchronous enumeration are deliberately not
// implemented: spec §4.3 requires they fail with UnsupportedOperation,
// and the strongest Go expression of "unsupported" for a type-level
// capability is simply not exposing the method.

type keyPageHelper[K any] struct {
	client    pb.NamedCacheClient
	cacheName string
	ser       serializer.Serializer
}

func (h keyPageHelper[K]) ExtractCookie(first *pb.PageEntry) wire.Cookie {
	return wire.Cookie(first.Cookie)
}

func (h keyPageHelper[K]) HandleEntry(raw *pb.PageEntry) (K, error) {
	var k K
	err := h.ser.Deserialize(raw.Key, &k)
	return k, err
}

func (h keyPageHelper[K]) LoadNextPage(ctx context.Context, cookie wire.Cookie) (pb.PageStream, error) {
	stream, err := h.client.NextKeySetPage(ctx, factory.Page(h.cacheName, cookie, nil))
	if err != nil {
		return nil, err
	}
	return stream, nil
}
