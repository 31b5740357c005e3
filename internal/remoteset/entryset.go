package remoteset

import (
	"context"

	"github.com/rlubke/coherence-go-client/internal/factory"
	"github.com/rlubke/coherence-go-client/internal/pageadvancer"
	"github.com/rlubke/coherence-go-client/internal/wire"
	"github.com/rlubke/coherence-go-client/pb"
	"github.com/rlubke/coherence-go-client/serializer"
)

// EntrySet is a deletable, sizeable, asynchronously iterable view of
// a remote map's entries (spec §4.3). If filter is non-nil, iteration
// is scoped to entries matching it via the Entries RPC; otherwise it
// pages over the whole map via NextEntrySetPage.
type EntrySet[K any, V any] struct {
	client    pb.NamedCacheClient
	cacheName string
	ser       serializer.Serializer
	filter    []byte
}

// NewEntrySet constructs an EntrySet bound to cacheName on client,
// optionally scoped to filter (nil for the whole map).
func NewEntrySet[K any, V any](client pb.NamedCacheClient, cacheName string, ser serializer.Serializer, filter []byte) *EntrySet[K, V] {
	return &EntrySet[K, V]{client: client, cacheName: cacheName, ser: ser, filter: filter}
}

func (s *EntrySet[K, V]) All() *pageadvancer.Advancer[*Entry[K, V]] {
	return pageadvancer.New[*Entry[K, V]](entryPageHelper[K, V]{client: s.client, cacheName: s.cacheName, ser: s.ser, filter: s.filter})
}

func (s *EntrySet[K, V]) Size(ctx context.Context) (int64, error) {
	resp, err := s.client.Size(ctx, factory.Size(s.cacheName))
	if err != nil {
		return 0, wire.Newf(wire.KindTransportFailure, "EntrySet.Size", err)
	}
	return resp.Size, nil
}

func (s *EntrySet[K, V]) Clear(ctx context.Context) error {
	_, err := s.client.Clear(ctx, factory.Clear(s.cacheName))
	if err != nil {
		return wire.Newf(wire.KindTransportFailure, "EntrySet.Clear", err)
	}
	return nil
}

// Delete performs a remote conditional remove matching both key and
// value (spec §4.3 EntrySet delete).
func (s *EntrySet[K, V]) Delete(ctx context.Context, key K, value V) (bool, error) {
	keyBytes, err := s.ser.Serialize(key)
	if err != nil {
		return false, wire.Newf(wire.KindProtocol, "EntrySet.Delete", err)
	}
	valBytes, err := s.ser.Serialize(value)
	if err != nil {
		return false, wire.Newf(wire.KindProtocol, "EntrySet.Delete", err)
	}
	resp, err := s.client.RemoveMapping(ctx, factory.RemoveMapping(s.cacheName, keyBytes, valBytes))
	if err != nil {
		return false, wire.Newf(wire.KindTransportFailure, "EntrySet.Delete", err)
	}
	return resp.Removed, nil
}

type entryPageHelper[K any, V any] struct {
	client    pb.NamedCacheClient
	cacheName string
	ser       serializer.Serializer
	filter    []byte
}

func (h entryPageHelper[K, V]) ExtractCookie(first *pb.PageEntry) wire.Cookie {
	return wire.Cookie(first.Cookie)
}

func (h entryPageHelper[K, V]) HandleEntry(raw *pb.PageEntry) (*Entry[K, V], error) {
	return newEntry[K, V](h.ser, raw.Key, raw.Value), nil
}

func (h entryPageHelper[K, V]) LoadNextPage(ctx context.Context, cookie wire.Cookie) (pb.PageStream, error) {
	req := factory.Page(h.cacheName, cookie, h.filter)
	if h.filter != nil {
		return h.client.Entries(ctx, req)
	}
	return h.client.NextEntrySetPage(ctx, req)
}
