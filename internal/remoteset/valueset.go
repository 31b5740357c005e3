package remoteset

import (
	"context"

	"github.com/rlubke/coherence-go-client/internal/factory"
	"github.com/rlubke/coherence-go-client/internal/pageadvancer"
	"github.com/rlubke/coherence-go-client/internal/wire"
	"github.com/rlubke/coherence-go-client/pb"
	"github.com/rlubke/coherence-go-client/serializer"
)

// ValueSet is a sizeable, asynchronously iterable view of a remote
// map's values (spec §4.3). Its loadNextPage reuses the entry-page
// RPCs and discards keys; Delete always fails with
// UnsupportedOperation, per spec.
type ValueSet[V any] struct {
	client    pb.NamedCacheClient
	cacheName string
	ser       serializer.Serializer
	filter    []byte
}

// NewValueSet constructs a ValueSet bound to cacheName on client,
// optionally scoped to filter (nil for the whole map).
func NewValueSet[V any](client pb.NamedCacheClient, cacheName string, ser serializer.Serializer, filter []byte) *ValueSet[V] {
	return &ValueSet[V]{client: client, cacheName: cacheName, ser: ser, filter: filter}
}

func (s *ValueSet[V]) All() *pageadvancer.Advancer[V] {
	return pageadvancer.New[V](valuePageHelper[V]{client: s.client, cacheName: s.cacheName, ser: s.ser, filter: s.filter})
}

func (s *ValueSet[V]) Size(ctx context.Context) (int64, error) {
	resp, err := s.client.Size(ctx, factory.Size(s.cacheName))
	if err != nil {
		return 0, wire.Newf(wire.KindTransportFailure, "ValueSet.Size", err)
	}
	return resp.Size, nil
}

func (s *ValueSet[V]) Clear(ctx context.Context) error {
	_, err := s.client.Clear(ctx, factory.Clear(s.cacheName))
	if err != nil {
		return wire.Newf(wire.KindTransportFailure, "ValueSet.Clear", err)
	}
	return nil
}

// Delete always fails: spec §4.3 requires ValueSet.delete to fail
// with UnsupportedOperation (values alone don't identify an entry).
func (s *ValueSet[V]) Delete(context.Context, V) (bool, error) {
	return false, wire.ErrUnsupportedOperation("ValueSet.Delete")
}

type valuePageHelper[V any] struct {
	client    pb.NamedCacheClient
	cacheName string
	ser       serializer.Serializer
	filter    []byte
}

func (h valuePageHelper[V]) ExtractCookie(first *pb.PageEntry) wire.Cookie {
	return wire.Cookie(first.Cookie)
}

func (h valuePageHelper[V]) HandleEntry(raw *pb.PageEntry) (V, error) {
	var v V
	err := h.ser.Deserialize(raw.Value, &v)
	return v, err
}

func (h valuePageHelper[V]) LoadNextPage(ctx context.Context, cookie wire.Cookie) (pb.PageStream, error) {
	req := factory.Page(h.cacheName, cookie, h.filter)
	if h.filter != nil {
		return h.client.Values(ctx, req)
	}
	return h.client.NextEntrySetPage(ctx, req)
}
