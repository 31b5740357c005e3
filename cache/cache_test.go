package cache

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc"

	"github.com/rlubke/coherence-go-client/filters"
	"github.com/rlubke/coherence-go-client/internal/wire"
	"github.com/rlubke/coherence-go-client/pb"
	"github.com/rlubke/coherence-go-client/session"
)

// fakeStream is a minimal in-memory pb.EventsStream; unused by the
// data-operation tests in this file but required to satisfy
// pb.NamedCacheClient.Events.
type fakeStream struct{ inbox chan *pb.ListenerResponse }

func (s *fakeStream) Send(req *pb.ListenerRequest) error {
	if s.inbox != nil {
		s.inbox <- &pb.ListenerResponse{Type: pb.ListenerResponseSubscribed, Uid: req.Uid}
	}
	return nil
}
func (s *fakeStream) Recv() (*pb.ListenerResponse, error) {
	r, ok := <-s.inbox
	if !ok {
		return nil, errors.New("closed")
	}
	return r, nil
}
func (s *fakeStream) CloseSend() error { return nil }

// fakeClient is an in-memory NamedMap: Get/Put/Remove/... operate on
// a JSON-serialized map keyed by the serialized key bytes, so the
// facade's own Serializer round-trips exactly as it would against a
// real server.
type fakeClient struct {
	store     map[string][]byte
	destroyed bool
}

func newFakeClient() *fakeClient { return &fakeClient{store: map[string][]byte{}} }

func (c *fakeClient) Events(context.Context, ...grpc.CallOption) (pb.EventsStream, error) {
	return &fakeStream{inbox: make(chan *pb.ListenerResponse, 8)}, nil
}

func (c *fakeClient) Get(_ context.Context, in *pb.GetRequest, _ ...grpc.CallOption) (*pb.GetResponse, error) {
	v, ok := c.store[string(in.Key)]
	return &pb.GetResponse{Value: v, Present: ok}, nil
}

func (c *fakeClient) Put(_ context.Context, in *pb.PutRequest, _ ...grpc.CallOption) (*pb.PutResponse, error) {
	prev, ok := c.store[string(in.Key)]
	c.store[string(in.Key)] = in.Value
	return &pb.PutResponse{PreviousValue: prev, Present: ok}, nil
}

func (c *fakeClient) Remove(_ context.Context, in *pb.RemoveRequest, _ ...grpc.CallOption) (*pb.RemoveResponse, error) {
	prev, ok := c.store[string(in.Key)]
	delete(c.store, string(in.Key))
	return &pb.RemoveResponse{PreviousValue: prev, Present: ok}, nil
}

func (c *fakeClient) RemoveMapping(_ context.Context, in *pb.RemoveMappingRequest, _ ...grpc.CallOption) (*pb.RemoveMappingResponse, error) {
	cur, ok := c.store[string(in.Key)]
	if !ok || string(cur) != string(in.Value) {
		return &pb.RemoveMappingResponse{Removed: false}, nil
	}
	delete(c.store, string(in.Key))
	return &pb.RemoveMappingResponse{Removed: true}, nil
}

func (c *fakeClient) ContainsKey(_ context.Context, in *pb.ContainsKeyRequest, _ ...grpc.CallOption) (*pb.ContainsKeyResponse, error) {
	_, ok := c.store[string(in.Key)]
	return &pb.ContainsKeyResponse{Present: ok}, nil
}

func (c *fakeClient) Size(context.Context, *pb.SizeRequest, ...grpc.CallOption) (*pb.SizeResponse, error) {
	return &pb.SizeResponse{Size: int64(len(c.store))}, nil
}

func (c *fakeClient) Clear(context.Context, *pb.ClearRequest, ...grpc.CallOption) (*pb.ClearResponse, error) {
	c.store = map[string][]byte{}
	return &pb.ClearResponse{}, nil
}

func (c *fakeClient) Truncate(context.Context, *pb.TruncateRequest, ...grpc.CallOption) (*pb.TruncateResponse, error) {
	c.store = map[string][]byte{}
	return &pb.TruncateResponse{}, nil
}

func (c *fakeClient) Destroy(context.Context, *pb.DestroyRequest, ...grpc.CallOption) (*pb.DestroyResponse, error) {
	c.destroyed = true
	return &pb.DestroyResponse{}, nil
}

func (c *fakeClient) Invoke(_ context.Context, in *pb.InvokeRequest, _ ...grpc.CallOption) (*pb.InvokeResponse, error) {
	return &pb.InvokeResponse{Result: in.Processor}, nil
}

func (c *fakeClient) InvokeAll(context.Context, *pb.InvokeAllRequest, ...grpc.CallOption) (pb.PageStreamOf[*pb.InvokeAllEntry], error) {
	return nil, errors.New("not implemented")
}

func (c *fakeClient) Aggregate(context.Context, *pb.AggregateRequest, ...grpc.CallOption) (*pb.AggregateResponse, error) {
	return nil, errors.New("not implemented")
}

func (c *fakeClient) NextKeySetPage(context.Context, *pb.PageRequest, ...grpc.CallOption) (pb.PageStream, error) {
	return nil, errors.New("not implemented")
}
func (c *fakeClient) NextEntrySetPage(context.Context, *pb.PageRequest, ...grpc.CallOption) (pb.PageStream, error) {
	return nil, errors.New("not implemented")
}
func (c *fakeClient) Values(context.Context, *pb.PageRequest, ...grpc.CallOption) (pb.PageStream, error) {
	return nil, errors.New("not implemented")
}
func (c *fakeClient) Entries(context.Context, *pb.PageRequest, ...grpc.CallOption) (pb.PageStream, error) {
	return nil, errors.New("not implemented")
}

func newTestSessionAndClient(t *testing.T) (*session.Session, *fakeClient) {
	t.Helper()
	fc := newFakeClient()
	sess, err := session.New(context.Background(), session.Options{Address: "passthrough:///test"},
		func(*grpc.ClientConn) pb.NamedCacheClient { return fc }, nil)
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	t.Cleanup(func() { _ = sess.Close() })
	return sess, fc
}

func TestCachePutThenGetRoundTrips(t *testing.T) {
	sess, _ := newTestSessionAndClient(t)
	c := New[string, int](sess, "people")

	prev, present, err := c.Put(context.Background(), "alice", 30)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if present {
		t.Fatalf("expected no previous value, got %d", prev)
	}

	v, ok, err := c.Get(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || v != 30 {
		t.Fatalf("got (%d, %v), want (30, true)", v, ok)
	}
}

func TestCacheGetMissingKeyReportsNotPresent(t *testing.T) {
	sess, _ := newTestSessionAndClient(t)
	c := New[string, int](sess, "people")

	_, ok, err := c.Get(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("expected present=false for a missing key")
	}
}

func TestCacheRemoveReturnsPreviousValue(t *testing.T) {
	sess, _ := newTestSessionAndClient(t)
	c := New[string, int](sess, "people")
	if _, _, err := c.Put(context.Background(), "bob", 5); err != nil {
		t.Fatal(err)
	}

	prev, ok, err := c.Remove(context.Background(), "bob")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !ok || prev != 5 {
		t.Fatalf("got (%d, %v), want (5, true)", prev, ok)
	}

	if _, ok, _ := c.Get(context.Background(), "bob"); ok {
		t.Fatal("key should be gone after Remove")
	}
}

func TestCacheSizeAndClear(t *testing.T) {
	sess, _ := newTestSessionAndClient(t)
	c := New[string, int](sess, "people")
	_, _, _ = c.Put(context.Background(), "a", 1)
	_, _, _ = c.Put(context.Background(), "b", 2)

	size, err := c.Size(context.Background())
	if err != nil || size != 2 {
		t.Fatalf("Size() = %d, err=%v, want 2", size, err)
	}

	if err := c.Clear(context.Background()); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	size, err = c.Size(context.Background())
	if err != nil || size != 0 {
		t.Fatalf("Size() after Clear = %d, err=%v, want 0", size, err)
	}
}

func TestCacheDestroyRejectsSubsequentOperations(t *testing.T) {
	sess, _ := newTestSessionAndClient(t)
	c := New[string, int](sess, "people")

	if err := c.Destroy(context.Background()); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	_, _, err := c.Get(context.Background(), "anything")
	var werr *wire.Error
	if !errors.As(err, &werr) || werr.Kind != wire.KindPreconditionFailure {
		t.Fatalf("got %v, want a PreconditionFailure wire.Error", err)
	}
}

func TestCacheRemoveMappingOnlyRemovesExactMatch(t *testing.T) {
	sess, _ := newTestSessionAndClient(t)
	c := New[string, int](sess, "people")
	_, _, _ = c.Put(context.Background(), "a", 1)

	removed, err := c.RemoveMapping(context.Background(), "a", 2)
	if err != nil {
		t.Fatal(err)
	}
	if removed {
		t.Fatal("expected no removal when the value doesn't match")
	}

	removed, err = c.RemoveMapping(context.Background(), "a", 1)
	if err != nil {
		t.Fatal(err)
	}
	if !removed {
		t.Fatal("expected removal when the value matches")
	}
}

// fakeProcessor encodes directly to the bytes its result should
// deserialize from, isolating the Cache.Invoke plumbing under test
// from the processors package's own opaque wire format.
type fakeProcessor struct{ resultJSON string }

func (p fakeProcessor) Encode() ([]byte, error) { return []byte(p.resultJSON), nil }

func TestCacheInvokeDeserializesProcessorResult(t *testing.T) {
	sess, _ := newTestSessionAndClient(t)
	c := New[string, string](sess, "people")

	// fakeClient.Invoke echoes the processor bytes back as the result.
	got, err := c.Invoke(context.Background(), "a", fakeProcessor{resultJSON: `"done"`})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got != "done" {
		t.Fatalf("got %q, want %q", got, "done")
	}
}

func TestCacheAddMapListenerThenRemove(t *testing.T) {
	sess, _ := newTestSessionAndClient(t)
	c := New[string, int](sess, "people")

	l := &MapListener{}
	if err := c.AddMapListener(context.Background(), l, filters.Always(), true); err != nil {
		t.Fatalf("AddMapListener: %v", err)
	}
	if err := c.RemoveMapListener(context.Background(), l, filters.Always()); err != nil {
		t.Fatalf("RemoveMapListener: %v", err)
	}
}

func TestCacheKeySetSizeDelegatesThroughToClient(t *testing.T) {
	sess, _ := newTestSessionAndClient(t)
	c := New[string, int](sess, "people")
	_, _, _ = c.Put(context.Background(), "a", 1)

	size, err := c.KeySet().Size(context.Background())
	if err != nil || size != 1 {
		t.Fatalf("KeySet().Size() = %d, err=%v, want 1", size, err)
	}
}
