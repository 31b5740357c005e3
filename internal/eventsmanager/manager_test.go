package eventsmanager

import (
	"context"
	"errors"
	"log"
	"sync"
	"testing"
	"time"

	"google.golang.org/grpc"

	"github.com/rlubke/coherence-go-client/filters"
	"github.com/rlubke/coherence-go-client/internal/event"
	"github.com/rlubke/coherence-go-client/pb"
	"github.com/rlubke/coherence-go-client/serializer"
)

// autoAckStream is an in-process substitute for the gRPC duplex
// stream: every Send is recorded and immediately acked back through
// the inbox, mimicking a well-behaved server; tests reach into inbox
// directly to inject EVENT/DESTROYED/TRUNCATED messages.
type autoAckStream struct {
	mu     sync.Mutex
	outbox []*pb.ListenerRequest
	inbox  chan *pb.ListenerResponse
}

func newAutoAckStream() *autoAckStream {
	return &autoAckStream{inbox: make(chan *pb.ListenerResponse, 16)}
}

func (s *autoAckStream) Send(req *pb.ListenerRequest) error {
	s.mu.Lock()
	s.outbox = append(s.outbox, req)
	s.mu.Unlock()

	var typ pb.ListenerResponseType
	switch req.Type {
	case pb.ListenerRequestInit, pb.ListenerRequestSubscribe:
		typ = pb.ListenerResponseSubscribed
	case pb.ListenerRequestUnsubscribe:
		typ = pb.ListenerResponseUnsubscribed
	}
	s.inbox <- &pb.ListenerResponse{Type: typ, Uid: req.Uid}
	return nil
}

func (s *autoAckStream) Recv() (*pb.ListenerResponse, error) {
	r, ok := <-s.inbox
	if !ok {
		return nil, errors.New("stream closed")
	}
	return r, nil
}

func (s *autoAckStream) CloseSend() error { return nil }

func (s *autoAckStream) last() *pb.ListenerRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.outbox) == 0 {
		return nil
	}
	return s.outbox[len(s.outbox)-1]
}

func (s *autoAckStream) all() []*pb.ListenerRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*pb.ListenerRequest(nil), s.outbox...)
}

// fakeClient implements pb.NamedCacheClient, serving Events from a
// fixed stream and failing every other RPC: the manager under test
// never calls a data-plane RPC.
type fakeClient struct {
	stream pb.EventsStream
}

func (c *fakeClient) Events(ctx context.Context, opts ...grpc.CallOption) (pb.EventsStream, error) {
	return c.stream, nil
}

func (c *fakeClient) Get(context.Context, *pb.GetRequest, ...grpc.CallOption) (*pb.GetResponse, error) {
	return nil, errors.New("not implemented")
}
func (c *fakeClient) Put(context.Context, *pb.PutRequest, ...grpc.CallOption) (*pb.PutResponse, error) {
	return nil, errors.New("not implemented")
}
func (c *fakeClient) Remove(context.Context, *pb.RemoveRequest, ...grpc.CallOption) (*pb.RemoveResponse, error) {
	return nil, errors.New("not implemented")
}
func (c *fakeClient) RemoveMapping(context.Context, *pb.RemoveMappingRequest, ...grpc.CallOption) (*pb.RemoveMappingResponse, error) {
	return nil, errors.New("not implemented")
}
func (c *fakeClient) ContainsKey(context.Context, *pb.ContainsKeyRequest, ...grpc.CallOption) (*pb.ContainsKeyResponse, error) {
	return nil, errors.New("not implemented")
}
func (c *fakeClient) Size(context.Context, *pb.SizeRequest, ...grpc.CallOption) (*pb.SizeResponse, error) {
	return nil, errors.New("not implemented")
}
func (c *fakeClient) Clear(context.Context, *pb.ClearRequest, ...grpc.CallOption) (*pb.ClearResponse, error) {
	return nil, errors.New("not implemented")
}
func (c *fakeClient) Truncate(context.Context, *pb.TruncateRequest, ...grpc.CallOption) (*pb.TruncateResponse, error) {
	return nil, errors.New("not implemented")
}
func (c *fakeClient) Destroy(context.Context, *pb.DestroyRequest, ...grpc.CallOption) (*pb.DestroyResponse, error) {
	return nil, errors.New("not implemented")
}
func (c *fakeClient) Invoke(context.Context, *pb.InvokeRequest, ...grpc.CallOption) (*pb.InvokeResponse, error) {
	return nil, errors.New("not implemented")
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

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func newTestManager() (*Manager, *autoAckStream) {
	stream := newAutoAckStream()
	client := &fakeClient{stream: stream}
	mgr := New(client, "people", serializer.JSON{}, log.New(discardWriter{}, "", 0), "ERR")
	return mgr, stream
}

func TestManagerEnsureStreamSendsInitAndBlocksUntilAck(t *testing.T) {
	mgr, stream := newTestManager()
	s, err := mgr.ensureStream(context.Background())
	if err != nil {
		t.Fatalf("ensureStream: %v", err)
	}
	if s == nil {
		t.Fatal("expected a non-nil stream handle")
	}
	if stream.last().Type != pb.ListenerRequestInit {
		t.Fatalf("expected INIT to be sent first, got %+v", stream.last())
	}
}

func TestManagerEnsureStreamIsIdempotent(t *testing.T) {
	mgr, stream := newTestManager()
	if _, err := mgr.ensureStream(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.ensureStream(context.Background()); err != nil {
		t.Fatal(err)
	}
	count := 0
	for _, r := range stream.all() {
		if r.Type == pb.ListenerRequestInit {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one INIT across two ensureStream calls, got %d", count)
	}
}

func TestManagerRegisterKeyListenerSubscribesOnce(t *testing.T) {
	mgr, stream := newTestManager()
	h := &event.Listener{}
	if err := mgr.RegisterKeyListener(context.Background(), h, []byte("k1"), true); err != nil {
		t.Fatalf("RegisterKeyListener: %v", err)
	}
	found := false
	for _, r := range stream.all() {
		if r.Type == pb.ListenerRequestSubscribe && string(r.Key) == "k1" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a SUBSCRIBE request naming key k1")
	}
}

func TestManagerDispatchEventRoutesByKeyFingerprint(t *testing.T) {
	mgr, stream := newTestManager()
	var gotKey string
	var wg sync.WaitGroup
	wg.Add(1)
	h := &event.Listener{OnInserted: func(ev *event.MapEvent) {
		defer wg.Done()
		var k string
		if err := ev.Key(&k); err != nil {
			t.Errorf("Key: %v", err)
			return
		}
		gotKey = k
	}}

	keyBytes, _ := serializer.JSON{}.Serialize("k1")
	if err := mgr.RegisterKeyListener(context.Background(), h, keyBytes, false); err != nil {
		t.Fatalf("RegisterKeyListener: %v", err)
	}

	stream.inbox <- &pb.ListenerResponse{
		Type: pb.ListenerResponseEvent,
		Id:   pb.MapEventIDInserted,
		Key:  keyBytes,
	}

	waitOrTimeout(t, &wg, time.Second)
	if gotKey != "k1" {
		t.Fatalf("got key %q, want k1", gotKey)
	}
}

func TestManagerDispatchEventRoutesByFilterID(t *testing.T) {
	mgr, stream := newTestManager()
	var wg sync.WaitGroup
	wg.Add(1)
	h := &event.Listener{OnUpdated: func(ev *event.MapEvent) { wg.Done() }}

	if err := mgr.RegisterFilterListener(context.Background(), h, filters.Always(), false); err != nil {
		t.Fatalf("RegisterFilterListener: %v", err)
	}

	mgr.mu.Lock()
	var fid int32
	for id := range mgr.filterIDIdx {
		fid = int32(id)
	}
	mgr.mu.Unlock()

	stream.inbox <- &pb.ListenerResponse{
		Type:      pb.ListenerResponseEvent,
		Id:        pb.MapEventIDUpdated,
		FilterIds: []int32{fid},
	}

	waitOrTimeout(t, &wg, time.Second)
}

func TestManagerDestroyedSetsFlagAndEmitsLifecycle(t *testing.T) {
	mgr, stream := newTestManager()
	if _, err := mgr.ensureStream(context.Background()); err != nil {
		t.Fatal(err)
	}
	stream.inbox <- &pb.ListenerResponse{Type: pb.ListenerResponseDestroyed}

	select {
	case l := <-mgr.Lifecycle():
		if l != LifecycleDestroyed {
			t.Fatalf("got %v, want LifecycleDestroyed", l)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for lifecycle notification")
	}
	if !mgr.Destroyed() {
		t.Fatal("expected Destroyed() to report true")
	}
}

func TestManagerCloseIsIdempotent(t *testing.T) {
	mgr, _ := newTestManager()
	if _, err := mgr.ensureStream(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := mgr.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := mgr.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got %v", err)
	}
}

func TestManagerCloseClosesLifecycleChannel(t *testing.T) {
	mgr, _ := newTestManager()
	if _, err := mgr.ensureStream(context.Background()); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		for range mgr.Lifecycle() {
		}
		close(done)
	}()

	if err := mgr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("range over Lifecycle() did not terminate after Close: channel leaked")
	}
}

func waitOrTimeout(t *testing.T, wg *sync.WaitGroup, d time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatal("timed out waiting for event dispatch")
	}
}
