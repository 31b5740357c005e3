package pb

import (
	"context"

	"google.golang.org/grpc"
)

// EventsStream is the client-side handle of the Events bidirectional
// stream: the same Send/Recv/CloseSend shape grpc-go generates for any
// service method declared `stream X returns (stream Y)`.
type EventsStream interface {
	Send(*ListenerRequest) error
	Recv() (*ListenerResponse, error)
	CloseSend() error
}

// PageStream is the client-side handle of a server-streaming page RPC.
type PageStream interface {
	Recv() (*PageEntry, error)
}

// NamedCacheClient is the generated-shaped gRPC client stub for the
// NamedCache service described in spec §6.
type NamedCacheClient interface {
	Events(ctx context.Context, opts ...grpc.CallOption) (EventsStream, error)

	Get(ctx context.Context, in *GetRequest, opts ...grpc.CallOption) (*GetResponse, error)
	Put(ctx context.Context, in *PutRequest, opts ...grpc.CallOption) (*PutResponse, error)
	Remove(ctx context.Context, in *RemoveRequest, opts ...grpc.CallOption) (*RemoveResponse, error)
	RemoveMapping(ctx context.Context, in *RemoveMappingRequest, opts ...grpc.CallOption) (*RemoveMappingResponse, error)
	ContainsKey(ctx context.Context, in *ContainsKeyRequest, opts ...grpc.CallOption) (*ContainsKeyResponse, error)
	Size(ctx context.Context, in *SizeRequest, opts ...grpc.CallOption) (*SizeResponse, error)
	Clear(ctx context.Context, in *ClearRequest, opts ...grpc.CallOption) (*ClearResponse, error)
	Truncate(ctx context.Context, in *TruncateRequest, opts ...grpc.CallOption) (*TruncateResponse, error)
	Destroy(ctx context.Context, in *DestroyRequest, opts ...grpc.CallOption) (*DestroyResponse, error)
	Invoke(ctx context.Context, in *InvokeRequest, opts ...grpc.CallOption) (*InvokeResponse, error)
	InvokeAll(ctx context.Context, in *InvokeAllRequest, opts ...grpc.CallOption) (PageStreamOf[*InvokeAllEntry], error)
	Aggregate(ctx context.Context, in *AggregateRequest, opts ...grpc.CallOption) (*AggregateResponse, error)

	NextKeySetPage(ctx context.Context, in *PageRequest, opts ...grpc.CallOption) (PageStream, error)
	NextEntrySetPage(ctx context.Context, in *PageRequest, opts ...grpc.CallOption) (PageStream, error)
	Values(ctx context.Context, in *PageRequest, opts ...grpc.CallOption) (PageStream, error)
	Entries(ctx context.Context, in *PageRequest, opts ...grpc.CallOption) (PageStream, error)
}

// PageStreamOf is a narrow server-stream handle for RPCs whose items
// are not PageEntry (InvokeAll streams processor results, not pages).
type PageStreamOf[T any] interface {
	Recv() (T, error)
}
