// Package pb contains the wire message types and client stub interface
// for the NamedCache gRPC service. In a fully generated module these
// would come out of protoc-gen-go / protoc-gen-go-grpc; they are
// hand-declared here with the same shape generated code would have so
// the rest of the module can depend on a stable, typed RPC surface.
package pb

// MapEventID identifies the kind of mutation a MapEvent describes.
type MapEventID int32

const (
	MapEventIDInserted MapEventID = iota
	MapEventIDUpdated
	MapEventIDDeleted
)

func (id MapEventID) String() string {
	switch id {
	case MapEventIDInserted:
		return "INSERTED"
	case MapEventIDUpdated:
		return "UPDATED"
	case MapEventIDDeleted:
		return "DELETED"
	default:
		return "UNKNOWN"
	}
}

// ListenerRequestType discriminates the three kinds of message the
// client may send on the Events duplex stream.
type ListenerRequestType int32

const (
	ListenerRequestInit ListenerRequestType = iota
	ListenerRequestSubscribe
	ListenerRequestUnsubscribe
)

// ListenerRequest is sent on the Events duplex stream to initialize
// it, or to subscribe/unsubscribe a key or filter target.
type ListenerRequest struct {
	Uid       string
	Type      ListenerRequestType
	Subscribe bool
	Lite      bool
	Key       []byte
	Filter    []byte
	FilterId  int32
	Scope     string
	Cache     string
}

// ListenerResponseType discriminates the ListenerResponse variants
// documented in spec §6.
type ListenerResponseType int32

const (
	ListenerResponseSubscribed ListenerResponseType = iota
	ListenerResponseUnsubscribed
	ListenerResponseDestroyed
	ListenerResponseTruncated
	ListenerResponseEvent
)

// ListenerResponse is the single inbound message type on the Events
// duplex stream; Type discriminates which fields are populated.
type ListenerResponse struct {
	Type ListenerResponseType

	// Subscribed / Unsubscribed
	Uid string

	// Destroyed / Truncated / Event
	Cache string

	// Event
	Key        []byte
	OldValue   []byte
	NewValue   []byte
	Id         MapEventID
	FilterIds  []int32
	Synthetic  bool
}

// GetRequest/GetResponse and friends are the unary data-plane RPC
// messages. Field shapes mirror a typical key-value gRPC service.
type GetRequest struct {
	Uid   string
	Cache string
	Key   []byte
}

type GetResponse struct {
	Value   []byte
	Present bool
}

type PutRequest struct {
	Uid   string
	Cache string
	Key   []byte
	Value []byte
	TtlMs int64
}

type PutResponse struct {
	PreviousValue []byte
	Present       bool
}

type RemoveRequest struct {
	Uid   string
	Cache string
	Key   []byte
}

type RemoveResponse struct {
	PreviousValue []byte
	Present       bool
}

type RemoveMappingRequest struct {
	Uid   string
	Cache string
	Key   []byte
	Value []byte
}

type RemoveMappingResponse struct {
	Removed bool
}

type ContainsKeyRequest struct {
	Uid   string
	Cache string
	Key   []byte
}

type ContainsKeyResponse struct {
	Present bool
}

type SizeRequest struct {
	Uid   string
	Cache string
}

type SizeResponse struct {
	Size int64
}

type ClearRequest struct {
	Uid   string
	Cache string
}

type ClearResponse struct{}

type TruncateRequest struct {
	Uid   string
	Cache string
}

type TruncateResponse struct{}

type DestroyRequest struct {
	Uid   string
	Cache string
}

type DestroyResponse struct{}

type InvokeRequest struct {
	Uid       string
	Cache     string
	Key       []byte
	Processor []byte
}

type InvokeResponse struct {
	Result []byte
}

type InvokeAllRequest struct {
	Uid       string
	Cache     string
	Filter    []byte
	Keys      [][]byte
	Processor []byte
}

type InvokeAllEntry struct {
	Key    []byte
	Result []byte
}

type AggregateRequest struct {
	Uid        string
	Cache      string
	Filter     []byte
	Keys       [][]byte
	Aggregator []byte
}

type AggregateResponse struct {
	Result []byte
}

// PageRequest drives one server-streaming page RPC. An empty Cookie
// requests the first page.
type PageRequest struct {
	Uid    string
	Cache  string
	Cookie []byte
	Filter []byte // set only for Values/Entries (filtered streams)
}

// PageEntry is one message of a page server-stream. The first message
// of every stream carries only Cookie; all later messages carry Key
// (and Value, for entry/value pages) with an empty Cookie.
type PageEntry struct {
	Cookie []byte
	Key    []byte
	Value  []byte
}
