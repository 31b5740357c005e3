// Package factory builds typed request records for every RPC the
// NamedCache service exposes, stamping each with a fresh correlation
// id (spec §4.1). It mirrors the teacher's own per-command request
// construction (requestHeader{Command, Seq} paired with a command
// specific request struct in rpc_client.go) adapted to gRPC request
// messages that carry their own Uid field.
package factory

import (
	"github.com/rlubke/coherence-go-client/internal/wire"
	"github.com/rlubke/coherence-go-client/pb"
)

func Init(cache string) *pb.ListenerRequest {
	return &pb.ListenerRequest{
		Uid:   string(wire.NewCorrelationID()),
		Type:  pb.ListenerRequestInit,
		Cache: cache,
	}
}

// Subscribe builds a SUBSCRIBE or UNSUBSCRIBE ListenerRequest for
// target, at the given detail level.
func Subscribe(cache string, target Target, subscribe bool, lite bool) *pb.ListenerRequest {
	req := &pb.ListenerRequest{
		Uid:       string(wire.NewCorrelationID()),
		Type:      requestType(subscribe),
		Subscribe: subscribe,
		Lite:      lite,
		Cache:     cache,
	}
	if target.IsFilter() {
		req.Filter = target.Filter
		req.FilterId = target.FilterID
	} else {
		req.Key = target.Key
	}
	return req
}

func requestType(subscribe bool) pb.ListenerRequestType {
	if subscribe {
		return pb.ListenerRequestSubscribe
	}
	return pb.ListenerRequestUnsubscribe
}

func Get(cache string, key []byte) *pb.GetRequest {
	return &pb.GetRequest{Uid: string(wire.NewCorrelationID()), Cache: cache, Key: key}
}

func Put(cache string, key, value []byte, ttlMs int64) *pb.PutRequest {
	return &pb.PutRequest{Uid: string(wire.NewCorrelationID()), Cache: cache, Key: key, Value: value, TtlMs: ttlMs}
}

func Remove(cache string, key []byte) *pb.RemoveRequest {
	return &pb.RemoveRequest{Uid: string(wire.NewCorrelationID()), Cache: cache, Key: key}
}

func RemoveMapping(cache string, key, value []byte) *pb.RemoveMappingRequest {
	return &pb.RemoveMappingRequest{Uid: string(wire.NewCorrelationID()), Cache: cache, Key: key, Value: value}
}

func ContainsKey(cache string, key []byte) *pb.ContainsKeyRequest {
	return &pb.ContainsKeyRequest{Uid: string(wire.NewCorrelationID()), Cache: cache, Key: key}
}

func Size(cache string) *pb.SizeRequest {
	return &pb.SizeRequest{Uid: string(wire.NewCorrelationID()), Cache: cache}
}

func Clear(cache string) *pb.ClearRequest {
	return &pb.ClearRequest{Uid: string(wire.NewCorrelationID()), Cache: cache}
}

func Truncate(cache string) *pb.TruncateRequest {
	return &pb.TruncateRequest{Uid: string(wire.NewCorrelationID()), Cache: cache}
}

func Destroy(cache string) *pb.DestroyRequest {
	return &pb.DestroyRequest{Uid: string(wire.NewCorrelationID()), Cache: cache}
}

func Invoke(cache string, key, processor []byte) *pb.InvokeRequest {
	return &pb.InvokeRequest{Uid: string(wire.NewCorrelationID()), Cache: cache, Key: key, Processor: processor}
}

func InvokeAll(cache string, filter []byte, keys [][]byte, processor []byte) *pb.InvokeAllRequest {
	return &pb.InvokeAllRequest{Uid: string(wire.NewCorrelationID()), Cache: cache, Filter: filter, Keys: keys, Processor: processor}
}

func Aggregate(cache string, filter []byte, keys [][]byte, aggregator []byte) *pb.AggregateRequest {
	return &pb.AggregateRequest{Uid: string(wire.NewCorrelationID()), Cache: cache, Filter: filter, Keys: keys, Aggregator: aggregator}
}

// Page builds the request for the next page of a key/entry/value
// sequence. An empty cookie requests the first page.
func Page(cache string, cookie wire.Cookie, filter []byte) *pb.PageRequest {
	return &pb.PageRequest{Uid: string(wire.NewCorrelationID()), Cache: cache, Cookie: cookie, Filter: filter}
}
