// Package pageadvancer implements the Page Advancer (spec §4.2): a
// lazy, asynchronous, single-consumer, non-restartable sequence over
// a chain of server-stream pages. Its shape is grounded on the
// teacher's streamHandler/monitorHandler "first message is special,
// then feed consumers one at a time" idiom (rpc_client.go), adapted
// from a channel-fed TCP decode loop to a pulled gRPC server-stream.
package pageadvancer

import (
	"context"
	"io"

	"github.com/rlubke/coherence-go-client/internal/wire"
	"github.com/rlubke/coherence-go-client/pb"
)

// Helper is the strategy an Advancer drives. ExtractCookie is applied
// only to the first message of each page; HandleEntry deserializes
// every later message; LoadNextPage initiates the RPC for the next
// page.
type Helper[T any] interface {
	ExtractCookie(first *pb.PageEntry) wire.Cookie
	HandleEntry(raw *pb.PageEntry) (T, error)
	LoadNextPage(ctx context.Context, cookie wire.Cookie) (pb.PageStream, error)
}

// Advancer drives one server-stream page-by-page, buffering raw
// entries and yielding deserialized items on demand. It is
// single-consumer: concurrent calls to Next are not supported, and a
// fresh Advancer must be obtained for a fresh iteration (spec §4.2
// Restartability).
type Advancer[T any] struct {
	helper    Helper[T]
	cookie    wire.Cookie
	buffer    []*pb.PageEntry
	exhausted bool
}

// New returns an Advancer that will issue its first page request on
// the first call to Next.
func New[T any](helper Helper[T]) *Advancer[T] {
	return &Advancer[T]{helper: helper}
}

// Next returns the next item in the sequence, ErrDone
// when the sequence is exhausted, or a transport/protocol error if a
// page load fails — in which case any entries already buffered from
// the failing page are discarded, per spec §4.2.
func (a *Advancer[T]) Next(ctx context.Context) (T, error) {
	var zero T
	for {
		if len(a.buffer) > 0 {
			raw := a.buffer[0]
			a.buffer = a.buffer[1:]
			return a.helper.HandleEntry(raw)
		}
		if a.exhausted {
			return zero, ErrDone
		}
		if err := a.loadPage(ctx); err != nil {
			a.buffer = nil
			return zero, err
		}
	}
}

// loadPage issues LoadNextPage and drains the resulting stream to
// completion, per the algorithm in spec §4.2: first message sets the
// cookie, all later messages are buffered, and exhaustion is decided
// by whether the new cookie is empty.
func (a *Advancer[T]) loadPage(ctx context.Context) error {
	stream, err := a.helper.LoadNextPage(ctx, a.cookie)
	if err != nil {
		return wire.Newf(wire.KindTransportFailure, "pageadvancer.loadPage", err)
	}

	first, err := stream.Recv()
	if err != nil {
		if err == io.EOF {
			// A stream ending before even a cookie envelope is a
			// protocol violation: every page must carry one.
			return wire.Newf(wire.KindProtocol, "pageadvancer.loadPage", io.ErrUnexpectedEOF)
		}
		return wire.Newf(wire.KindTransportFailure, "pageadvancer.loadPage", err)
	}
	cookie := a.helper.ExtractCookie(first)

	var buffered []*pb.PageEntry
	for {
		entry, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return wire.Newf(wire.KindTransportFailure, "pageadvancer.loadPage", err)
		}
		buffered = append(buffered, entry)
	}

	a.cookie = cookie
	a.buffer = buffered
	a.exhausted = cookie.Empty()
	return nil
}
