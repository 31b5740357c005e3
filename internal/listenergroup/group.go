// Package listenergroup implements the Listener Group (spec §4.4):
// coalescing of many local listeners sharing one key or one filter
// into exactly one logical server subscription. Its shape is
// modeled on the teacher's per-seq handler structs (streamHandler,
// queryHandler in rpc_client.go), each of which guards a closed flag
// and a sink with a mutex; here the "sink" fans out to many records
// instead of one channel, and subscribe/unsubscribe RPCs are
// sequenced instead of fire-and-forget.
package listenergroup

import (
	"context"
	"sync"

	"github.com/rlubke/coherence-go-client/internal/event"
	"github.com/rlubke/coherence-go-client/internal/factory"
	"github.com/rlubke/coherence-go-client/pb"
)

// Subscriber writes a SUBSCRIBE/UNSUBSCRIBE/INIT request on the
// shared duplex stream and blocks until its ack (or an error)
// arrives. Implemented by internal/eventsmanager.Manager.
type Subscriber interface {
	WriteRequest(ctx context.Context, req *pb.ListenerRequest) error
}

// Group coalesces listener records sharing one subscription target.
type Group interface {
	AddListener(ctx context.Context, h *event.Listener, lite bool) error
	RemoveListener(ctx context.Context, h *event.Listener) error
	Notify(ev *event.MapEvent)
	Empty() bool
}

type record struct {
	handler *event.Listener
	lite    bool
}

// base implements the coalescing algorithm common to key and filter
// groups (spec §4.4); keyGroup and filterGroup supply only the
// target-specific request builder and the postSubscribe/
// postUnsubscribe index-maintenance hooks.
type base struct {
	mu               sync.Mutex
	order            []*event.Listener // insertion order, for in-order dispatch
	records          map[*event.Listener]record
	isLiteFalseCount int
	registeredIsLite bool
	active           bool

	subscriber      Subscriber
	cacheName       string
	buildRequest    func(subscribe, lite bool) *pb.ListenerRequest
	postSubscribe   func(ctx context.Context) error
	postUnsubscribe func(ctx context.Context) error
}

func newBase(subscriber Subscriber, cacheName string, buildRequest func(subscribe, lite bool) *pb.ListenerRequest) base {
	return base{
		records:      make(map[*event.Listener]record),
		subscriber:   subscriber,
		cacheName:    cacheName,
		buildRequest: buildRequest,
	}
}

// AddListener implements spec §4.4 addListener.
func (b *base) AddListener(ctx context.Context, h *event.Listener, lite bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if existing, ok := b.records[h]; ok {
		if existing.lite == lite {
			return nil // idempotent: same handler, same detail level
		}
		if existing.lite && !lite {
			b.isLiteFalseCount++
		} else {
			b.isLiteFalseCount--
		}
		b.records[h] = record{handler: h, lite: lite}
		switch {
		case b.registeredIsLite && !lite:
			return b.resubscribe(ctx, false)
		case b.isLiteFalseCount == 0 && !b.registeredIsLite:
			return b.resubscribe(ctx, true)
		}
		return nil
	}

	first := len(b.records) == 0
	b.order = append(b.order, h)
	b.records[h] = record{handler: h, lite: lite}
	if !lite {
		b.isLiteFalseCount++
	}

	switch {
	case first:
		if err := b.subscribe(ctx, lite); err != nil {
			delete(b.records, h)
			b.order = b.order[:len(b.order)-1]
			if !lite {
				b.isLiteFalseCount--
			}
			return err
		}
	case b.registeredIsLite && !lite:
		if err := b.resubscribe(ctx, false); err != nil {
			return err
		}
	}
	return nil
}

// RemoveListener implements spec §4.4 removeListener.
func (b *base) RemoveListener(ctx context.Context, h *event.Listener) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	existing, ok := b.records[h]
	if !ok || len(b.records) == 0 {
		return nil
	}
	delete(b.records, h)
	for i, hh := range b.order {
		if hh == h {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	if !existing.lite {
		b.isLiteFalseCount--
	}

	switch {
	case len(b.records) == 0:
		if err := b.unsubscribe(ctx); err != nil {
			return err
		}
		if b.postUnsubscribe != nil {
			return b.postUnsubscribe(ctx)
		}
		return nil
	case b.isLiteFalseCount == 0 && !b.registeredIsLite:
		return b.resubscribe(ctx, true)
	}
	return nil
}

// Notify dispatches ev to every record's handler in insertion order
// (spec §4.4 notify). Per-handler panics/errors are caught so one
// broken listener cannot stop delivery to the rest of the group
// (spec §7 propagation policy).
func (b *base) Notify(ev *event.MapEvent) {
	b.mu.Lock()
	order := append([]*event.Listener(nil), b.order...)
	records := make(map[*event.Listener]record, len(b.records))
	for k, v := range b.records {
		records[k] = v
	}
	b.mu.Unlock()

	for _, h := range order {
		rec, ok := records[h]
		if !ok {
			continue
		}
		dispatchOne(rec.handler, ev)
	}
}

func dispatchOne(h *event.Listener, ev *event.MapEvent) {
	defer func() { recover() }() // a listener's handler must not abort dispatch to its peers
	switch ev.Id {
	case pb.MapEventIDInserted:
		if h.OnInserted != nil {
			h.OnInserted(ev)
		}
	case pb.MapEventIDUpdated:
		if h.OnUpdated != nil {
			h.OnUpdated(ev)
		}
	case pb.MapEventIDDeleted:
		if h.OnDeleted != nil {
			h.OnDeleted(ev)
		}
	}
}

// Empty reports whether this group no longer holds an active server
// subscription (spec §4.4 presence invariant: "an active Listener
// Group holds at least one record"). b.active is the primitive the
// subscribe/unsubscribe sequencing below maintains; record count
// tracks it but active is what the owner's index-cleanup actually
// cares about.
func (b *base) Empty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.active
}

// subscribe, resubscribe, unsubscribe sequence RPCs strictly: each
// group holds at most one outstanding subscription RPC at a time
// because all of AddListener/RemoveListener hold b.mu for their
// duration (spec §5 ordering guarantees).

func (b *base) subscribe(ctx context.Context, lite bool) error {
	if err := b.subscriber.WriteRequest(ctx, b.buildRequest(true, lite)); err != nil {
		return err
	}
	b.active = true
	b.registeredIsLite = lite
	if b.postSubscribe != nil {
		return b.postSubscribe(ctx)
	}
	return nil
}

func (b *base) unsubscribe(ctx context.Context) error {
	if err := b.subscriber.WriteRequest(ctx, b.buildRequest(false, b.registeredIsLite)); err != nil {
		return err
	}
	b.active = false
	return nil
}

// resubscribe performs the detail-level upgrade/downgrade sequence:
// unsubscribe must complete before the resubscribe is sent (spec
// §4.4 step 4).
func (b *base) resubscribe(ctx context.Context, lite bool) error {
	if err := b.unsubscribe(ctx); err != nil {
		return err
	}
	return b.subscribe(ctx, lite)
}
