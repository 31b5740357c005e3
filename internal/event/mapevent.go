package event

import (
	"github.com/rlubke/coherence-go-client/pb"
	"github.com/rlubke/coherence-go-client/serializer"
)

// MapEvent is the immutable event constructed for each inbound EVENT
// message (spec §4.5). The same *MapEvent is fanned out to every
// listener record in a group (internal/listenergroup.Notify), and each
// listener deserializes the key/old/new payloads into a destination of
// its own choosing, so Key/OldValue/NewValue deserialize fresh into
// out on every call rather than caching a decoded value keyed to the
// first caller's type.
type MapEvent struct {
	Cache     string
	Id        pb.MapEventID
	FilterIds []int32
	Synthetic bool

	ser serializer.Serializer

	keyRaw, oldRaw, newRaw []byte
}

// New constructs a MapEvent bound to cache, ser, and the raw payload
// of one inbound ListenerResponse_Event message.
func New(cache string, ser serializer.Serializer, resp *pb.ListenerResponse) *MapEvent {
	return &MapEvent{
		Cache:     cache,
		Id:        resp.Id,
		FilterIds: resp.FilterIds,
		Synthetic: resp.Synthetic,
		ser:       ser,
		keyRaw:    resp.Key,
		oldRaw:    resp.OldValue,
		newRaw:    resp.NewValue,
	}
}

// KeyBytes returns the raw serialized key, without deserializing it;
// used by dispatch to compute the key fingerprint without paying for
// a full decode when no key-group exists for it.
func (e *MapEvent) KeyBytes() []byte { return e.keyRaw }

// Key deserializes the event's key into out.
func (e *MapEvent) Key(out interface{}) error {
	return e.ser.Deserialize(e.keyRaw, out)
}

// OldValue deserializes the event's pre-mutation value into out.
// Empty when the originating subscription was registered lite.
func (e *MapEvent) OldValue(out interface{}) error {
	return e.ser.Deserialize(e.oldRaw, out)
}

// NewValue deserializes the event's post-mutation value into out.
// Empty when the originating subscription was registered lite.
func (e *MapEvent) NewValue(out interface{}) error {
	return e.ser.Deserialize(e.newRaw, out)
}
