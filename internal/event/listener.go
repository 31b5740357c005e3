// Package event holds the types shared between internal/listenergroup,
// internal/eventsmanager, and the public cache package: the listener
// record and the immutable event delivered to it. It exists
// separately from cache to let listenergroup and eventsmanager depend
// on it without importing the facade package that depends on them.
package event

// Listener is a record (onInserted, onUpdated, onDeleted) per spec
// §9's design note: a listener is modeled as a record of optional
// handler slots dispatched by event kind, not as a subtyped
// interface. lite/full is not a field here — it is supplied
// per-registration to AddListener, since the same Listener may be
// registered at different detail levels in different groups (spec §1).
type Listener struct {
	OnInserted func(*MapEvent)
	OnUpdated  func(*MapEvent)
	OnDeleted  func(*MapEvent)
}
