package wire

import (
	"fmt"
	"sync/atomic"

	uuid "github.com/hashicorp/go-uuid"
)

// CorrelationID is the opaque, unique-per-process identifier stamped
// on every request that expects an ack. Ids are never reused while an
// ack is outstanding (the caller owns that invariant by removing the
// pendingAcks entry before freeing the id for garbage collection;
// uniqueness itself comes from the generator below).
type CorrelationID string

// fallbackSeq backs NewCorrelationID when the uuid generator fails
// (e.g. the system's random source is exhausted); it is also used
// directly by tests that need deterministic, ordered ids.
var fallbackSeq uint64

// NewCorrelationID returns a fresh, process-unique correlation id.
// The v4 UUID form is preferred, matching the teacher's own choice of
// github.com/hashicorp/go-uuid over a hand-rolled random source; a
// monotonic counter is used only if uuid generation itself errors.
func NewCorrelationID() CorrelationID {
	if id, err := uuid.GenerateUUID(); err == nil {
		return CorrelationID(id)
	}
	return CorrelationID(fmt.Sprintf("seq-%d", atomic.AddUint64(&fallbackSeq, 1)))
}

// NewSequentialCorrelationID returns a deterministic id; used by tests
// that assert on wire traces where UUID randomness would be noise.
func NewSequentialCorrelationID() CorrelationID {
	return CorrelationID(fmt.Sprintf("seq-%d", atomic.AddUint64(&fallbackSeq, 1)))
}
