package wire

// FilterID is the small integer the client assigns to a filter
// subscription and sends in its SUBSCRIBE request; events name the
// filters they matched by these ids. It is only valid for that
// subscription's lifetime and is the key used by filterIdIndex to
// route events in O(1).
type FilterID int32
