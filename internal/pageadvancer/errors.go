package pageadvancer

import "errors"

// ErrDone signals that an Advancer's sequence has been fully
// consumed: the last page it loaded carried an empty cookie.
var ErrDone = errors.New("pageadvancer: sequence exhausted")
