package relay

import "errors"

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("relay: closed")
