package hub

import "errors"

// ErrStopped is returned by NewClient once the hub's Run loop has exited.
var ErrStopped = errors.New("hub: stopped")
