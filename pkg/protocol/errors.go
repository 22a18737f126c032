package protocol

import "errors"

var (
	// ErrUnknownType is returned when a message carries an unrecognised type.
	ErrUnknownType = errors.New("unknown message type")
)
