package session

import "errors"

var (
	// ErrNotActive is returned when ending a session that was never begun.
	ErrNotActive = errors.New("session not active")
)
