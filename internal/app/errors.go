package app

import "errors"

// Sentinel kinds for session errors.
var (
	ErrMalformedInput = errors.New("malformed input")
	ErrSessionClosed  = errors.New("session closed")
)
