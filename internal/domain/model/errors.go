package model

import "errors"

// Sentinel kinds for model errors.
var (
	ErrUnknownPersona = errors.New("unknown persona")
)
