package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	ErrEmptyTable  = errors.New("scoring table is empty")
	ErrInvalidRule = errors.New("invalid scoring rule")
)
