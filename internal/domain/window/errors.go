package window

import (
	"errors"
	"math"
)

// Sentinel kinds for window errors.
var (
	// ErrMalformedInput marks a sample that was rejected without side effects.
	ErrMalformedInput = errors.New("malformed input")
	ErrOutOfOrder     = errors.New("sample older than window tail")
)

var negInf = math.Inf(-1)
