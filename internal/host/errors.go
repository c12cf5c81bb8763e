package host

import "errors"

// Sentinel kinds for host errors.
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrNoFloor        = errors.New("world has no floor tiles")
	ErrUnsupportedOp  = errors.New("unsupported directive")
)
