package sessionlog

import "errors"

// Sentinel kinds for session log errors.
var (
	ErrReadLog   = errors.New("read session log")
	ErrDecodeLog = errors.New("decode session log")
	ErrWriteLog  = errors.New("write session log")
)
