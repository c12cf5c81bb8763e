package repository

import "errors"

// Sentinel kinds for archive errors.
var (
	ErrNotFound     = errors.New("analysis run not found")
	ErrInvalidLimit = errors.New("invalid report limit")
)
