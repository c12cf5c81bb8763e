package analyzer

import "errors"

// Sentinel kinds for analyzer errors.
var (
	// ErrClusteringUnavailable means clustering could not run; the report
	// falls back to heuristic scores only.
	ErrClusteringUnavailable = errors.New("clustering unavailable")
	ErrArchive               = errors.New("archive analysis run")
)
