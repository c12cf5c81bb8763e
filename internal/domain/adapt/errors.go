package adapt

import "errors"

// Sentinel kinds for adaptation errors.
var (
	ErrRealize = errors.New("realize directive")
	ErrRemove  = errors.New("remove artifact")
	ErrNoWorld = errors.New("dispatcher has no world")
)
