package exchange

import "errors"

// Sentinel kinds for exchange errors.
var (
	ErrMatchOver     = errors.New("match already decided")
	ErrUnknownAction = errors.New("unknown action for position")
)
