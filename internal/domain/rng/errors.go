package rng

import "errors"

// Sentinel kinds for rng errors.
var (
	ErrBadState = errors.New("malformed rng state")
)
