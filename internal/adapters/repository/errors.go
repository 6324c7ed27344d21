package repository

import "errors"

// Sentinel kinds for result-store errors.
var (
	ErrNotFound     = errors.New("run not found")
	ErrEmptyRunID   = errors.New("empty run id")
	ErrInvalidLimit = errors.New("invalid recent-runs limit")
)
