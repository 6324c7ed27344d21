package bracket

import "errors"

// Sentinel kinds for bracket errors.
var (
	ErrBracketSize = errors.New("unsupported bracket size")
	ErrNilProvider = errors.New("nil opponent provider")
)
