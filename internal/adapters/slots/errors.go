package slots

import "errors"

// Sentinel kinds for slot store errors.
var (
	ErrClosed = errors.New("slot store closed")
)
