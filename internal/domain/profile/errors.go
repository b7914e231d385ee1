package profile

import "errors"

// Sentinel kinds for profile ingestion errors.
var (
	ErrProfileNotFound = errors.New("default profile not found")
)
