package nightscout

import "errors"

// Sentinel kinds for remote fetch errors.
var (
	// ErrNetworkUnavailable means the connectivity probe failed; the fetch
	// was skipped, not attempted.
	ErrNetworkUnavailable = errors.New("network unavailable")
	// ErrFetch wraps transport and decode failures from the remote site.
	ErrFetch = errors.New("remote fetch failed")
	// ErrEmptyProfile means the profile endpoint answered with no documents.
	ErrEmptyProfile = errors.New("empty profile response")
	// ErrInvalidBaseURL rejects an unusable site URL at construction time.
	ErrInvalidBaseURL = errors.New("invalid base url")
)
