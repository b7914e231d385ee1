package service

import "errors"

// Sentinel kinds for service-level failures.
var (
	// ErrNotStarted guards API methods called before Start.
	ErrNotStarted = errors.New("service not started")
	// ErrUnknownOverride rejects activation of a name absent from the
	// ingested override definitions.
	ErrUnknownOverride = errors.New("unknown override")
	// ErrNoSite rejects Start when no remote site is configured and no
	// fetcher was injected; the poll loop would have nothing to drive.
	ErrNoSite = errors.New("no site configured")
)
