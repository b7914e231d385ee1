package transport

import "errors"

// Sentinel kinds for dispatch errors.
var (
	// ErrInvalidURL means the shortcut deep link could not be built or the
	// platform refused to open it.
	ErrInvalidURL = errors.New("invalid shortcut url")
	// ErrTransportFailure wraps send failures reported by the selected
	// transport capability.
	ErrTransportFailure = errors.New("transport failure")
	// ErrAuthenticationFailure aborts a dispatch whose authentication gate
	// denied the caller. It is terminal for the dispatch, never retried.
	ErrAuthenticationFailure = errors.New("authentication failure")
	// ErrAuthenticatorUnavailable is returned by an Authenticator whose
	// mechanism cannot run at all (no hardware, not enrolled, locked out).
	// The gate treats it as a cue to fall back, not as a denial.
	ErrAuthenticatorUnavailable = errors.New("authenticator unavailable")
)
