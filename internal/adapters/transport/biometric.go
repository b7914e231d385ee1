package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/looplink/pkg/metrics"
)

// Authenticator verifies the caller's identity. A false result with a nil
// error is an explicit denial (mismatch, user cancel).
type Authenticator interface {
	Authenticate(ctx context.Context) (bool, error)
}

// StaticAuthenticator answers every attempt with a fixed result. Used for
// tests and for wiring a gate whose real mechanism is not available.
type StaticAuthenticator struct {
	Allow bool
	Err   error
}

// Authenticate returns the fixed result.
func (a StaticAuthenticator) Authenticate(ctx context.Context) (bool, error) {
	return a.Allow, a.Err
}

// Gate runs the two-stage authentication policy in front of the SMS
// transport: try the biometric authenticator; if its mechanism is
// unavailable, fall back to the passcode authenticator; any other failure
// is a hard deny with no further fallback.
type Gate struct {
	biometric Authenticator
	passcode  Authenticator
}

// NewGate creates a gate over the two authenticators.
func NewGate(biometric, passcode Authenticator) *Gate {
	return &Gate{biometric: biometric, passcode: passcode}
}

// Authorize runs the policy. A nil return authorizes the dispatch; every
// other outcome maps onto ErrAuthenticationFailure.
func (g *Gate) Authorize(ctx context.Context) error {
	ok, err := g.biometric.Authenticate(ctx)
	switch {
	case err == nil && ok:
		return nil
	case errors.Is(err, ErrAuthenticatorUnavailable):
		ok, err = g.passcode.Authenticate(ctx)
		if err == nil && ok {
			return nil
		}
	}

	metrics.RecordAuthFailure()
	if err != nil && !errors.Is(err, ErrAuthenticatorUnavailable) {
		return fmt.Errorf("%w: %v", ErrAuthenticationFailure, err)
	}
	return ErrAuthenticationFailure
}
