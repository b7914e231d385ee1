package nightscout

import (
	"context"
	"time"

	"github.com/okian/looplink/internal/domain/model"
	"github.com/okian/looplink/internal/domain/profile"
)

// Fetcher is the remote feed surface the connectivity gate decorates.
type Fetcher interface {
	FetchProfile(ctx context.Context) (*profile.Payload, error)
	FetchTreatments(ctx context.Context, since time.Time, count int) ([]model.TreatmentEntry, error)
}

// Gated refuses fetches while the connectivity checker reports offline. The
// underlying fetcher is never touched in that case; the caller gets
// ErrNetworkUnavailable and nothing is queued for retry.
type Gated struct {
	fetcher Fetcher
	checker Checker
}

// NewGated wraps a fetcher behind a connectivity checker. A nil checker
// leaves every fetch ungated.
func NewGated(f Fetcher, c Checker) *Gated {
	if c == nil {
		c = AlwaysOnline{}
	}
	return &Gated{fetcher: f, checker: c}
}

// FetchProfile consults the checker, then delegates.
func (g *Gated) FetchProfile(ctx context.Context) (*profile.Payload, error) {
	if !g.checker.Online(ctx) {
		return nil, ErrNetworkUnavailable
	}
	return g.fetcher.FetchProfile(ctx)
}

// FetchTreatments consults the checker, then delegates.
func (g *Gated) FetchTreatments(ctx context.Context, since time.Time, count int) ([]model.TreatmentEntry, error) {
	if !g.checker.Online(ctx) {
		return nil, ErrNetworkUnavailable
	}
	return g.fetcher.FetchTreatments(ctx, since, count)
}
