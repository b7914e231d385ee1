// Package reconcile decides which remote override, if any, is active at a
// reference instant and publishes the result to the shared observable slots.
package reconcile

import (
	"context"
	"time"

	"github.com/okian/looplink/internal/domain/model"
	"github.com/okian/looplink/pkg/logger"
	"github.com/okian/looplink/pkg/metrics"
)

// Policy constants. The values are deliberate product heuristics: the grace
// period extends an open-ended entry one hour past "now", the look-ahead cap
// keeps a runaway future-dated entry from registering as active forever.
const (
	noiseFloor      = 5 * time.Minute
	defaultDuration = 5 * time.Minute
	ongoingGrace    = time.Hour
	lookaheadCap    = 3 * time.Hour
)

// Publisher receives the reconciliation outcome. Implemented by the shared
// slot store.
type Publisher interface {
	SetActiveOverride(ctx context.Context, note *string)
	SetTempTarget(ctx context.Context, note *string)
}

// Reconciler scans the remote treatment log and publishes the currently
// active override note and temp-target reason. Each pass fully determines
// both slots; stale state cannot survive a pass.
type Reconciler struct {
	publisher Publisher
	logger    logger.Logger
}

// Option applies a configuration option to the Reconciler.
type Option func(*Reconciler)

// WithLogger sets a custom logger for the reconciler.
func WithLogger(l logger.Logger) Option {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewReconciler creates a reconciler publishing into the given sink.
func NewReconciler(publisher Publisher, opts ...Option) *Reconciler {
	r := &Reconciler{publisher: publisher}

	// Apply all options
	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = logger.Get()
	}

	return r
}

// Reconcile walks the treatment entries and publishes the active override
// note, returning the final value. The input arrives most-recent-first, so
// the walk runs from the end of the slice toward index zero; index zero is
// the chronologically last entry and the only one eligible for the
// open-ended grace extension. Publication happens per qualifying entry, so
// within one pass the chronologically latest qualifying entry wins.
func (r *Reconciler) Reconcile(ctx context.Context, entries []model.TreatmentEntry, now time.Time) *string {
	started := time.Now()
	defer func() { metrics.RecordReconcileDuration(float64(time.Since(started).Nanoseconds()) / 1e6) }()
	metrics.RecordReconcilePass()

	var activeOverride, activeTarget *string

	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		metrics.RecordReconcileEntry()

		kind := entry.Kind()
		if kind == model.KindUnrecognized {
			metrics.RecordReconcileEntrySkipped()
			r.logger.Debug(ctx, "skipping malformed treatment entry",
				logger.String("eventType", entry.EventType),
				logger.Int("index", i),
			)
			continue
		}

		ts, _ := entry.Time()
		duration := r.effectiveDuration(entry, ts, now, i == 0)
		if duration < noiseFloor {
			continue
		}

		end := ts.Add(duration)
		if limit := now.Add(lookaheadCap); end.After(limit) {
			end = limit
		}
		if ts.After(now) || !now.Before(end) {
			continue
		}

		switch kind {
		case model.KindTempTarget:
			note := entry.Reason
			activeTarget = &note
			r.publisher.SetTempTarget(ctx, activeTarget)
		default:
			note := entry.Notes
			activeOverride = &note
			r.publisher.SetActiveOverride(ctx, activeOverride)
		}
	}

	// A pass with no qualifying entry of a kind clears that slot.
	if activeOverride == nil {
		r.publisher.SetActiveOverride(ctx, nil)
	}
	if activeTarget == nil {
		r.publisher.SetTempTarget(ctx, nil)
	}

	return activeOverride
}

// effectiveDuration computes how long the entry counts as running. An
// open-ended marker on the chronologically last entry stretches to one hour
// past the reference instant; everything else uses the declared minutes.
func (r *Reconciler) effectiveDuration(entry model.TreatmentEntry, ts, now time.Time, last bool) time.Duration {
	if entry.Ongoing() && last {
		return now.Sub(ts) + ongoingGrace
	}
	if entry.Duration == nil {
		return defaultDuration
	}
	return time.Duration(*entry.Duration * float64(time.Minute))
}
