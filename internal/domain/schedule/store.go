package schedule

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/okian/looplink/internal/domain/model"
)

// Store holds the current schedule generation. The whole Set is replaced on
// each successful profile ingestion and cleared on explicit reset; readers
// always observe a complete generation.
type Store struct {
	mu  sync.RWMutex
	set Set
}

// NewStore creates an empty store resolving against UTC until the first
// ingestion supplies a profile timezone.
func NewStore() *Store {
	return &Store{set: Set{Location: time.UTC}}
}

// Replace installs a new schedule generation wholesale.
func (s *Store) Replace(ctx context.Context, set Set) {
	if set.Location == nil {
		set.Location = time.UTC
	}
	// Own the slices so later payload reuse by the caller cannot alias in.
	set.Sensitivity = slices.Clone(set.Sensitivity)
	set.Basal = slices.Clone(set.Basal)
	set.CarbRatio = slices.Clone(set.CarbRatio)
	set.TargetLow = slices.Clone(set.TargetLow)
	set.TargetHigh = slices.Clone(set.TargetHigh)
	set.Overrides = slices.Clone(set.Overrides)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.set = set
}

// Reset clears the store back to its empty default.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set = Set{Location: time.UTC}
}

// Snapshot returns the current generation.
func (s *Store) Snapshot(ctx context.Context) Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set
}

// Overrides returns the selectable remote override definitions.
func (s *Store) Overrides(ctx context.Context) []model.RemoteOverride {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.set.Overrides)
}

// FindOverride looks up a remote override by its unique name.
func (s *Store) FindOverride(ctx context.Context, name string) (model.RemoteOverride, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.set.Overrides {
		if o.Name == name {
			return o, true
		}
	}
	return model.RemoteOverride{}, false
}

// Unit returns the measurement unit of the current generation.
func (s *Store) Unit(ctx context.Context) model.Unit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set.Unit
}

// CurrentSensitivity resolves the insulin sensitivity in effect at the instant.
func (s *Store) CurrentSensitivity(ctx context.Context, at time.Time) (model.Quantity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CurrentValue(s.set.Sensitivity, at, s.set.Location)
}

// CurrentBasal resolves the basal rate in effect at the instant.
func (s *Store) CurrentBasal(ctx context.Context, at time.Time) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CurrentValue(s.set.Basal, at, s.set.Location)
}

// CurrentCarbRatio resolves the carb ratio in effect at the instant.
func (s *Store) CurrentCarbRatio(ctx context.Context, at time.Time) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CurrentValue(s.set.CarbRatio, at, s.set.Location)
}

// CurrentTargetLow resolves the low glucose target in effect at the instant.
func (s *Store) CurrentTargetLow(ctx context.Context, at time.Time) (model.Quantity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CurrentValue(s.set.TargetLow, at, s.set.Location)
}

// CurrentTargetHigh resolves the high glucose target in effect at the instant.
func (s *Store) CurrentTargetHigh(ctx context.Context, at time.Time) (model.Quantity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CurrentValue(s.set.TargetHigh, at, s.set.Location)
}
