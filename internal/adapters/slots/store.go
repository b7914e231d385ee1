// Package slots provides the process-wide observable key-value slots shared
// between the reconciler, the profile ingestor, the command dispatcher, and
// the UI-facing API.
//
// All mutation is serialized onto one run-loop goroutine so observers never
// see interleaved partial updates. Readers take a snapshot of a single slot;
// cross-slot atomicity is deliberately not offered.
package slots

import (
	"context"
	"sync"
	"time"

	"github.com/okian/looplink/pkg/metrics"
)

// Slot names a single observable value.
type Slot string

// The slots this store carries.
const (
	SlotActiveOverride    Slot = "active_override"
	SlotTempTarget        Slot = "temp_target"
	SlotOverrideIndicator Slot = "override_indicator"
	SlotDeviceToken       Slot = "device_token"
	SlotBundleIdentifier  Slot = "bundle_identifier"
	SlotAPNSProduction    Slot = "apns_production"
	SlotTeamID            Slot = "team_id"
	SlotLastProfileSync   Slot = "last_profile_sync"
)

// Change describes one slot write delivered to observers.
type Change struct {
	Slot  Slot
	Value any
}

// Observer receives slot changes. Observers run on the store's run-loop
// goroutine and must not write back into the store.
type Observer func(Change)

type observerEntry struct {
	id int
	fn Observer
}

// Store is the process-lifetime slot store.
type Store struct {
	mu sync.RWMutex

	activeOverride    *string
	tempTarget        *string
	overrideIndicator *float64
	deviceToken       string
	bundleIdentifier  string
	apnsProduction    bool
	teamID            string
	lastProfileSync   time.Time

	observers  map[Slot][]observerEntry
	nextObsID  int
	ops        chan func()
	closedOnce sync.Once
	closed     chan struct{}
}

// NewStore creates the store and starts its mutation run loop. The loop runs
// until Close or until ctx is cancelled.
func NewStore(ctx context.Context, opts ...Option) *Store {
	s := &Store{
		observers: make(map[Slot][]observerEntry),
		ops:       make(chan func(), defaultOpsBuffer),
		closed:    make(chan struct{}),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	go s.run(ctx)
	return s
}

// run executes mutations one at a time until shutdown.
func (s *Store) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.closed:
			return
		case op := <-s.ops:
			op()
		}
	}
}

// Close stops the run loop. The first call wins; later calls report
// ErrClosed. Writes issued after Close apply inline on the caller's
// goroutine; this only happens during process teardown.
func (s *Store) Close() error {
	var first bool
	s.closedOnce.Do(func() {
		first = true
		close(s.closed)
	})
	if !first {
		return ErrClosed
	}
	return nil
}

// do serializes a mutation onto the run loop and waits for it to apply.
func (s *Store) do(ctx context.Context, fn func()) {
	select {
	case <-s.closed:
		fn()
		return
	default:
	}

	done := make(chan struct{})
	wrapped := func() {
		fn()
		close(done)
	}

	select {
	case s.ops <- wrapped:
	case <-s.closed:
		fn()
		return
	case <-ctx.Done():
		return
	}

	select {
	case <-done:
	case <-ctx.Done():
	}
}

// notify delivers a change to the slot's observers.
func (s *Store) notify(slot Slot, value any) {
	s.mu.RLock()
	entries := make([]observerEntry, len(s.observers[slot]))
	copy(entries, s.observers[slot])
	s.mu.RUnlock()

	for _, e := range entries {
		e.fn(Change{Slot: slot, Value: value})
		metrics.RecordSlotNotification()
	}
}

// Subscribe registers an observer for one slot and returns its cancel func.
func (s *Store) Subscribe(slot Slot, fn Observer) func() {
	s.mu.Lock()
	s.nextObsID++
	id := s.nextObsID
	s.observers[slot] = append(s.observers[slot], observerEntry{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		entries := s.observers[slot]
		for i, e := range entries {
			if e.id == id {
				s.observers[slot] = append(entries[:i], entries[i+1:]...)
				break
			}
		}
	}
}

// SetActiveOverride publishes the note of the currently active override, or
// nil when none is active.
func (s *Store) SetActiveOverride(ctx context.Context, note *string) {
	s.do(ctx, func() {
		s.mu.Lock()
		s.activeOverride = cloneString(note)
		s.mu.Unlock()
		metrics.RecordSlotWrite()
		metrics.UpdateOverrideActive(note != nil)
		s.notify(SlotActiveOverride, cloneString(note))
	})
}

// ActiveOverride returns the note of the currently active override, if any.
func (s *Store) ActiveOverride(ctx context.Context) *string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneString(s.activeOverride)
}

// SetTempTarget publishes the reason of the currently active temp target.
func (s *Store) SetTempTarget(ctx context.Context, reason *string) {
	s.do(ctx, func() {
		s.mu.Lock()
		s.tempTarget = cloneString(reason)
		s.mu.Unlock()
		metrics.RecordSlotWrite()
		s.notify(SlotTempTarget, cloneString(reason))
	})
}

// TempTarget returns the reason of the currently active temp target, if any.
func (s *Store) TempTarget(ctx context.Context) *string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneString(s.tempTarget)
}

// SetOverrideIndicator records the percentage-scaled indicator shown after a
// successful activation.
func (s *Store) SetOverrideIndicator(ctx context.Context, pct *float64) {
	s.do(ctx, func() {
		s.mu.Lock()
		s.overrideIndicator = cloneFloat(pct)
		s.mu.Unlock()
		metrics.RecordSlotWrite()
		s.notify(SlotOverrideIndicator, cloneFloat(pct))
	})
}

// OverrideIndicator returns the percentage-scaled activation indicator.
func (s *Store) OverrideIndicator(ctx context.Context) *float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneFloat(s.overrideIndicator)
}

// SetDeviceToken overwrites the APNS device token.
func (s *Store) SetDeviceToken(ctx context.Context, token string) {
	s.do(ctx, func() {
		s.mu.Lock()
		s.deviceToken = token
		s.mu.Unlock()
		metrics.RecordSlotWrite()
		s.notify(SlotDeviceToken, token)
	})
}

// DeviceToken returns the APNS device token of the dosing device.
func (s *Store) DeviceToken(ctx context.Context) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deviceToken
}

// SetBundleIdentifier overwrites the app bundle identifier.
func (s *Store) SetBundleIdentifier(ctx context.Context, id string) {
	s.do(ctx, func() {
		s.mu.Lock()
		s.bundleIdentifier = id
		s.mu.Unlock()
		metrics.RecordSlotWrite()
		s.notify(SlotBundleIdentifier, id)
	})
}

// BundleIdentifier returns the app bundle identifier.
func (s *Store) BundleIdentifier(ctx context.Context) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bundleIdentifier
}

// SetAPNSProduction records whether pushes go to the production environment.
func (s *Store) SetAPNSProduction(ctx context.Context, production bool) {
	s.do(ctx, func() {
		s.mu.Lock()
		s.apnsProduction = production
		s.mu.Unlock()
		metrics.RecordSlotWrite()
		s.notify(SlotAPNSProduction, production)
	})
}

// APNSProduction reports whether pushes go to the production environment.
func (s *Store) APNSProduction(ctx context.Context) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.apnsProduction
}

// SetTeamID overwrites the developer team id. Ingestion only calls this when
// the payload carries a team id; an absent value preserves the previous one.
func (s *Store) SetTeamID(ctx context.Context, id string) {
	s.do(ctx, func() {
		s.mu.Lock()
		s.teamID = id
		s.mu.Unlock()
		metrics.RecordSlotWrite()
		s.notify(SlotTeamID, id)
	})
}

// TeamID returns the developer team id.
func (s *Store) TeamID(ctx context.Context) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.teamID
}

// SetLastProfileSync records the wall-clock time of the last profile ingest.
func (s *Store) SetLastProfileSync(ctx context.Context, at time.Time) {
	s.do(ctx, func() {
		s.mu.Lock()
		s.lastProfileSync = at
		s.mu.Unlock()
		metrics.RecordSlotWrite()
		s.notify(SlotLastProfileSync, at)
	})
}

// LastProfileSync returns the wall-clock time of the last profile ingest.
func (s *Store) LastProfileSync(ctx context.Context) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastProfileSync
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
