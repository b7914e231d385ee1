// Package service provides the core service wiring the poll loop, the
// schedule and slot stores, and the command dispatcher behind the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/looplink/internal/adapters/nightscout"
	"github.com/okian/looplink/internal/adapters/slots"
	"github.com/okian/looplink/internal/adapters/transport"
	"github.com/okian/looplink/internal/config"
	"github.com/okian/looplink/internal/domain/model"
	"github.com/okian/looplink/internal/domain/profile"
	"github.com/okian/looplink/internal/domain/reconcile"
	"github.com/okian/looplink/internal/domain/schedule"
	"github.com/okian/looplink/pkg/logger"
	"github.com/okian/looplink/pkg/metrics"
)

// Fetcher is the subset of the site client the poll loop drives.
type Fetcher interface {
	FetchProfile(ctx context.Context) (*profile.Payload, error)
	FetchTreatments(ctx context.Context, since time.Time, count int) ([]model.TreatmentEntry, error)
}

// Commander sends remote override commands.
type Commander interface {
	Activate(ctx context.Context, override model.RemoteOverride) error
	Cancel(ctx context.Context) error
}

// Status is the UI-facing service snapshot.
type Status struct {
	Started           bool       `json:"started"`
	ActiveOverride    *string    `json:"activeOverride"`
	TempTarget        *string    `json:"tempTarget"`
	OverrideIndicator *float64   `json:"overrideIndicator"`
	LastProfileSync   *time.Time `json:"lastProfileSync"`
	Unit              string     `json:"unit"`
}

// ScheduleSnapshot carries the schedule values in effect at one instant.
// A nil field means the instant precedes the first breakpoint of that
// schedule, or the schedule is empty.
type ScheduleSnapshot struct {
	At          time.Time       `json:"at"`
	Sensitivity *model.Quantity `json:"sensitivity"`
	Basal       *float64        `json:"basal"`
	CarbRatio   *float64        `json:"carbRatio"`
	TargetLow   *model.Quantity `json:"targetLow"`
	TargetHigh  *model.Quantity `json:"targetHigh"`
}

// Service implements the API dependencies for the remote override system.
type Service struct {
	mu sync.RWMutex

	// Core components
	cfg        *config.Config
	slots      *slots.Store
	schedules  *schedule.Store
	ingestor   *profile.Ingestor
	reconciler *reconcile.Reconciler
	fetcher    Fetcher
	checker    nightscout.Checker
	dispatcher Commander

	// Injected authenticators for the SMS gate.
	biometric transport.Authenticator
	passcode  transport.Authenticator

	// State
	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the service configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFetcher injects a site client, for tests.
func WithFetcher(f Fetcher) Option {
	return func(s *Service) { s.fetcher = f }
}

// WithChecker injects a connectivity checker.
func WithChecker(c nightscout.Checker) Option {
	return func(s *Service) { s.checker = c }
}

// WithDispatcher injects a command dispatcher.
func WithDispatcher(d Commander) Option {
	return func(s *Service) { s.dispatcher = d }
}

// WithAuthenticators wires the biometric and passcode authenticators used
// by the SMS gate.
func WithAuthenticators(biometric, passcode transport.Authenticator) Option {
	return func(s *Service) {
		s.biometric = biometric
		s.passcode = passcode
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cfg:    config.New(context.Background()),
		stopCh: make(chan struct{}),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the stores, builds the transport stack, and launches
// the poll loop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.fetcher == nil && s.cfg.NightscoutURL == "" {
		return ErrNoSite
	}

	s.logger.Info(ctx, "starting remote override service...")

	s.slots = slots.NewStore(ctx)
	s.schedules = schedule.NewStore()
	s.ingestor = profile.NewIngestor(s.schedules, s.slots, profile.WithLogger(s.logger))
	s.reconciler = reconcile.NewReconciler(s.slots, reconcile.WithLogger(s.logger))

	if s.checker == nil {
		if s.cfg.ConnectivityProbeAddr == "" {
			s.checker = nightscout.AlwaysOnline{}
		} else {
			s.checker = nightscout.NewTCPChecker(
				s.cfg.ConnectivityProbeAddr,
				time.Duration(s.cfg.ConnectivityProbeTimeoutMS)*time.Millisecond,
			)
		}
	}

	if s.fetcher == nil {
		client, err := nightscout.NewClient(s.cfg.NightscoutURL,
			nightscout.WithToken(s.cfg.NightscoutToken),
			nightscout.WithLogger(s.logger),
		)
		if err != nil {
			return fmt.Errorf("building site client: %w", err)
		}
		s.fetcher = client
	}
	s.fetcher = nightscout.NewGated(s.fetcher, s.checker)

	if s.dispatcher == nil {
		s.dispatcher = s.buildDispatcher(ctx)
	}

	s.wg.Add(1)
	go s.pollLoop(ctx)

	s.started = true
	s.logger.Info(ctx, "remote override service started",
		logger.Int("pollIntervalSeconds", s.cfg.PollIntervalSeconds),
		logger.String("transport", s.cfg.Transport),
	)

	return nil
}

// buildDispatcher assembles the transport stack from configuration.
func (s *Service) buildDispatcher(ctx context.Context) Commander {
	composer := transport.NewComposer(s.cfg.CaregiverName, s.cfg.CommandSecret)
	kind := transport.ParseKind(s.cfg.Transport)

	opts := []transport.DispatcherOption{
		transport.WithLogger(s.logger),
		transport.WithShortcut(transport.NewShortcutSender(
			s.cfg.ShortcutName,
			transport.LoggingOpener{Logger: s.logger},
		)),
	}

	if s.cfg.APNSKeyPath != "" {
		push, err := transport.NewAPNSSender(
			s.cfg.APNSKeyPath, s.cfg.APNSKeyID, s.cfg.APNSTeamID,
			s.slots, s.cfg.CaregiverName, s.cfg.CommandSecret,
		)
		if err != nil {
			s.logger.Warn(ctx, "push transport unavailable", logger.Error(err))
		} else {
			opts = append(opts, transport.WithPush(push))
		}
	}

	if s.cfg.TwilioAccountSID != "" {
		biometric, passcode := s.biometric, s.passcode
		if biometric == nil || passcode == nil {
			// Without injected authenticators the SMS gate cannot verify
			// anyone and denies every dispatch.
			biometric = transport.StaticAuthenticator{Err: transport.ErrAuthenticatorUnavailable}
			passcode = transport.StaticAuthenticator{}
			s.logger.Warn(ctx, "no authenticators wired, sms dispatches will be denied")
		}
		sms := transport.NewTwilioSender(
			s.cfg.TwilioAccountSID, s.cfg.TwilioAuthToken,
			s.cfg.TwilioFromNumber, s.cfg.TwilioToNumber,
		)
		opts = append(opts, transport.WithSMS(sms, transport.NewGate(biometric, passcode)))
	}

	return transport.NewDispatcher(kind, composer, s.slots, opts...)
}

// pollLoop drives fetch, ingest, and reconcile on a fixed interval until
// shutdown. Stage failures are logged and counted, never fatal.
func (s *Service) pollLoop(ctx context.Context) {
	defer s.wg.Done()

	interval := time.Duration(s.cfg.PollIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.cycle(ctx)
		}
	}
}

// cycle runs one poll pass: profile fetch + ingest, treatment fetch +
// reconcile. The connectivity-gated fetcher fails fast while offline; the
// cycle is skipped, not queued.
func (s *Service) cycle(ctx context.Context) {
	metrics.RecordPollCycle()

	payload, err := s.fetcher.FetchProfile(ctx)
	switch {
	case errors.Is(err, nightscout.ErrNetworkUnavailable):
		metrics.RecordPollSkippedOffline()
		s.logger.Debug(ctx, "skipping poll cycle, network unavailable")
		return
	case err != nil:
		metrics.RecordPollStageError("fetch_profile")
		s.logger.Warn(ctx, "profile fetch failed", logger.Error(err))
	default:
		if err := s.ingestor.Ingest(ctx, payload); err != nil {
			metrics.RecordPollStageError("ingest")
			s.logger.Warn(ctx, "profile ingest failed", logger.Error(err))
		}
	}

	since := time.Now().Add(-time.Duration(s.cfg.TreatmentLookbackHours) * time.Hour)
	entries, err := s.fetcher.FetchTreatments(ctx, since, s.cfg.TreatmentFetchCount)
	if err != nil {
		if errors.Is(err, nightscout.ErrNetworkUnavailable) {
			metrics.RecordPollSkippedOffline()
			s.logger.Debug(ctx, "skipping treatment fetch, network unavailable")
		} else {
			metrics.RecordPollStageError("fetch_treatments")
			s.logger.Warn(ctx, "treatment fetch failed", logger.Error(err))
		}
		return
	}
	s.reconciler.Reconcile(ctx, entries, time.Now())
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping remote override service...")

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	s.wg.Wait()

	if s.slots != nil {
		_ = s.slots.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "remote override service stopped")
}

// Status returns the UI-facing snapshot of the shared slots.
func (s *Service) Status(ctx context.Context) Status {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()

	if !started {
		return Status{}
	}

	st := Status{
		Started:           true,
		ActiveOverride:    s.slots.ActiveOverride(ctx),
		TempTarget:        s.slots.TempTarget(ctx),
		OverrideIndicator: s.slots.OverrideIndicator(ctx),
		Unit:              s.schedules.Unit(ctx).String(),
	}
	if ts := s.slots.LastProfileSync(ctx); !ts.IsZero() {
		st.LastProfileSync = &ts
	}
	return st
}

// CurrentSchedule resolves every schedule at the given instant.
func (s *Service) CurrentSchedule(ctx context.Context, at time.Time) (ScheduleSnapshot, error) {
	if !s.isStarted() {
		return ScheduleSnapshot{}, ErrNotStarted
	}

	snap := ScheduleSnapshot{At: at}
	if v, ok := s.schedules.CurrentSensitivity(ctx, at); ok {
		snap.Sensitivity = &v
	}
	if v, ok := s.schedules.CurrentBasal(ctx, at); ok {
		snap.Basal = &v
	}
	if v, ok := s.schedules.CurrentCarbRatio(ctx, at); ok {
		snap.CarbRatio = &v
	}
	if v, ok := s.schedules.CurrentTargetLow(ctx, at); ok {
		snap.TargetLow = &v
	}
	if v, ok := s.schedules.CurrentTargetHigh(ctx, at); ok {
		snap.TargetHigh = &v
	}
	return snap, nil
}

// ListOverrides returns the override definitions from the last ingested
// profile.
func (s *Service) ListOverrides(ctx context.Context) ([]model.RemoteOverride, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	return s.schedules.Overrides(ctx), nil
}

// ActivateOverride dispatches an activation command for the named override.
func (s *Service) ActivateOverride(ctx context.Context, name string) error {
	if !s.isStarted() {
		return ErrNotStarted
	}

	override, ok := s.schedules.FindOverride(ctx, name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOverride, name)
	}
	return s.dispatcher.Activate(ctx, override)
}

// CancelOverride dispatches a cancellation command.
func (s *Service) CancelOverride(ctx context.Context) error {
	if !s.isStarted() {
		return ErrNotStarted
	}
	return s.dispatcher.Cancel(ctx)
}

func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}
