package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/looplink/internal/domain/model"
	"github.com/okian/looplink/internal/domain/schedule"
	"github.com/okian/looplink/pkg/logger"
	"github.com/okian/looplink/pkg/metrics"
)

// Default override definition values applied when the payload omits a field.
const (
	defaultOverridePercentage = 1.0
	defaultOverrideDuration   = 0.0
)

// ConfigSink receives the device/push configuration carried by the profile
// payload. Implemented by the shared slot store.
type ConfigSink interface {
	SetDeviceToken(ctx context.Context, token string)
	SetBundleIdentifier(ctx context.Context, id string)
	SetAPNSProduction(ctx context.Context, production bool)
	SetTeamID(ctx context.Context, id string)
	SetLastProfileSync(ctx context.Context, at time.Time)
}

// Ingestor parses remote profile payloads into the schedule store and the
// configuration slots. Ingestion is all-or-nothing: a payload whose declared
// default profile is missing leaves all prior state untouched.
type Ingestor struct {
	schedules *schedule.Store
	config    ConfigSink
	logger    logger.Logger
	now       func() time.Time
}

// Option applies a configuration option to the Ingestor.
type Option func(*Ingestor)

// WithLogger sets a custom logger for the ingestor.
func WithLogger(l logger.Logger) Option {
	return func(i *Ingestor) {
		if l != nil {
			i.logger = l
		}
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(i *Ingestor) {
		if now != nil {
			i.now = now
		}
	}
}

// NewIngestor creates an ingestor writing into the given stores.
func NewIngestor(schedules *schedule.Store, config ConfigSink, opts ...Option) *Ingestor {
	i := &Ingestor{
		schedules: schedules,
		config:    config,
		now:       time.Now,
	}

	// Apply all options
	for _, opt := range opts {
		opt(i)
	}

	if i.logger == nil {
		i.logger = logger.Get()
	}

	return i
}

// Ingest replaces the current schedule generation with the payload's default
// profile and forwards the payload's device/push configuration.
func (i *Ingestor) Ingest(ctx context.Context, payload *Payload) error {
	data, ok := payload.Store[payload.DefaultProfile]
	if !ok {
		metrics.RecordProfileIngestError()
		return fmt.Errorf("%w: %q", ErrProfileNotFound, payload.DefaultProfile)
	}

	unit := model.UnitMmolL
	if strings.EqualFold(data.Units, "mg/dl") {
		unit = model.UnitMgdL
	}

	set := schedule.Set{
		Sensitivity: quantityValues(data.Sens, unit),
		Basal:       numericValues(data.Basal),
		CarbRatio:   numericValues(data.CarbRatio),
		TargetLow:   quantityValues(data.TargetLow, unit),
		TargetHigh:  quantityValues(data.TargetHigh, unit),
		Overrides:   i.overrides(data, payload, unit),
		Location:    schedule.ResolveTimezone(data.Timezone),
		Unit:        unit,
	}
	i.schedules.Replace(ctx, set)

	// Device token and bundle id always overwrite, with an empty fallback.
	// Team id is the deliberate exception: an absent value preserves the
	// previously stored one.
	i.config.SetDeviceToken(ctx, stringOr(payload.DeviceToken, ""))
	i.config.SetBundleIdentifier(ctx, stringOr(payload.BundleIdentifier, ""))
	i.config.SetAPNSProduction(ctx, boolOr(payload.IsAPNSProduction, false))
	if payload.TeamID != nil {
		i.config.SetTeamID(ctx, *payload.TeamID)
	}
	i.config.SetLastProfileSync(ctx, i.now())

	metrics.RecordProfileIngest()
	metrics.UpdateScheduleBreakpoints("sens", len(set.Sensitivity))
	metrics.UpdateScheduleBreakpoints("basal", len(set.Basal))
	metrics.UpdateScheduleBreakpoints("carbratio", len(set.CarbRatio))
	metrics.UpdateScheduleBreakpoints("target_low", len(set.TargetLow))
	metrics.UpdateScheduleBreakpoints("target_high", len(set.TargetHigh))

	i.logger.Info(ctx, "ingested remote profile",
		logger.String("profile", payload.DefaultProfile),
		logger.String("timezone", set.Location.String()),
		logger.String("units", unit.String()),
		logger.Int("overrides", len(set.Overrides)),
	)
	return nil
}

// overrides maps the raw override definitions, preferring the profile-level
// array and falling back to the payload-level trio overrides.
func (i *Ingestor) overrides(data StoreData, payload *Payload, unit model.Unit) []model.RemoteOverride {
	raw := data.Overrides
	if len(raw) == 0 {
		raw = payload.TrioOverrides
	}

	out := make([]model.RemoteOverride, 0, len(raw))
	for _, o := range raw {
		def := model.RemoteOverride{
			Name:            o.Name,
			Percentage:      floatOr(o.Percentage, defaultOverridePercentage),
			DurationMinutes: floatOr(o.Duration, defaultOverrideDuration),
		}
		if o.Target != nil {
			def.Target = &model.Quantity{Value: *o.Target, Unit: unit}
		}
		out = append(out, def)
	}
	return out
}

func quantityValues(raw []TimeValueRaw, unit model.Unit) []model.TimeValue[model.Quantity] {
	out := make([]model.TimeValue[model.Quantity], 0, len(raw))
	for _, tv := range raw {
		out = append(out, model.TimeValue[model.Quantity]{
			TimeAsSeconds: tv.TimeAsSeconds,
			Value:         model.Quantity{Value: tv.Value, Unit: unit},
		})
	}
	return out
}

func numericValues(raw []TimeValueRaw) []model.TimeValue[float64] {
	out := make([]model.TimeValue[float64], 0, len(raw))
	for _, tv := range raw {
		out = append(out, model.TimeValue[float64]{
			TimeAsSeconds: tv.TimeAsSeconds,
			Value:         tv.Value,
		})
	}
	return out
}

func stringOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

func floatOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
