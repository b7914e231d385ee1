package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/looplink/internal/domain/model"
	"github.com/okian/looplink/pkg/logger"
	"github.com/okian/looplink/pkg/metrics"
)

// ShortcutLauncher launches the shortcut transport with the composed text.
type ShortcutLauncher interface {
	Launch(ctx context.Context, message string) error
}

// PushCapability delivers the structured push variant of the command.
type PushCapability interface {
	Push(ctx context.Context, req Request) error
}

// Authorizer gates a dispatch before it may send.
type Authorizer interface {
	Authorize(ctx context.Context) error
}

// SlotSink receives the state updates a finished dispatch owes the UI.
// Implemented by the shared slot store.
type SlotSink interface {
	SetActiveOverride(ctx context.Context, note *string)
	SetOverrideIndicator(ctx context.Context, pct *float64)
}

// Dispatcher sends remote commands through exactly one configured transport.
// A failing transport reports failure; it never retries through another.
type Dispatcher struct {
	kind     Kind
	composer *Composer
	slots    SlotSink
	shortcut ShortcutLauncher
	push     PushCapability
	sms      MessageSender
	gate     Authorizer
	logger   logger.Logger
}

// DispatcherOption applies a configuration option to the Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithShortcut wires the shortcut transport.
func WithShortcut(s ShortcutLauncher) DispatcherOption {
	return func(d *Dispatcher) { d.shortcut = s }
}

// WithPush wires the push transport.
func WithPush(p PushCapability) DispatcherOption {
	return func(d *Dispatcher) { d.push = p }
}

// WithSMS wires the SMS transport behind the given gate.
func WithSMS(s MessageSender, gate Authorizer) DispatcherOption {
	return func(d *Dispatcher) {
		d.sms = s
		d.gate = gate
	}
}

// WithLogger sets a custom logger for the dispatcher.
func WithLogger(l logger.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher creates a dispatcher bound to one transport kind.
func NewDispatcher(kind Kind, composer *Composer, slots SlotSink, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		kind:     kind,
		composer: composer,
		slots:    slots,
	}

	// Apply all options
	for _, opt := range opts {
		opt(d)
	}

	if d.logger == nil {
		d.logger = logger.Get()
	}

	return d
}

// Activate sends an activation command for the given override definition.
func (d *Dispatcher) Activate(ctx context.Context, override model.RemoteOverride) error {
	return d.dispatch(ctx, Request{
		ID:       uuid.NewString(),
		Action:   ActionActivate,
		Override: override,
	})
}

// Cancel sends a cancellation command.
func (d *Dispatcher) Cancel(ctx context.Context) error {
	return d.dispatch(ctx, Request{
		ID:     uuid.NewString(),
		Action: ActionCancel,
	})
}

// dispatch composes, sends, and records the outcome. Successful activation
// publishes the percentage-scaled indicator; successful cancellation clears
// the shared active-override slot.
func (d *Dispatcher) dispatch(ctx context.Context, req Request) error {
	started := time.Now()
	message := d.composer.Compose(req)

	err := d.send(ctx, req, message)

	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	metrics.RecordDispatch(d.kind.String(), outcome)
	metrics.RecordDispatchLatency(d.kind.String(), float64(time.Since(started).Nanoseconds())/1e6)

	if err != nil {
		d.logger.Warn(ctx, "dispatch failed",
			logger.String("command_id", req.ID),
			logger.String("transport", d.kind.String()),
			logger.Error(err),
		)
		return err
	}

	if req.Action == ActionCancel {
		d.slots.SetActiveOverride(ctx, nil)
		d.slots.SetOverrideIndicator(ctx, nil)
	} else {
		pct := req.Override.Percentage * 100
		d.slots.SetOverrideIndicator(ctx, &pct)
	}

	d.logger.Info(ctx, "dispatched remote command",
		logger.String("command_id", req.ID),
		logger.String("transport", d.kind.String()),
		logger.String("override", req.Override.Name),
	)
	return nil
}

// send routes the request to the configured transport.
func (d *Dispatcher) send(ctx context.Context, req Request, message string) error {
	switch d.kind {
	case KindShortcut:
		if d.shortcut == nil {
			return fmt.Errorf("%w: shortcut transport not wired", ErrTransportFailure)
		}
		return d.shortcut.Launch(ctx, message)
	case KindPush:
		if d.push == nil {
			return fmt.Errorf("%w: push transport not wired", ErrTransportFailure)
		}
		return d.push.Push(ctx, req)
	case KindSMS:
		if d.sms == nil || d.gate == nil {
			return fmt.Errorf("%w: sms transport not wired", ErrTransportFailure)
		}
		if err := d.gate.Authorize(ctx); err != nil {
			return err
		}
		return d.sms.SendText(ctx, message)
	default:
		return fmt.Errorf("%w: unknown transport", ErrTransportFailure)
	}
}
