package transport

import (
	"context"
	"fmt"

	"github.com/sideshow/apns2"
	apnspayload "github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// PushConfig supplies the push destination learned from profile ingestion.
// Implemented by the shared slot store.
type PushConfig interface {
	DeviceToken(ctx context.Context) string
	BundleIdentifier(ctx context.Context) string
	APNSProduction(ctx context.Context) bool
}

// apnsPusher is the subset of the APNS client the sender needs. The real
// client satisfies it; tests substitute a fake.
type apnsPusher interface {
	PushWithContext(ctx apns2.Context, n *apns2.Notification) (*apns2.Response, error)
}

// APNSSender delivers commands as structured push notifications. Unlike the
// other transports it never sends the composed text; the receiving app wants
// fields, not lines.
type APNSSender struct {
	production  apnsPusher
	development apnsPusher
	config      PushConfig
	caregiver   string
	secret      string
}

// NewAPNSSender creates a sender authenticating with the p8 key at keyPath.
func NewAPNSSender(keyPath, keyID, teamID string, config PushConfig, caregiver, secret string) (*APNSSender, error) {
	authKey, err := token.AuthKeyFromFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: loading auth key: %v", ErrTransportFailure, err)
	}

	t := &token.Token{AuthKey: authKey, KeyID: keyID, TeamID: teamID}
	return &APNSSender{
		production:  apns2.NewTokenClient(t).Production(),
		development: apns2.NewTokenClient(t).Development(),
		config:      config,
		caregiver:   caregiver,
		secret:      secret,
	}, nil
}

// Push sends the command to the device token learned from the last ingested
// profile, against the environment the profile declared.
func (s *APNSSender) Push(ctx context.Context, req Request) error {
	deviceToken := s.config.DeviceToken(ctx)
	if deviceToken == "" {
		return fmt.Errorf("%w: no device token ingested yet", ErrTransportFailure)
	}

	p := apnspayload.NewPayload().
		ContentAvailable().
		Custom("entered_by", s.caregiver).
		Custom("secret", s.secret)
	if req.Action == ActionCancel {
		p = p.Custom("cancel_override", true)
	} else {
		p = p.Custom("override_name", req.Override.Name)
	}

	client := s.development
	if s.config.APNSProduction(ctx) {
		client = s.production
	}

	res, err := client.PushWithContext(ctx, &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       s.config.BundleIdentifier(ctx),
		Payload:     p,
		PushType:    apns2.PushTypeBackground,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransportFailure, err)
	}
	if !res.Sent() {
		return fmt.Errorf("%w: apns refused: %s", ErrTransportFailure, res.Reason)
	}
	return nil
}
