// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// NightscoutURL is the base URL of the Nightscout/Trio site.
	NightscoutURL string `koanf:"nightscout_url"`

	// NightscoutToken is the access token appended to fetch requests.
	NightscoutToken string `koanf:"nightscout_token"`

	// PollIntervalSeconds controls how often the profile and treatment log are fetched.
	PollIntervalSeconds int `koanf:"poll_interval_seconds"`

	// TreatmentLookbackHours bounds how far back the treatment-log fetch reaches.
	TreatmentLookbackHours int `koanf:"treatment_lookback_hours"`

	// TreatmentFetchCount caps the number of treatment entries per fetch.
	TreatmentFetchCount int `koanf:"treatment_fetch_count"`

	// Transport selects the remote-command transport: shortcut, push, or sms.
	// Unknown values fall back to shortcut at load time.
	Transport string `koanf:"transport"`

	// CaregiverName is stamped into the "Entered By" line of composed commands.
	CaregiverName string `koanf:"caregiver_name"`

	// CommandSecret is the shared secret stamped into composed commands.
	CommandSecret string `koanf:"command_secret"`

	// ShortcutName is the receiving automation for the shortcut transport.
	ShortcutName string `koanf:"shortcut_name"`

	// APNS token-authentication settings for the push transport.
	APNSKeyPath string `koanf:"apns_key_path"`
	APNSKeyID   string `koanf:"apns_key_id"`
	APNSTeamID  string `koanf:"apns_team_id"`

	// Twilio settings for the SMS transport.
	TwilioAccountSID string `koanf:"twilio_account_sid"`
	TwilioAuthToken  string `koanf:"twilio_auth_token"`
	TwilioFromNumber string `koanf:"twilio_from_number"`
	TwilioToNumber   string `koanf:"twilio_to_number"`

	// ConnectivityProbeAddr is the TCP address dialed to decide whether fetches run.
	ConnectivityProbeAddr string `koanf:"connectivity_probe_addr"`

	// ConnectivityProbeTimeoutMS bounds the connectivity probe dial.
	ConnectivityProbeTimeoutMS int `koanf:"connectivity_probe_timeout_ms"`
}

// Transport values accepted by the dispatcher.
const (
	TransportShortcut = "shortcut"
	TransportPush     = "push"
	TransportSMS      = "sms"
)

// New creates a Config using defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use and currently
// unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:                   "info",
		Addr:                       ":9080",
		NightscoutURL:              "",
		NightscoutToken:            "",
		PollIntervalSeconds:        30,
		TreatmentLookbackHours:     24,
		TreatmentFetchCount:        100,
		Transport:                  TransportShortcut,
		CaregiverName:              "",
		CommandSecret:              "",
		ShortcutName:               "Trio Remote",
		ConnectivityProbeAddr:      "1.1.1.1:443",
		ConnectivityProbeTimeoutMS: 1500,
	}
	return c
}
