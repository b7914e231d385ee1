package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New(ctx))
//  2. file (YAML) if LOOPLINK_CONFIG is set
//  3. env (prefix LOOPLINK_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("LOOPLINK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: LOOPLINK_ADDR, LOOPLINK_NIGHTSCOUT_URL, ...
	// Map env keys like LOOPLINK_POLL_INTERVAL_SECONDS -> poll_interval_seconds.
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("LOOPLINK_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "looplink_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Basic validation
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if cfg.PollIntervalSeconds <= 0 {
		return nil, fmt.Errorf("%w: poll_interval_seconds must be positive", ErrInvalidConfig)
	}
	if cfg.TreatmentLookbackHours <= 0 {
		return nil, fmt.Errorf("%w: treatment_lookback_hours must be positive", ErrInvalidConfig)
	}

	// Unknown transport values map to the shortcut transport rather than
	// failing the load; the shortcut transport needs no credentials.
	switch strings.ToLower(strings.TrimSpace(cfg.Transport)) {
	case TransportShortcut, TransportPush, TransportSMS:
		cfg.Transport = strings.ToLower(strings.TrimSpace(cfg.Transport))
	default:
		cfg.Transport = TransportShortcut
	}

	return &cfg, nil
}
