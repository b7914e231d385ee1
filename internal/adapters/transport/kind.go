// Package transport dispatches remote override commands through exactly one
// configured transport: a shortcut deep link, a push notification, or an SMS.
package transport

import "github.com/okian/looplink/internal/config"

// Kind selects the transport. The set is closed; there is no fallback
// between transports at dispatch time.
type Kind int

const (
	KindShortcut Kind = iota
	KindPush
	KindSMS
)

// String returns the configuration spelling of the kind.
func (k Kind) String() string {
	switch k {
	case KindPush:
		return config.TransportPush
	case KindSMS:
		return config.TransportSMS
	default:
		return config.TransportShortcut
	}
}

// ParseKind maps a configuration value onto a Kind. Unknown values select
// the shortcut transport, matching the loader's normalization.
func ParseKind(value string) Kind {
	switch value {
	case config.TransportPush:
		return KindPush
	case config.TransportSMS:
		return KindSMS
	default:
		return KindShortcut
	}
}
