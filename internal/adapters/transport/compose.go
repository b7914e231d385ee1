package transport

import (
	"strings"

	"github.com/okian/looplink/internal/domain/model"
)

// Fixed lines of the command wire format. The receiving automation parses
// the message by line position, so the exact bytes matter.
const (
	messageHeader = "Remote Override"
	cancelMarker  = "Cancel Remote Override"
)

// Action is what the command asks the dosing device to do.
type Action int

const (
	ActionActivate Action = iota
	ActionCancel
)

// Request is one remote command. It is built per user action and consumed
// immediately by the dispatcher; nothing persists it.
type Request struct {
	ID       string
	Action   Action
	Override model.RemoteOverride
}

// Composer renders requests into the line-oriented command format shared by
// the shortcut and SMS transports.
type Composer struct {
	caregiver string
	secret    string
}

// NewComposer creates a composer stamping the given caregiver and secret
// into every message.
func NewComposer(caregiver, secret string) *Composer {
	return &Composer{caregiver: caregiver, secret: secret}
}

// Compose renders the request. Activation carries the override name on the
// second line; cancellation replaces it with the fixed marker.
func (c *Composer) Compose(req Request) string {
	subject := req.Override.Name
	if req.Action == ActionCancel {
		subject = cancelMarker
	}

	return strings.Join([]string{
		messageHeader,
		subject,
		"Entered By: " + c.caregiver,
		"Secret Code: " + c.secret,
	}, "\n")
}
