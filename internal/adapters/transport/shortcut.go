package transport

import (
	"context"
	"fmt"
	"net/url"

	"github.com/okian/looplink/pkg/logger"
)

// URLOpener hands a deep link to the platform. Opening is the platform's
// business; the sender only builds the link.
type URLOpener interface {
	Open(ctx context.Context, link string) error
}

// ShortcutSender launches the receiving automation through a run-shortcut
// deep link carrying the composed message as its text input.
type ShortcutSender struct {
	shortcutName string
	opener       URLOpener
}

// NewShortcutSender creates a sender targeting the named automation.
func NewShortcutSender(shortcutName string, opener URLOpener) *ShortcutSender {
	return &ShortcutSender{shortcutName: shortcutName, opener: opener}
}

// Launch builds the deep link and asks the opener to open it.
func (s *ShortcutSender) Launch(ctx context.Context, message string) error {
	link := url.URL{
		Scheme: "shortcuts",
		Host:   "run-shortcut",
		RawQuery: url.Values{
			"name":  {s.shortcutName},
			"input": {"text"},
			"text":  {message},
		}.Encode(),
	}

	if err := s.opener.Open(ctx, link.String()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	return nil
}

// LoggingOpener records the deep link instead of opening it, for headless
// deployments where a companion process watches the log.
type LoggingOpener struct {
	Logger logger.Logger
}

// Open logs the link.
func (o LoggingOpener) Open(ctx context.Context, link string) error {
	l := o.Logger
	if l == nil {
		l = logger.Get()
	}
	l.Info(ctx, "shortcut deep link ready", logger.String("url", link))
	return nil
}
