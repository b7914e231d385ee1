package nightscout

import (
	"net/http"
	"time"

	"github.com/okian/looplink/pkg/logger"
)

const defaultTimeout = 10 * time.Second

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithToken sets the site access token appended to every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http.Timeout = timeout
		}
	}
}

// WithHTTPClient injects a custom HTTP client, for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
