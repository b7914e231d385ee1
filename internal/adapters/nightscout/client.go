// Package nightscout fetches the remote profile and treatment-log feeds over
// the site's REST API.
package nightscout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/looplink/internal/domain/model"
	"github.com/okian/looplink/internal/domain/profile"
	"github.com/okian/looplink/pkg/logger"
)

// Client talks to one remote site.
type Client struct {
	base   *url.URL
	token  string
	http   *http.Client
	logger logger.Logger
}

// NewClient creates a client for the given site URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	c := &Client{
		base: base,
		http: &http.Client{Timeout: defaultTimeout},
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logger.Get()
	}

	return c, nil
}

// FetchProfile retrieves the current profile document. The endpoint answers
// with an array ordered most-recent-first; only the head document matters.
func (c *Client) FetchProfile(ctx context.Context) (*profile.Payload, error) {
	var payloads []profile.Payload
	if err := c.getJSON(ctx, "/api/v1/profile.json", nil, &payloads); err != nil {
		return nil, err
	}
	if len(payloads) == 0 {
		return nil, ErrEmptyProfile
	}
	return &payloads[0], nil
}

// FetchTreatments retrieves treatment-log entries created at or after the
// given instant, most recent first, capped to count entries.
func (c *Client) FetchTreatments(ctx context.Context, since time.Time, count int) ([]model.TreatmentEntry, error) {
	query := url.Values{}
	query.Set("find[created_at][$gte]", since.UTC().Format(time.RFC3339))
	if count > 0 {
		query.Set("count", strconv.Itoa(count))
	}

	var entries []model.TreatmentEntry
	if err := c.getJSON(ctx, "/api/v1/treatments.json", query, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// getJSON performs one GET against the site and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	if query == nil {
		query = url.Values{}
	}
	if c.token != "" {
		query.Set("token", c.token)
	}

	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: %s returned status %d", ErrFetch, path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", ErrFetch, path, err)
	}

	c.logger.Debug(ctx, "fetched remote document", logger.String("path", path))
	return nil
}
