// Package twitch fetches a channel's current game and stream title from a
// plain-text lookup service (decapi.me by default).
package twitch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public lookup service.
const DefaultBaseURL = "https://decapi.me"

// maxBody caps how much of a response is read; titles are short.
const maxBody = 64 << 10

var (
	// ErrNoChannel is returned when no channel name is configured.
	ErrNoChannel = errors.New("twitch channel not set")
	// ErrUnexpectedStatus is returned for any non-200 response.
	ErrUnexpectedStatus = errors.New("unexpected status from title API")
)

// Client queries the lookup service. The zero value is not usable; build
// one with [NewClient].
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Limiter *rate.Limiter
}

// NewClient returns a client for baseURL with a per-request timeout and a
// limiter of one request per second with a burst of four, enough for the two
// lookups of a rename plus a doctor probe.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		Limiter: rate.NewLimiter(rate.Every(time.Second), 4),
	}
}

// Title returns the channel's current stream title.
func (c *Client) Title(ctx context.Context, channel string) (string, error) {
	return c.get(ctx, "title", channel)
}

// Game returns the channel's current game (category).
func (c *Client) Game(ctx context.Context, channel string) (string, error) {
	return c.get(ctx, "game", channel)
}

func (c *Client) get(ctx context.Context, kind, channel string) (string, error) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return "", ErrNoChannel
	}
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	endpoint := c.BaseURL + "/twitch/" + kind + "/" + url.PathEscape(channel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching twitch %s: %w", kind, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", fmt.Errorf("reading twitch %s: %w", kind, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: twitch %s: HTTP %d: %s", ErrUnexpectedStatus, kind, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return strings.TrimSpace(string(body)), nil
}
