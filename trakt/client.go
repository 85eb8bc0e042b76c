package trakt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-trakt-server/internal/config"
	"github.com/jrsteele09/go-trakt-server/token"
)

const (
	apiVersion  = "2"
	contentType = "application/json"
)

// HTTPError captures an unexpected status code and response body from the
// trakt API.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status code: %d, body: %s", e.StatusCode, string(e.Body))
}

// Client talks to the trakt API: device-code grant endpoints, token refresh
// and the resource endpoints consumed by the HTTP facade.
type Client struct {
	baseURL   string
	creds     *config.Credentials
	client    *http.Client
	log       zerolog.Logger
	tokens    *TokenSource
	sleepFunc func(d time.Duration)
}

// NewClient builds a client for the given API base URL. The token source is
// attached later, once a token is in hand (see SetToken).
func NewClient(baseURL string, creds *config.Credentials, log zerolog.Logger) *Client {
	c := &Client{
		baseURL:   baseURL,
		creds:     creds,
		client:    &http.Client{Timeout: 30 * time.Second},
		log:       log,
		sleepFunc: time.Sleep,
	}
	c.tokens = newTokenSource(c)
	return c
}

// SetSleepForTest replaces the retry backoff sleep in tests.
func (c *Client) SetSleepForTest(sleep func(d time.Duration)) {
	c.sleepFunc = sleep
}

// SetToken seeds the client's token source with the current authorization.
func (c *Client) SetToken(t *token.Token) {
	c.tokens.setToken(t)
}

// OnTokenRefreshed registers a sink invoked whenever the token source
// exchanges the refresh token for a new authorization.
func (c *Client) OnTokenRefreshed(sink TokenSink) {
	c.tokens.addSink(sink)
}

// roHeaders are sent on calls that need no user authorization.
func (c *Client) roHeaders(req *http.Request) {
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("trakt-api-key", c.creds.ClientID)
	req.Header.Set("trakt-api-version", apiVersion)
}

// rwHeaders additionally bear the current access token, refreshing it first
// if it has expired.
func (c *Client) rwHeaders(ctx context.Context, req *http.Request) error {
	c.roHeaders(req)
	access, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+access)
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	return req, nil
}

// do runs the request and decodes a 2xx JSON response into out (when out is
// non-nil). Retryable statuses (429, 5xx) are re-attempted with exponential
// backoff and jitter before giving up.
func (c *Client) do(req *http.Request, out any) error {
	const (
		maxRetries = 3
		baseDelay  = 1 * time.Second
		maxDelay   = 16 * time.Second
	)

	var body []byte
	delay := baseDelay
	for attempt := 0; ; attempt++ {
		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		body, err = io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			break
		}

		httpErr := &HTTPError{StatusCode: resp.StatusCode, Body: body}
		if !retryable(resp.StatusCode) || attempt == maxRetries-1 {
			return httpErr
		}

		c.log.Debug().Int("status", resp.StatusCode).Str("url", req.URL.String()).Msg("retrying trakt request")
		jitter := time.Duration(rand.Int63n(int64(delay)))
		c.sleepFunc(delay + jitter)
		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}

		if req.GetBody != nil {
			req.Body, err = req.GetBody()
			if err != nil {
				return err
			}
		}
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func (c *Client) getJSON(ctx context.Context, path string, authorized bool, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if authorized {
		if err := c.rwHeaders(ctx, req); err != nil {
			return err
		}
	} else {
		c.roHeaders(req)
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	req, err := c.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	if err := c.rwHeaders(ctx, req); err != nil {
		return err
	}
	return c.do(req, out)
}
