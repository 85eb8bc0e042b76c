package dbsync

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/goccy/go-json"
)

// Client is a session-cookie HTTP client for one personal-data service.
type Client struct {
	Endpoint string

	email    string
	password string
	client   *http.Client
}

func NewClient(endpoint, email, password string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		Endpoint: endpoint,
		email:    email,
		password: password,
		client:   &http.Client{Jar: jar, Timeout: 60 * time.Second},
	}, nil
}

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login posts credentials and keeps the session cookie for later calls.
func (c *Client) Login(ctx context.Context) error {
	body, err := json.Marshal(authRequest{Email: c.email, Password: c.password})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint+"/api/auth", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("auth returned status %d", resp.StatusCode)
	}
	return nil
}

type tableModified struct {
	Table        string    `json:"table"`
	LastModified time.Time `json:"last_modified"`
}

// LastModified fetches the per-table modification timestamps.
func (c *Client) LastModified(ctx context.Context) (map[string]time.Time, error) {
	var entries []tableModified
	if err := c.getJSON(ctx, "/list/last_modified", &entries); err != nil {
		return nil, fmt.Errorf("failed to fetch last_modified from %s: %w", c.Endpoint, err)
	}
	mods := make(map[string]time.Time, len(entries))
	for _, e := range entries {
		mods[e.Table] = e.LastModified
	}
	return mods, nil
}

// Rows fetches the rows of a table modified at or after since. Rows stay
// opaque; the services own their shapes.
func (c *Client) Rows(ctx context.Context, table string, since time.Time) ([]json.RawMessage, error) {
	params := url.Values{"start_timestamp": {since.UTC().Format(time.RFC3339)}}
	var rows []json.RawMessage
	if err := c.getJSON(ctx, "/list/"+url.PathEscape(table)+"?"+params.Encode(), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Push uploads rows under the payload key the receiving service expects.
func (c *Client) Push(ctx context.Context, table, key string, rows []json.RawMessage) error {
	body, err := json.Marshal(map[string][]json.RawMessage{key: rows})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint+"/list/"+url.PathEscape(table), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		text, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("push to %s/%s returned status %d: %s", c.Endpoint, table, resp.StatusCode, text)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("GET %s returned status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
