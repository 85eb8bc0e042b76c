package trakt

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-trakt-server/internal/errors"
	"github.com/jrsteele09/go-trakt-server/token"
)

// TokenSink is notified whenever the current authorization is replaced by a
// refreshed one, so the replacement can be re-persisted.
type TokenSink interface {
	OnTokenRefreshed(*token.Token)
}

// TokenSinkFunc adapts a function to the TokenSink interface.
type TokenSinkFunc func(*token.Token)

func (f TokenSinkFunc) OnTokenRefreshed(t *token.Token) { f(t) }

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURI  string `json:"redirect_uri"`
	GrantType    string `json:"grant_type"`
}

// RefreshToken exchanges a refresh token for a fresh authorization. The
// token endpoint takes a JSON body rather than the form encoding of RFC 6749.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*token.Token, error) {
	req, err := c.newRequest(ctx, "POST", "/oauth/token", refreshRequest{
		RefreshToken: refreshToken,
		ClientID:     c.creds.ClientID,
		ClientSecret: c.creds.ClientSecret,
		RedirectURI:  "urn:ietf:wg:oauth:2.0:oob",
		GrantType:    "refresh_token",
	})
	if err != nil {
		return nil, err
	}
	c.roHeaders(req)

	var t token.Token
	if err := c.do(req, &t); err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	return &t, nil
}

// TokenSource hands out a valid access token for API calls, silently
// exchanging the refresh token when the current one has expired and
// notifying registered sinks of the replacement. It also satisfies
// oauth2.TokenSource so the client can feed any oauth2-aware consumer.
type TokenSource struct {
	client *Client

	mu      sync.Mutex
	current *token.Token
	sinks   []TokenSink
}

var _ oauth2.TokenSource = (*TokenSource)(nil)

func newTokenSource(c *Client) *TokenSource {
	return &TokenSource{client: c}
}

func (ts *TokenSource) setToken(t *token.Token) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.current = t
}

func (ts *TokenSource) addSink(sink TokenSink) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.sinks = append(ts.sinks, sink)
}

// AccessToken returns a usable access token, refreshing first if needed.
func (ts *TokenSource) AccessToken(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.current == nil || ts.current.AccessToken == "" {
		return "", errors.ErrAuthenticationRequired
	}
	if ts.current.Valid() {
		return ts.current.AccessToken, nil
	}
	if ts.current.RefreshToken == "" {
		return "", errors.ErrAuthenticationRequired
	}

	refreshed, err := ts.client.RefreshToken(ctx, ts.current.RefreshToken)
	if err != nil {
		return "", err
	}
	ts.current = refreshed
	for _, sink := range ts.sinks {
		sink.OnTokenRefreshed(refreshed)
	}
	return refreshed.AccessToken, nil
}

// Token implements oauth2.TokenSource.
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	if _, err := ts.AccessToken(context.Background()); err != nil {
		return nil, err
	}
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.current.OAuth2(), nil
}
