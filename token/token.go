package token

import (
	"time"

	"golang.org/x/oauth2"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Token is the authorization payload issued by the trakt token endpoint.
// It is treated as an opaque bag: stored verbatim, replayed verbatim, and
// replaced wholesale on every refresh or re-authentication.
type Token struct {
	// AccessToken authorizes API calls via "Authorization: Bearer <token>".
	AccessToken string `json:"access_token"`

	// TokenType is always "bearer" for this authorization server.
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the access token lifetime in seconds from CreatedAt.
	ExpiresIn int64 `json:"expires_in,omitempty"`

	// RefreshToken is exchanged for a new access token once ExpiresIn lapses.
	RefreshToken string `json:"refresh_token,omitempty"`

	// Scope is the space-separated list of granted scopes.
	Scope string `json:"scope,omitempty"`

	// CreatedAt is the server-side issue time as a unix timestamp.
	CreatedAt int64 `json:"created_at,omitempty"`
}

// Expiry returns the absolute expiry time of the access token. A token
// without expiry information never expires.
func (t *Token) Expiry() time.Time {
	if t.ExpiresIn == 0 {
		return time.Time{}
	}
	return time.Unix(t.CreatedAt, 0).Add(time.Duration(t.ExpiresIn) * time.Second)
}

// Expired reports whether the access token is past its expiry window.
func (t *Token) Expired() bool {
	expiry := t.Expiry()
	if expiry.IsZero() {
		return false
	}
	return NowTimeFunc().After(expiry)
}

// Valid reports whether the token can be sent on an API call as-is.
func (t *Token) Valid() bool {
	return t != nil && t.AccessToken != "" && !t.Expired()
}

// OAuth2 converts the bag into an *oauth2.Token so it can seed an
// auto-refreshing oauth2 token source.
func (t *Token) OAuth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       t.Expiry(),
	}
}

// FromOAuth2 converts a refreshed *oauth2.Token back into the persisted
// shape, preserving the scope the original grant carried.
func FromOAuth2(ot *oauth2.Token, scope string) *Token {
	t := &Token{
		AccessToken:  ot.AccessToken,
		TokenType:    ot.TokenType,
		RefreshToken: ot.RefreshToken,
		Scope:        scope,
	}
	if !ot.Expiry.IsZero() {
		t.CreatedAt = NowTimeFunc().Unix()
		t.ExpiresIn = int64(ot.Expiry.Sub(NowTimeFunc()) / time.Second)
	}
	return t
}
