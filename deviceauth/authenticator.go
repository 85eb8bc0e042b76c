// Package deviceauth drives the OAuth2 device-code grant against the trakt
// authorization server: it requests a device code, shows it to the operator,
// polls in the background until the operator approves (or the code dies),
// and persists the resulting authorization token.
package deviceauth

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-trakt-server/internal/errors"
	"github.com/jrsteele09/go-trakt-server/token"
	"github.com/jrsteele09/go-trakt-server/trakt"
)

// DefaultPollInterval is used when the authorization server does not name a
// polling interval, and is the slow_down backoff increment. Overridable in
// tests.
var DefaultPollInterval = 5 * time.Second

// DeviceClient is the slice of the trakt client the authenticator needs.
type DeviceClient interface {
	DeviceCode(ctx context.Context) (*oauth2.DeviceAuthResponse, error)
	PollDeviceToken(ctx context.Context, deviceCode string) (*token.Token, trakt.PollStatus, error)
}

// PollHook is called once per poll tick; returning false aborts the
// handshake. The default hook always continues.
type PollHook func() bool

// Authenticator runs at most one device-code handshake at a time. A second
// Authenticate call while one is in flight is rejected immediately, never
// queued.
type Authenticator struct {
	client DeviceClient
	store  token.Store
	log    zerolog.Logger
	onPoll PollHook

	authenticating atomic.Bool
}

func New(client DeviceClient, store token.Store, log zerolog.Logger) *Authenticator {
	return &Authenticator{client: client, store: store, log: log}
}

// SetPollHook installs a progress hook invoked on every poll tick.
func (a *Authenticator) SetPollHook(hook PollHook) {
	a.onPoll = hook
}

type outcome struct {
	token *token.Token
	err   error
}

// Authenticate runs one full device-code handshake and blocks until a
// terminal outcome. On success the token is persisted (full replace) and
// returned. The handshake is bounded by the device code's own validity
// window; a tighter deadline can be set on ctx.
func (a *Authenticator) Authenticate(ctx context.Context) (*token.Token, error) {
	if !a.authenticating.CompareAndSwap(false, true) {
		a.log.Warn().Msg("authentication has already been started")
		return nil, errors.ErrAlreadyAuthenticating
	}
	defer a.authenticating.Store(false)

	code, err := a.client.DeviceCode(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to request device code")
	}

	a.log.Info().
		Str("user_code", code.UserCode).
		Str("verification_url", code.VerificationURI).
		Msgf("Enter the code %q at %s to authenticate your account", code.UserCode, code.VerificationURI)

	pollCtx := ctx
	if !code.Expiry.IsZero() {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithDeadline(ctx, code.Expiry)
		defer cancel()
	}

	results := make(chan outcome, 1)
	go a.poll(pollCtx, code, results)

	res := <-results
	if res.err != nil {
		return nil, res.err
	}

	if err := a.store.Save(res.token); err != nil {
		return nil, errors.Wrapf(err, "failed to persist authorization")
	}
	a.log.Info().Msg("authentication successful")
	return res.token, nil
}

// poll owns the device-code polling loop. It always delivers exactly one
// outcome on results. Transient tick failures are retried on the next
// interval; only the server's terminal answers or the validity-window
// deadline end the loop.
func (a *Authenticator) poll(ctx context.Context, code *oauth2.DeviceAuthResponse, results chan<- outcome) {
	interval := time.Duration(code.Interval) * time.Second
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				a.log.Warn().Msg("authentication expired")
				results <- outcome{err: errors.ErrAuthenticationExpired}
			} else {
				results <- outcome{err: ctx.Err()}
			}
			return
		case <-timer.C:
		}

		if a.onPoll != nil && !a.onPoll() {
			a.log.Warn().Msg("authentication aborted")
			results <- outcome{err: errors.ErrAuthenticationAborted}
			return
		}

		t, status, err := a.client.PollDeviceToken(ctx, code.DeviceCode)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				continue // deadline fires on the next select pass
			}
			a.log.Warn().Err(err).Msg("device token poll failed, retrying")
		case t != nil:
			results <- outcome{token: t}
			return
		case status == trakt.PollSlowDown:
			interval += DefaultPollInterval
		case status == trakt.PollDenied:
			a.log.Warn().Msg("authentication aborted")
			results <- outcome{err: errors.ErrAuthenticationAborted}
			return
		case status == trakt.PollExpired:
			a.log.Warn().Msg("authentication expired")
			results <- outcome{err: errors.ErrAuthenticationExpired}
			return
		}

		timer.Reset(interval)
	}
}

// LoadOrAuthenticate returns the persisted token if one exists, otherwise
// runs a fresh handshake. This is the startup path: a missing token file
// triggers device authentication without an explicit call.
func (a *Authenticator) LoadOrAuthenticate(ctx context.Context) (*token.Token, error) {
	t, err := a.store.Load()
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, errors.ErrTokenNotFound) {
		return nil, err
	}
	a.log.Info().Msg("no stored authorization, starting device authentication")
	return a.Authenticate(ctx)
}

// OnTokenRefreshed re-persists the token file whenever the API client
// silently exchanges the refresh token. Implements trakt.TokenSink.
func (a *Authenticator) OnTokenRefreshed(t *token.Token) {
	if err := a.store.Save(t); err != nil {
		a.log.Error().Err(err).Msg("failed to persist refreshed token")
		return
	}
	a.log.Info().Msg("token refreshed")
}

var _ trakt.TokenSink = (*Authenticator)(nil)
