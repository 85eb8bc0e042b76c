package trakt

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-trakt-server/token"
)

// PollStatus is the outcome of a single device-token poll tick.
type PollStatus int

const (
	// PollPending means the operator has not approved the code yet.
	PollPending PollStatus = iota
	// PollSlowDown means the server wants a longer interval between ticks.
	PollSlowDown
	// PollDenied means the operator rejected the device code.
	PollDenied
	// PollExpired means the device code's validity window has lapsed.
	PollExpired
)

// RFC 8628 error codes, for servers that answer polls with a 400 + error
// body instead of a bare status code.
const (
	errAuthorizationPending = "authorization_pending"
	errSlowDown             = "slow_down"
	errAccessDenied         = "access_denied"
	errExpiredToken         = "expired_token"
)

type deviceCodeRequest struct {
	ClientID string `json:"client_id"`
}

type deviceCodeResponse struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURL string `json:"verification_url"`
	ExpiresIn       int64  `json:"expires_in"`
	Interval        int64  `json:"interval"`
}

type deviceTokenRequest struct {
	Code         string `json:"code"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type deviceErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// DeviceCode requests a new device code from the authorization server. The
// operator enters the returned user code at the verification URL while the
// authenticator polls with the device code.
func (c *Client) DeviceCode(ctx context.Context) (*oauth2.DeviceAuthResponse, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/oauth/device/code", deviceCodeRequest{ClientID: c.creds.ClientID})
	if err != nil {
		return nil, err
	}
	c.roHeaders(req)

	var resp deviceCodeResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("failed to request device code: %w", err)
	}

	return &oauth2.DeviceAuthResponse{
		DeviceCode:      resp.DeviceCode,
		UserCode:        resp.UserCode,
		VerificationURI: resp.VerificationURL,
		Expiry:          token.NowTimeFunc().Add(time.Duration(resp.ExpiresIn) * time.Second),
		Interval:        resp.Interval,
	}, nil
}

// PollDeviceToken performs one poll tick against the device token endpoint.
// A nil token with a nil error means the handshake is still in progress;
// status then says whether to keep the current interval, back off, or stop.
func (c *Client) PollDeviceToken(ctx context.Context, deviceCode string) (*token.Token, PollStatus, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/oauth/device/token", deviceTokenRequest{
		Code:         deviceCode,
		ClientID:     c.creds.ClientID,
		ClientSecret: c.creds.ClientSecret,
	})
	if err != nil {
		return nil, PollPending, err
	}
	c.roHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, PollPending, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var t token.Token
		if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
			return nil, PollPending, fmt.Errorf("failed to decode device token: %w", err)
		}
		return &t, PollPending, nil
	case http.StatusBadRequest:
		// Either a bare "keep polling" or an RFC 8628 error body.
		var errResp deviceErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
			switch errResp.Error {
			case errSlowDown:
				return nil, PollSlowDown, nil
			case errAccessDenied:
				return nil, PollDenied, nil
			case errExpiredToken:
				return nil, PollExpired, nil
			case errAuthorizationPending, "":
			default:
				return nil, PollPending, fmt.Errorf("device token poll: %s", errResp.Error)
			}
		}
		return nil, PollPending, nil
	case http.StatusTooManyRequests:
		return nil, PollSlowDown, nil
	case http.StatusGone:
		return nil, PollExpired, nil
	case http.StatusTeapot:
		// The trakt API answers an operator rejection with 418.
		return nil, PollDenied, nil
	case http.StatusConflict:
		// Code already approved; treat as pending so the next tick returns
		// the token or a terminal status.
		return nil, PollPending, nil
	default:
		return nil, PollPending, &HTTPError{StatusCode: resp.StatusCode}
	}
}
