package prt

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/lobpang/roadgo/pkg/httpclient"
	"github.com/lobpang/roadgo/token"
)

// authorizeEndpoint is the fixed common-tenant /authorize endpoint every
// cookie-based flow (nonce discovery and redemption) goes through.
const authorizeEndpoint = "https://login.microsoftonline.com/common/oauth2/authorize"

// cookieHeaderName is the name of the SSO cookie that carries the PRT
// cookie; outside a browser it is sent directly in the request's Cookie
// header.
const cookieHeaderName = "x-ms-RefreshTokenCredential"

// ie7UserAgent matches the user agent roadlib sends for nonce discovery
// and cookie redemption, since the SSO endpoint branches its response
// format on old-IE detection.
const ie7UserAgent = "Mozilla/4.0 (compatible; MSIE 7.0b; Windows NT 6.0)"

var (
	configNonceRe  = regexp.MustCompile(`"nonce"\s*:\s*"([^"]+)"`)
	configErrorRes = []*regexp.Regexp{
		regexp.MustCompile(`"strMainMessage"\s*:\s*"([^"]*)"`),
		regexp.MustCompile(`"strAdditionalMessage"\s*:\s*"([^"]*)"`),
		regexp.MustCompile(`"strServiceExceptionMessage"\s*:\s*"([^"]*)"`),
	}
)

// RedeemResult is what AuthenticateWithPRTCookie returns on the happy
// path: an authorization code ready to exchange for tokens.
type RedeemResult struct {
	Code        string
	RedirectURI string
}

func authorizeQuery(clientID, redirectURI, resource string) url.Values {
	q := url.Values{
		"client_id":     {clientID},
		"response_type": {"code"},
		"redirect_uri":  {redirectURI},
	}
	if resource != "" {
		q.Set("resource", token.LookupResourceURI(resource))
	}
	return q
}

// GetCookieNonce fetches a fresh SSO nonce by hitting the authorize
// endpoint unauthenticated and reading either the 302 redirect's Location
// (sso_nonce param) or, failing that, the $Config JSON blob embedded in
// the HTML response body.
func GetCookieNonce(ctx context.Context, client httpclient.Client, clientID, redirectURI, resource string) (string, error) {
	endpoint := authorizeEndpoint + "?" + authorizeQuery(clientID, redirectURI, resource).Encode()

	resp, err := client.Get(httpclient.WithNoRedirect(ctx), endpoint, http.Header{"User-Agent": {ie7UserAgent}})
	if err != nil {
		return "", errors.Wrap(err, "requesting cookie nonce")
	}

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		loc := resp.Header.Get("Location")
		if nonce := nonceFromLocation(loc); nonce != "" {
			return nonce, nil
		}
	}

	if nonce := nonceFromConfigBody(resp.Body); nonce != "" {
		return nonce, nil
	}

	return "", errors.New("prt: could not find an sso_nonce in the authorize response")
}

func nonceFromLocation(location string) string {
	u, err := url.Parse(location)
	if err != nil {
		return ""
	}
	return u.Query().Get("sso_nonce")
}

func nonceFromConfigBody(body []byte) string {
	m := configNonceRe.FindSubmatch(body)
	if m == nil {
		return ""
	}
	return string(m[1])
}

func errorFromConfigBody(body []byte) string {
	var parts []string
	for _, re := range configErrorRes {
		if m := re.FindSubmatch(body); m != nil && len(m[1]) > 0 {
			parts = append(parts, string(m[1]))
		}
	}
	return strings.Join(parts, ": ")
}

// AuthenticateWithPRTCookie presents a PRT cookie to the authorize
// endpoint as the x-ms-RefreshTokenCredential cookie and extracts the
// resulting authorization code from the 302 redirect to redirectURI.
//
// Three outcomes are possible:
//   - success: a 302 to redirectURI carrying ?code=...
//   - stale nonce: a 302 back to the authorize endpoint carrying a fresh
//     sso_nonce, returned as a *StaleNonceError whose Nonce field the
//     caller can rebuild the cookie with and retry
//   - hard failure: a 200 response whose $Config blob explains why (most
//     often Conditional Access blocking the device or session)
func AuthenticateWithPRTCookie(ctx context.Context, client httpclient.Client, cookie, clientID, redirectURI, resource string) (*RedeemResult, error) {
	endpoint := authorizeEndpoint + "?" + authorizeQuery(clientID, redirectURI, resource).Encode()
	headers := http.Header{
		"User-Agent": {ie7UserAgent},
		"Cookie":     {fmt.Sprintf("%s=%s", cookieHeaderName, cookie)},
	}

	resp, err := client.Get(httpclient.WithNoRedirect(ctx), endpoint, headers)
	if err != nil {
		return nil, errors.Wrap(err, "redeeming prt cookie")
	}

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		loc := resp.Header.Get("Location")
		u, err := url.Parse(loc)
		if err != nil {
			return nil, errors.Wrap(err, "parsing redirect location")
		}

		if strings.HasPrefix(loc, redirectURI) {
			code := u.Query().Get("code")
			if code == "" {
				return nil, errors.New("prt: redirect to redirect_uri carried no authorization code")
			}
			return &RedeemResult{Code: code, RedirectURI: redirectURI}, nil
		}

		if nonce := u.Query().Get("sso_nonce"); nonce != "" {
			return nil, &StaleNonceError{Nonce: nonce}
		}

		return nil, errors.Errorf("prt: unexpected redirect during cookie redemption: %s", loc)
	}

	if msg := errorFromConfigBody(resp.Body); msg != "" {
		return nil, errors.New(msg)
	}

	return nil, errors.New("No authentication code was returned; PRT cookie may be invalid or blocked by Conditional Access.")
}

// StaleNonceError signals that the authorize endpoint rejected the
// cookie's embedded nonce and supplied a fresh one to retry with.
type StaleNonceError struct {
	Nonce string
}

func (e *StaleNonceError) Error() string {
	return "prt: stale nonce, retry with the supplied replacement"
}
