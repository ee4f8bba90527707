package roadgo

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/lobpang/roadgo/token"
)

// commonTokenHeaders are the headers every /token POST sends.
func commonTokenHeaders(c *Context) http.Header {
	h := http.Header{"Content-Type": {"application/x-www-form-urlencoded"}}
	if ua := token.LookupUserAgent(c.UserAgent); ua != "" {
		h.Set("User-Agent", ua)
	}
	return h
}

// tokenEndpoint picks the v1 or v2 /token URL based on whether Scope is set.
func (c *Context) tokenEndpoint() string {
	if c.useV2() {
		return tokenEndpointV2(c.Tenant)
	}
	return tokenEndpointV1(c.Tenant)
}

// postToken posts form to the appropriate /token endpoint and decodes
// the reply, raising an *AuthenticationError on any non-200 response.
func (c *Context) postToken(ctx context.Context, form url.Values) (*token.Reply, error) {
	body, err := c.postForm(ctx, c.tokenEndpoint(), form)
	if err != nil {
		return nil, err
	}
	var reply token.Reply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, errors.Wrap(err, "decoding token reply")
	}
	return &reply, nil
}

// postForm performs the shared POST-and-error-check dance used by
// every grant in this file.
func (c *Context) postForm(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	resp, err := c.client().Post(ctx, endpoint, commonTokenHeaders(c), []byte(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "posting token request")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, NewAuthErrorFromBody("token endpoint returned an error", resp.Body)
	}
	return resp.Body, nil
}

// parseOAuthErrorBody best-effort extracts {error,error_description}
// from a JSON error body; ok is false when the body isn't that shape.
func parseOAuthErrorBody(body []byte) (code, desc string, ok bool) {
	var oerr struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &oerr); err != nil || oerr.Error == "" {
		return "", "", false
	}
	return oerr.Error, oerr.Description, true
}

// applyExtra merges caller-supplied free-form overrides into form
// after the fixed fields, per the extra_params design note.
func applyExtra(form url.Values, extra map[string]string) {
	for k, v := range extra {
		form.Set(k, v)
	}
}

func (c *Context) resourceOrScope(form url.Values) {
	if c.useV2() {
		form.Set("scope", c.Scope)
	} else if c.ResourceURI != "" {
		form.Set("resource", token.LookupResourceURI(c.ResourceURI))
	}
}

// Password drives the resource-owner-password-credentials grant.
func (c *Context) Password(ctx context.Context, clientSecret string, extra map[string]string) (*token.Data, error) {
	form := url.Values{
		"grant_type": {"password"},
		"client_id":  {c.ClientID},
		"username":   {c.Username},
		"password":   {c.Password},
	}
	if clientSecret != "" {
		form.Set("client_secret", clientSecret)
	}
	c.resourceOrScope(form)
	applyExtra(form, extra)

	reply, err := c.postToken(ctx, form)
	if err != nil {
		return nil, err
	}
	data, err := token.FromReply(reply, "")
	if err != nil {
		return nil, err
	}
	c.TokenData = data
	return data, nil
}

// RefreshToken drives the refresh_token grant.
func (c *Context) RefreshToken(ctx context.Context, refreshToken, clientSecret string, extra map[string]string) (*token.Data, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {c.ClientID},
		"refresh_token": {refreshToken},
	}
	if clientSecret != "" {
		form.Set("client_secret", clientSecret)
	}
	c.resourceOrScope(form)
	applyExtra(form, extra)

	reply, err := c.postToken(ctx, form)
	if err != nil {
		return nil, err
	}
	data, err := token.FromReply(reply, "")
	if err != nil {
		return nil, err
	}
	c.TokenData = data
	return data, nil
}

// AuthorizationCode drives the authorization_code grant. pkceVerifier
// must be empty: PKCE is declared unsupported, and a caller passing one
// gets an explicit error rather than having it silently dropped.
func (c *Context) AuthorizationCode(ctx context.Context, code, redirectURI, clientSecret, pkceVerifier string, extra map[string]string) (*token.Data, error) {
	if pkceVerifier != "" {
		return nil, NewAuthError("PKCE is not implemented")
	}

	form := url.Values{
		"grant_type":   {"authorization_code"},
		"client_id":    {c.ClientID},
		"code":         {code},
		"redirect_uri": {redirectURI},
	}
	if clientSecret != "" {
		form.Set("client_secret", clientSecret)
	}
	c.resourceOrScope(form)
	applyExtra(form, extra)

	reply, err := c.postToken(ctx, form)
	if err != nil {
		return nil, err
	}
	data, err := token.FromReply(reply, "")
	if err != nil {
		return nil, err
	}
	c.TokenData = data
	return data, nil
}

// SAML drives the urn:ietf:params:oauth:grant-type:saml1_1-bearer grant.
func (c *Context) SAML(ctx context.Context, samlAssertion []byte, extra map[string]string) (*token.Data, error) {
	form := url.Values{
		"grant_type": {"urn:ietf:params:oauth:grant-type:saml1_1-bearer"},
		"client_id":  {c.ClientID},
		"assertion":  {base64.StdEncoding.EncodeToString(samlAssertion)},
	}
	c.resourceOrScope(form)
	applyExtra(form, extra)

	reply, err := c.postToken(ctx, form)
	if err != nil {
		return nil, err
	}
	data, err := token.FromReply(reply, "")
	if err != nil {
		return nil, err
	}
	c.TokenData = data
	return data, nil
}

// SrvChallenge fetches a server nonce, returning the raw reply since
// the caller needs the Nonce field rather than a normalized record.
func (c *Context) SrvChallenge(ctx context.Context) (*token.Reply, error) {
	form := url.Values{
		"grant_type": {"srv_challenge"},
		"client_id":  {c.ClientID},
	}
	return c.postToken(ctx, form)
}

// UserRealm is the federation-discovery response for a given username.
type UserRealm struct {
	AccountType             string `json:"account_type"`
	DomainName              string `json:"domain_name"`
	FederationProtocol      string `json:"federation_protocol,omitempty"`
	FederationMetadataURL   string `json:"federation_metadata_url,omitempty"`
	FederationActiveAuthURL string `json:"federation_active_auth_url,omitempty"`
	CloudInstanceName       string `json:"cloud_instance_name,omitempty"`
}

// DiscoverUserRealm calls the UserRealm endpoint to determine whether
// user's domain is managed or federated.
func (c *Context) DiscoverUserRealm(ctx context.Context, user string) (*UserRealm, error) {
	resp, err := c.client().Get(ctx, userRealmEndpoint(url.QueryEscape(user)), http.Header{})
	if err != nil {
		return nil, errors.Wrap(err, "requesting user realm")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, NewAuthErrorFromBody("user realm discovery failed", resp.Body)
	}
	var realm UserRealm
	if err := json.Unmarshal(resp.Body, &realm); err != nil {
		return nil, errors.Wrap(err, "decoding user realm reply")
	}
	return &realm, nil
}

// BulkEnrollmentResult is the normalized outcome of a completed bulk
// enrollment poll.
type BulkEnrollmentResult struct {
	Data *token.Data
}

// BulkEnrollmentToken drives the begin/poll bulk-AAD-join flow: POST
// begin with accessToken, receive a flowToken, then poll once a second
// until the server reports CompleteSuccess or CompleteError.
func (c *Context) BulkEnrollmentToken(ctx context.Context, accessToken string) (*token.Data, error) {
	beginHeaders := http.Header{"Authorization": {"Bearer " + accessToken}}
	resp, err := c.client().Post(ctx, bulkEnrollmentBeginURL, beginHeaders, nil)
	if err != nil {
		return nil, errors.Wrap(err, "posting bulk enrollment begin")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, NewAuthErrorFromBody("bulk enrollment begin failed", resp.Body)
	}

	var begin struct {
		FlowToken string `json:"flowToken"`
	}
	if err := json.Unmarshal(resp.Body, &begin); err != nil {
		return nil, errors.Wrap(err, "decoding bulk enrollment begin reply")
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			pollResp, err := c.client().Get(ctx, bulkEnrollmentPollURL+"?flowtoken="+url.QueryEscape(begin.FlowToken), http.Header{})
			if err != nil {
				return nil, errors.Wrap(err, "polling bulk enrollment")
			}
			if pollResp.StatusCode != http.StatusOK {
				return nil, NewAuthErrorFromBody("bulk enrollment poll failed", pollResp.Body)
			}

			var poll struct {
				State      string          `json:"state"`
				ResultData json.RawMessage `json:"resultData"`
			}
			if err := json.Unmarshal(pollResp.Body, &poll); err != nil {
				return nil, errors.Wrap(err, "decoding bulk enrollment poll reply")
			}

			switch poll.State {
			case "CompleteSuccess":
				var idReply struct {
					IDToken string `json:"id_token"`
				}
				if err := json.Unmarshal(poll.ResultData, &idReply); err != nil {
					return nil, errors.Wrap(err, "decoding bulk enrollment result")
				}
				reply := &token.Reply{
					TokenType:   "Bearer",
					AccessToken: idReply.IDToken,
					IDToken:     idReply.IDToken,
				}
				return token.FromReply(reply, enrollmentClientID)
			case "CompleteError":
				return nil, NewAuthErrorFromBody("bulk enrollment failed", poll.ResultData)
			}
		}
	}
}
