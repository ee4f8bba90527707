package prt

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/lobpang/roadgo/internal/roadcrypto"
	"github.com/lobpang/roadgo/pkg/httpclient"
	"github.com/lobpang/roadgo/token"
)

// nativeClientURI is the fallback redirect_uri the first-party
// native client uses when the caller doesn't supply one.
const (
	nativeClientID  = "1b730954-1685-4b74-9bfd-dac224a7b894"
	nativeClientURI = "https://login.microsoftonline.com/common/oauth2/nativeclient"
)

// WAMRequest describes a brokerplugin (WAM) token-acquisition request.
type WAMRequest struct {
	ClientID    string
	Resource    string
	RenewPRT    bool
	RedirectURI string
}

// AcquireViaWAM emulates the Windows Account Manager brokerplugin's
// token acquisition: signs a refresh_token grant with the PRT session
// key and decrypts the JWE-framed reply into a normalized token record.
func AcquireViaWAM(ctx context.Context, client httpclient.Client, m *Material, req WAMRequest) (*token.Data, error) {
	if m == nil || len(m.SessionKey) == 0 {
		return nil, errors.New("prt: wam auth requires a session key")
	}

	nonce, err := srvChallenge(ctx, client)
	if err != nil {
		return nil, err
	}

	clientID := token.LookupClientID(req.ClientID)
	scope := "openid"
	if req.RenewPRT {
		scope = "openid aza"
	}

	redirectURI := req.RedirectURI
	if redirectURI == "" {
		if clientID == nativeClientID {
			redirectURI = nativeClientURI
		} else {
			redirectURI = fmt.Sprintf("ms-appx-web://Microsoft.AAD.BrokerPlugin/%s", clientID)
		}
	}

	payload := map[string]interface{}{
		"win_ver":       "10.0.19041.1620",
		"scope":         scope,
		"resource":      token.LookupResourceURI(req.Resource),
		"request_nonce": nonce,
		"refresh_token": m.RefreshToken,
		"redirect_uri":  redirectURI,
		"iss":           "aad:brokerplugin",
		"grant_type":    "refresh_token",
		"client_id":     clientID,
		"aud":           "login.microsoftonline.com",
	}

	raw, err := requestTokenWithSessionKeySignedPayload(ctx, client, m.SessionKey, payload, false)
	if err != nil {
		return nil, err
	}

	decrypted, err := roadcrypto.DecryptAuthResponse(m.SessionKey, raw)
	if err != nil {
		return nil, errors.Wrap(err, "decrypting wam response")
	}

	var reply token.Reply
	if err := json.Unmarshal(decrypted, &reply); err != nil {
		return nil, errors.Wrap(err, "decoding wam token reply")
	}
	return token.FromReply(&reply, "")
}
