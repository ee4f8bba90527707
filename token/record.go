// Package token implements the normalized-token codec: translating raw
// Azure AD /token replies into ADAL-compatible records, parsing access
// tokens for their claims, and resolving the well-known resource/client/
// user-agent aliases every flow accepts as shorthand.
package token

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// timeLayout is the local-time format every persisted expiry uses,
// matching roadlib's "%Y-%m-%d %H:%M:%S".
const timeLayout = "2006-01-02 15:04:05"

// Data is the normalized record every successful token flow produces.
type Data struct {
	TokenType    string `json:"tokenType"`
	ExpiresOn    string `json:"expiresOn"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	IDToken      string `json:"idToken,omitempty"`
	TenantID     string `json:"tenantId,omitempty"`
	ClientID     string `json:"_clientId,omitempty"`
}

// Reply is the raw JSON shape returned by both the v1 and v2 /token
// endpoints, including the Microsoft-specific extensions.
type Reply struct {
	TokenType      string `json:"token_type"`
	AccessToken    string `json:"access_token"`
	RefreshToken   string `json:"refresh_token,omitempty"`
	IDToken        string `json:"id_token,omitempty"`
	ExpiresIn      string `json:"expires_in,omitempty"`
	ExpiresOn      string `json:"expires_on,omitempty"`
	ClientInfo     string `json:"client_info,omitempty"`
	SessionKeyJWE  string `json:"session_key_jwe,omitempty"`
	TGTAD          json.RawMessage `json:"tgt_ad,omitempty"`
	TGTCloud       json.RawMessage `json:"tgt_cloud,omitempty"`
	Error          string `json:"error,omitempty"`
	ErrorDesc      string `json:"error_description,omitempty"`
	Nonce          string `json:"Nonce,omitempty"`
}

// FromReply converts a raw /token reply into a normalized Data record.
// clientIDOverride, when non-empty, wins over the access token's appid
// claim — BulkEnrollmentToken in the root package passes the fixed
// enrollment client_id this way.
func FromReply(reply *Reply, clientIDOverride string) (*Data, error) {
	data := &Data{TokenType: reply.TokenType}

	if reply.ExpiresOn != "" {
		epoch, err := strconv.ParseInt(reply.ExpiresOn, 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, "parsing expires_on")
		}
		data.ExpiresOn = time.Unix(epoch, 0).Format(timeLayout)
	} else if reply.ExpiresIn != "" {
		seconds, err := strconv.ParseInt(reply.ExpiresIn, 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, "parsing expires_in")
		}
		data.ExpiresOn = time.Now().Add(time.Duration(seconds) * time.Second).Format(timeLayout)
	}

	if reply.AccessToken != "" {
		data.AccessToken = reply.AccessToken
		claims, err := claimsOf(reply.AccessToken)
		if err == nil {
			if tid, ok := claims["tid"].(string); ok {
				data.TenantID = tid
			}
			if clientIDOverride == "" {
				if appid, ok := claims["appid"].(string); ok {
					data.ClientID = appid
				}
			}
		}
	}
	if clientIDOverride != "" {
		data.ClientID = clientIDOverride
	}

	if reply.RefreshToken != "" {
		data.RefreshToken = reply.RefreshToken
	}
	if reply.IDToken != "" {
		data.IDToken = reply.IDToken
	}

	return data, nil
}

// claimsOf decodes the unverified middle segment of a JWT.
func claimsOf(jwt string) (map[string]interface{}, error) {
	parts := strings.Split(jwt, ".")
	if len(parts) < 2 {
		return nil, errors.New("token: malformed jwt")
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, errors.Wrap(err, "token: decoding claims segment")
	}
	var claims map[string]interface{}
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, errors.Wrap(err, "token: parsing claims")
	}
	return claims, nil
}
