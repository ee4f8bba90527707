package prt

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/lobpang/roadgo/internal/roadcrypto"
	"github.com/lobpang/roadgo/pkg/httpclient"
)

// Renew exchanges the current PRT for a fresh one using session-key
// signing (no device certificate involved), per the brokerplugin
// "iss: aad:brokerplugin" renewal shape.
func Renew(ctx context.Context, client httpclient.Client, m *Material) (*Material, error) {
	if m == nil || m.RefreshToken == "" || len(m.SessionKey) == 0 {
		return nil, errors.New("prt: renew requires existing refresh token and session key")
	}

	nonce, err := srvChallenge(ctx, client)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"client_id":              clientIDPRT,
		"request_nonce":          nonce,
		"scope":                  "openid aza ugs",
		"iss":                    "aad:brokerplugin",
		"grant_type":             "refresh_token",
		"refresh_token":          m.RefreshToken,
		"previous_refresh_token": m.RefreshToken,
		"group_sids":             []string{},
		"win_ver":                "10.0.19041.868",
	}

	raw, err := requestTokenWithSessionKeySignedPayload(ctx, client, m.SessionKey, payload, true)
	if err != nil {
		return nil, err
	}

	decrypted, err := roadcrypto.DecryptAuthResponse(m.SessionKey, raw)
	if err != nil {
		return nil, errors.Wrap(err, "decrypting prt renewal response")
	}

	var reply struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(decrypted, &reply); err != nil {
		return nil, errors.Wrap(err, "decoding prt renewal reply")
	}

	return &Material{RefreshToken: reply.RefreshToken, SessionKey: m.SessionKey}, nil
}
