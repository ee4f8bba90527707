// Package prt implements the Primary Refresh Token engine: acquiring
// and renewing a PRT, unwrapping its session key, deriving per-request
// signing keys (KDF v1/v2), building and redeeming PRT cookies, and the
// WAM brokerplugin token-acquisition shape.
package prt

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// Material is the PRT and its accompanying session key, the unit
// persisted to and loaded from disk between runs.
type Material struct {
	RefreshToken string
	SessionKey   []byte
}

// EnsurePlainToken normalizes a PRT that may have arrived either as a
// raw JWT-shaped string (contains '.') or as base64 of one.
func EnsurePlainToken(prt string) (string, error) {
	if prt == "" {
		return "", nil
	}
	if strings.Contains(prt, ".") {
		return prt, nil
	}
	padded := prt + strings.Repeat("=", (4-len(prt)%4)%4)
	decoded, err := base64.StdEncoding.DecodeString(padded)
	if err != nil {
		return "", errors.Wrap(err, "prt: decoding base64 refresh token")
	}
	return string(decoded), nil
}

// EnsureBinarySessionKey normalizes a session key given as 44-char
// base64 or as a hex string into raw bytes.
func EnsureBinarySessionKey(sessionKey string) ([]byte, error) {
	if len(sessionKey) == 44 {
		if decoded, err := base64.StdEncoding.DecodeString(sessionKey); err == nil {
			return decoded, nil
		}
	}
	decoded, err := hex.DecodeString(sessionKey)
	if err != nil {
		return nil, errors.Wrap(err, "prt: session key is neither valid base64 nor hex")
	}
	return decoded, nil
}

// NewMaterial constructs Material from a PRT string and session key in
// either accepted encoding.
func NewMaterial(prt, sessionKey string) (*Material, error) {
	plainPRT, err := EnsurePlainToken(prt)
	if err != nil {
		return nil, err
	}
	keyBytes, err := EnsureBinarySessionKey(sessionKey)
	if err != nil {
		return nil, err
	}
	return &Material{RefreshToken: plainPRT, SessionKey: keyBytes}, nil
}

// MarshalJSON renders Material the way roadlib persists it:
// {refresh_token, session_key} with session_key hex-encoded.
func (m *Material) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		RefreshToken string `json:"refresh_token"`
		SessionKey   string `json:"session_key"`
	}{
		RefreshToken: m.RefreshToken,
		SessionKey:   hex.EncodeToString(m.SessionKey),
	})
}

// UnmarshalJSON loads Material from the persisted {refresh_token,
// session_key} shape, accepting either hex or base64 for session_key.
func (m *Material) UnmarshalJSON(data []byte) error {
	var raw struct {
		RefreshToken string `json:"refresh_token"`
		SessionKey   string `json:"session_key"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "prt: decoding persisted material")
	}
	keyBytes, err := EnsureBinarySessionKey(raw.SessionKey)
	if err != nil {
		return err
	}
	m.RefreshToken = raw.RefreshToken
	m.SessionKey = keyBytes
	return nil
}
