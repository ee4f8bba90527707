package prt

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/lobpang/roadgo/internal/roadcrypto"
)

// BuildCookieV1 derives a signing key with KDF v1 (generating a fresh
// 24-byte context unless one is supplied) and signs a PRT cookie with
// it. Returns the cookie and the context used, so callers can later
// re-derive the same key.
func BuildCookieV1(sessionKey []byte, prt, requestNonce string, context []byte) (cookie string, usedContext []byte, err error) {
	usedContext, derivedKey, err := roadcrypto.KDFv1(sessionKey, context)
	if err != nil {
		return "", nil, err
	}

	payload := map[string]interface{}{
		"refresh_token": prt,
		"is_primary":    "true",
		"request_nonce": requestNonce,
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return "", nil, errors.Wrap(err, "encoding cookie payload")
	}

	headers := map[string]interface{}{
		"ctx": base64.StdEncoding.EncodeToString(usedContext),
	}
	cookie, err = roadcrypto.SignHS256(derivedKey, payloadJSON, headers)
	if err != nil {
		return "", nil, err
	}
	return cookie, usedContext, nil
}

// BuildCookieV2 implements the two-step v2 construction: sign with a
// throwaway random key first to get the canonical JWT body bytes,
// derive the real key via KDFv2 from those bytes, then re-sign. If
// requestNonce is empty, the legacy iat-based payload shape is used
// instead.
func BuildCookieV2(sessionKey []byte, prt, requestNonce string) (string, error) {
	var payload map[string]interface{}
	if requestNonce != "" {
		payload = map[string]interface{}{
			"refresh_token": prt,
			"is_primary":    "true",
			"request_nonce": requestNonce,
		}
	} else {
		payload = map[string]interface{}{
			"refresh_token": prt,
			"is_primary":    "true",
			"iat":           currentUnixTimeString(),
		}
	}
	return signWithSessionKeyV2(sessionKey, payload)
}

// currentUnixTimeString renders the current time the way the legacy
// cookie payload shape expects: a decimal string, not a JSON number.
func currentUnixTimeString() string {
	return strconv.FormatInt(time.Now().Unix(), 10)
}
