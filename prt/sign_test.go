package prt

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/lobpang/roadgo/internal/roadcrypto"
	"github.com/stretchr/testify/require"
)

func decodeJWTHeader(t *testing.T, compact string, v interface{}) {
	t.Helper()
	parts := strings.Split(compact, ".")
	require.GreaterOrEqual(t, len(parts), 1)
	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v))
}

func TestSignWithSessionKeyV2ProducesKeyDerivableFromHeaderContext(t *testing.T) {
	sessionKey, err := roadcrypto.RandBytes(32)
	require.NoError(t, err)

	payload := map[string]interface{}{"refresh_token": "abc", "is_primary": "true"}
	compact, err := signWithSessionKeyV2(sessionKey, payload)
	require.NoError(t, err)

	var headers struct {
		Ctx    string `json:"ctx"`
		KDFVer int    `json:"kdf_ver"`
	}
	decodeJWTHeader(t, compact, &headers)
	require.Equal(t, 2, headers.KDFVer)

	body, err := roadcrypto.UnverifiedJWTBody(compact)
	require.NoError(t, err)

	ctxBytes, err := base64.StdEncoding.DecodeString(headers.Ctx)
	require.NoError(t, err)
	_, derivedKey, err := roadcrypto.KDFv2(sessionKey, ctxBytes, body)
	require.NoError(t, err)

	verifiedBody, err := roadcrypto.VerifyHS256(derivedKey, compact)
	require.NoError(t, err)
	require.JSONEq(t, string(body), string(verifiedBody))
}

func TestSignWithSessionKeyV2VariesContextAcrossCalls(t *testing.T) {
	sessionKey, err := roadcrypto.RandBytes(32)
	require.NoError(t, err)
	payload := map[string]interface{}{"a": 1}

	first, err := signWithSessionKeyV2(sessionKey, payload)
	require.NoError(t, err)
	second, err := signWithSessionKeyV2(sessionKey, payload)
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}
