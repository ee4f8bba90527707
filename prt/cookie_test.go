package prt

import (
	"encoding/base64"
	"testing"

	"github.com/lobpang/roadgo/internal/roadcrypto"
	"github.com/stretchr/testify/require"
)

func TestBuildCookieV1ProducesVerifiableCookieAndReusableContext(t *testing.T) {
	sessionKey, err := roadcrypto.RandBytes(32)
	require.NoError(t, err)

	cookie, usedContext, err := BuildCookieV1(sessionKey, "refresh-token", "nonce-1", nil)
	require.NoError(t, err)
	require.NotEmpty(t, usedContext)

	_, derivedKey, err := roadcrypto.KDFv1(sessionKey, usedContext)
	require.NoError(t, err)

	payload, err := roadcrypto.VerifyHS256(derivedKey, cookie)
	require.NoError(t, err)
	require.Contains(t, string(payload), "refresh-token")
	require.Contains(t, string(payload), "nonce-1")
}

func TestBuildCookieV1ReusesSuppliedContext(t *testing.T) {
	sessionKey, err := roadcrypto.RandBytes(32)
	require.NoError(t, err)
	context, err := roadcrypto.RandBytes(24)
	require.NoError(t, err)

	_, usedContext, err := BuildCookieV1(sessionKey, "refresh-token", "nonce-1", context)
	require.NoError(t, err)
	require.Equal(t, context, usedContext)
	require.Equal(t, base64.StdEncoding.EncodeToString(context), base64.StdEncoding.EncodeToString(usedContext))
}

func TestBuildCookieV2WithNonceUsesRequestNonceShape(t *testing.T) {
	sessionKey, err := roadcrypto.RandBytes(32)
	require.NoError(t, err)

	cookie, err := BuildCookieV2(sessionKey, "refresh-token", "nonce-2")
	require.NoError(t, err)

	body, err := roadcrypto.UnverifiedJWTBody(cookie)
	require.NoError(t, err)
	require.Contains(t, string(body), "nonce-2")
	require.NotContains(t, string(body), `"iat"`)
}

func TestBuildCookieV2WithoutNonceUsesLegacyIATShape(t *testing.T) {
	sessionKey, err := roadcrypto.RandBytes(32)
	require.NoError(t, err)

	cookie, err := BuildCookieV2(sessionKey, "refresh-token", "")
	require.NoError(t, err)

	body, err := roadcrypto.UnverifiedJWTBody(cookie)
	require.NoError(t, err)
	require.Contains(t, string(body), `"iat"`)
	require.NotContains(t, string(body), "request_nonce")
}
