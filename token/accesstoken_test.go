package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseAccessTokenExtractsClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	jwt := fakeJWT(t, map[string]interface{}{
		"tid":   "tenant-1",
		"appid": "client-1",
		"exp":   exp,
		"upn":   "user@example.com",
	})

	data, claims, err := ParseAccessToken(jwt)
	require.NoError(t, err)
	require.Equal(t, "Bearer", data.TokenType)
	require.Equal(t, "tenant-1", data.TenantID)
	require.Equal(t, "client-1", data.ClientID)
	require.Equal(t, time.Unix(exp, 0).Format(timeLayout), data.ExpiresOn)
	require.Equal(t, "user@example.com", claims["upn"])
}

func TestParseAccessTokenRejectsMalformedToken(t *testing.T) {
	_, _, err := ParseAccessToken("not-a-jwt")
	require.Error(t, err)
}

func TestToInt64HandlesFloatAndIntClaims(t *testing.T) {
	n, ok := toInt64(float64(42))
	require.True(t, ok)
	require.Equal(t, int64(42), n)

	n, ok = toInt64(int64(7))
	require.True(t, ok)
	require.Equal(t, int64(7), n)

	_, ok = toInt64("nope")
	require.False(t, ok)
}
