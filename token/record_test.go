package token

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fakeJWT(t *testing.T, claims map[string]interface{}) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	body, err := json.Marshal(claims)
	require.NoError(t, err)
	payload := base64.RawURLEncoding.EncodeToString(body)
	return header + "." + payload + ".sig"
}

func TestFromReplyUsesExpiresOnWhenPresent(t *testing.T) {
	reply := &Reply{
		TokenType:    "Bearer",
		AccessToken:  fakeJWT(t, map[string]interface{}{"tid": "tenant-1", "appid": "client-1"}),
		RefreshToken: "refresh-xyz",
		ExpiresOn:    "1700000000",
	}

	data, err := FromReply(reply, "")
	require.NoError(t, err)
	require.Equal(t, "Bearer", data.TokenType)
	require.Equal(t, "tenant-1", data.TenantID)
	require.Equal(t, "client-1", data.ClientID)
	require.Equal(t, "refresh-xyz", data.RefreshToken)
	require.Equal(t, time.Unix(1700000000, 0).Format(timeLayout), data.ExpiresOn)
}

func TestFromReplyFallsBackToExpiresIn(t *testing.T) {
	reply := &Reply{
		TokenType:   "Bearer",
		AccessToken: fakeJWT(t, map[string]interface{}{"tid": "tenant-1"}),
		ExpiresIn:   "3600",
	}

	before := time.Now()
	data, err := FromReply(reply, "")
	require.NoError(t, err)

	got, err := time.ParseInLocation(timeLayout, data.ExpiresOn, time.Local)
	require.NoError(t, err)
	require.WithinDuration(t, before.Add(3600*time.Second), got, 2*time.Second)
}

func TestFromReplyClientIDOverrideWinsOverAppIDClaim(t *testing.T) {
	reply := &Reply{
		TokenType:   "Bearer",
		AccessToken: fakeJWT(t, map[string]interface{}{"appid": "claim-client"}),
	}

	data, err := FromReply(reply, "override-client")
	require.NoError(t, err)
	require.Equal(t, "override-client", data.ClientID)
}

func TestFromReplyRejectsMalformedExpiresOn(t *testing.T) {
	reply := &Reply{ExpiresOn: "not-a-number"}
	_, err := FromReply(reply, "")
	require.Error(t, err)
}

func TestFromReplyToleratesUnparsableAccessToken(t *testing.T) {
	reply := &Reply{TokenType: "Bearer", AccessToken: "not-a-jwt"}
	data, err := FromReply(reply, "")
	require.NoError(t, err)
	require.Equal(t, "not-a-jwt", data.AccessToken)
	require.Empty(t, data.TenantID)
}
