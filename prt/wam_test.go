package prt

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/lobpang/roadgo/internal/roadcrypto"
	"github.com/lobpang/roadgo/pkg/httpclient"
	"github.com/stretchr/testify/require"
)

func TestAcquireViaWAMRejectsMissingSessionKey(t *testing.T) {
	_, err := AcquireViaWAM(context.Background(), &mockClient{}, nil, WAMRequest{})
	require.Error(t, err)
}

func TestAcquireViaWAMUsesNativeClientRedirectForKnownClient(t *testing.T) {
	sessionKey, err := roadcrypto.RandBytes(32)
	require.NoError(t, err)
	m := &Material{RefreshToken: "prt", SessionKey: sessionKey}

	client := &mockClient{responses: []*httpclient.Response{
		{StatusCode: http.StatusOK, Body: []byte(`{"Nonce":"server-nonce"}`)},
		{StatusCode: http.StatusOK, Body: []byte(`{"token_type":"Bearer","access_token":""}`)},
	}}

	_, err = AcquireViaWAM(context.Background(), client, m, WAMRequest{ClientID: nativeClientID, Resource: "aadgraph"})
	require.NoError(t, err)

	form, err := url.ParseQuery(string(client.bodies[1]))
	require.NoError(t, err)
	reqJWT := form.Get("request")

	var payload map[string]interface{}
	require.NoError(t, roadcrypto.UnverifiedJWTClaims(reqJWT, &payload))
	require.Equal(t, nativeClientURI, payload["redirect_uri"])
	require.Equal(t, "https://graph.windows.net/", payload["resource"])
	require.Equal(t, "openid", payload["scope"])
}

func TestAcquireViaWAMRequestsBroaderScopeWhenRenewingPRT(t *testing.T) {
	sessionKey, err := roadcrypto.RandBytes(32)
	require.NoError(t, err)
	m := &Material{RefreshToken: "prt", SessionKey: sessionKey}

	client := &mockClient{responses: []*httpclient.Response{
		{StatusCode: http.StatusOK, Body: []byte(`{"Nonce":"server-nonce"}`)},
		{StatusCode: http.StatusOK, Body: []byte(`{"token_type":"Bearer"}`)},
	}}

	_, err = AcquireViaWAM(context.Background(), client, m, WAMRequest{ClientID: "custom-client-id", RenewPRT: true})
	require.NoError(t, err)

	form, err := url.ParseQuery(string(client.bodies[1]))
	require.NoError(t, err)
	var payload map[string]interface{}
	require.NoError(t, roadcrypto.UnverifiedJWTClaims(form.Get("request"), &payload))
	require.Equal(t, "openid aza", payload["scope"])
	require.Contains(t, payload["redirect_uri"], "custom-client-id")
}
