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

func TestRenewRejectsIncompleteMaterial(t *testing.T) {
	_, err := Renew(context.Background(), &mockClient{}, nil)
	require.Error(t, err)

	_, err = Renew(context.Background(), &mockClient{}, &Material{})
	require.Error(t, err)
}

func TestRenewReturnsNewRefreshTokenKeepingSessionKey(t *testing.T) {
	sessionKey, err := roadcrypto.RandBytes(32)
	require.NoError(t, err)
	m := &Material{RefreshToken: "old-prt", SessionKey: sessionKey}

	client := &mockClient{responses: []*httpclient.Response{
		{StatusCode: http.StatusOK, Body: []byte(`{"Nonce":"server-nonce"}`)},
		{StatusCode: http.StatusOK, Body: []byte(`{"refresh_token":"new-prt"}`)},
	}}

	renewed, err := Renew(context.Background(), client, m)
	require.NoError(t, err)
	require.Equal(t, "new-prt", renewed.RefreshToken)
	require.Equal(t, sessionKey, renewed.SessionKey)

	form, err := url.ParseQuery(string(client.bodies[1]))
	require.NoError(t, err)
	require.Equal(t, "true", form.Get("tgt"))
	require.NotEmpty(t, form.Get("request"))
}

func TestRenewPropagatesNon200TokenResponse(t *testing.T) {
	sessionKey, err := roadcrypto.RandBytes(32)
	require.NoError(t, err)
	m := &Material{RefreshToken: "old-prt", SessionKey: sessionKey}

	client := &mockClient{responses: []*httpclient.Response{
		{StatusCode: http.StatusOK, Body: []byte(`{"Nonce":"server-nonce"}`)},
		{StatusCode: http.StatusBadRequest, Body: []byte(`{"error":"invalid_grant"}`)},
	}}

	_, err = Renew(context.Background(), client, m)
	require.Error(t, err)
}
