package device

import (
	"context"
	"net/http"
	"testing"

	"github.com/lobpang/roadgo/pkg/httpclient"
	"github.com/stretchr/testify/require"
)

func TestCreateHelloKeyComputesKIDFromPublicBlob(t *testing.T) {
	hello, err := CreateHelloKey()
	require.NoError(t, err)
	require.NotEmpty(t, hello.KID)
	require.Equal(t, helloKID(&hello.Key.PublicKey), hello.KID)
}

func TestCreateHelloKeyKIDsDifferAcrossKeys(t *testing.T) {
	a, err := CreateHelloKey()
	require.NoError(t, err)
	b, err := CreateHelloKey()
	require.NoError(t, err)
	require.NotEqual(t, a.KID, b.KID)
}

func TestRegisterHelloKeySendsBearerTokenAndBlob(t *testing.T) {
	hello, err := CreateHelloKey()
	require.NoError(t, err)
	client := &mockClient{response: &httpclient.Response{StatusCode: http.StatusOK}}

	err = RegisterHelloKey(context.Background(), client, hello, "access-token")
	require.NoError(t, err)
	require.Equal(t, "POST", client.lastMethod)
	require.Contains(t, client.lastURL, "EnrollmentServer/key")
}

func TestRegisterHelloKeyRejectsNonSuccessStatus(t *testing.T) {
	hello, err := CreateHelloKey()
	require.NoError(t, err)
	client := &mockClient{response: &httpclient.Response{StatusCode: http.StatusForbidden, Body: []byte("denied")}}

	err = RegisterHelloKey(context.Background(), client, hello, "access-token")
	require.Error(t, err)
}
