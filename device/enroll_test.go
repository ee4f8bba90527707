package device

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/lobpang/roadgo/pkg/httpclient"
	"github.com/stretchr/testify/require"
)

func enrollResponseBody(t *testing.T, certDER []byte) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"Certificate": map[string]string{
			"RawBody": base64.StdEncoding.EncodeToString(certDER),
		},
	})
	require.NoError(t, err)
	return body
}

func TestEnrollWindowsJoinReturnsIssuedIdentity(t *testing.T) {
	signerKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	cert := selfSignedCert(t, signerKey, "issued-device-id")

	client := &mockClient{response: &httpclient.Response{
		StatusCode: http.StatusOK,
		Body:       enrollResponseBody(t, cert.Raw),
	}}

	id, err := Enroll(context.Background(), client, "access-token", EnrollRequest{})
	require.NoError(t, err)
	require.Equal(t, "issued-device-id", id.DeviceID)
	require.NotNil(t, id.Key)
	require.Equal(t, "POST", client.lastMethod)

	var decoded windowsEnrollBody
	require.NoError(t, json.Unmarshal(client.lastBody, &decoded))
	require.Equal(t, "Windows", decoded.DeviceType)
	require.Equal(t, "pkcs10", decoded.CertificateRequest.Type)
	require.Equal(t, "true", decoded.Attributes["ReuseDevice"])
}

func TestEnrollMacOSJoinHardcodesOSVersion(t *testing.T) {
	signerKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	cert := selfSignedCert(t, signerKey, "issued-mac-device")

	client := &mockClient{response: &httpclient.Response{
		StatusCode: http.StatusOK,
		Body:       enrollResponseBody(t, cert.Raw),
	}}

	_, err = Enroll(context.Background(), client, "access-token", EnrollRequest{DeviceType: "macos", OSVersion: "99.0"})
	require.NoError(t, err)

	var decoded macOSEnrollBody
	require.NoError(t, json.Unmarshal(client.lastBody, &decoded))
	require.Equal(t, "12.2.0", decoded.OSVersion)
	require.Equal(t, "MacOS", decoded.DeviceType)
}

func TestEnrollIncludesDeviceTicketWhenProvided(t *testing.T) {
	signerKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	cert := selfSignedCert(t, signerKey, "ticketed-device")

	client := &mockClient{response: &httpclient.Response{
		StatusCode: http.StatusOK,
		Body:       enrollResponseBody(t, cert.Raw),
	}}

	_, err = Enroll(context.Background(), client, "access-token", EnrollRequest{DeviceTicket: []byte("msa-ddid-blob")})
	require.NoError(t, err)

	var decoded windowsEnrollBody
	require.NoError(t, json.Unmarshal(client.lastBody, &decoded))
	require.Equal(t, base64.StdEncoding.EncodeToString([]byte("msa-ddid-blob")), decoded.Attributes["MSA-DDID"])
}

func TestEnrollRejectsResponseWithoutCertificate(t *testing.T) {
	client := &mockClient{response: &httpclient.Response{StatusCode: http.StatusOK, Body: []byte(`{}`)}}
	_, err := Enroll(context.Background(), client, "access-token", EnrollRequest{})
	require.Error(t, err)
}

func TestRandomUpperAlnumProducesRequestedLength(t *testing.T) {
	s := randomUpperAlnum(12)
	require.Len(t, s, 12)
	for _, r := range s {
		require.Contains(t, upperAlnum, string(r))
	}
}
