package device

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/lobpang/roadgo/pkg/httpclient"
	"github.com/stretchr/testify/require"
)

func TestHybridJoinRequiresExistingKeyAndCertificate(t *testing.T) {
	client := &mockClient{}
	_, err := HybridJoin(context.Background(), client, nil, HybridJoinRequest{})
	require.Error(t, err)

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	_, err = HybridJoin(context.Background(), client, &Identity{Key: key}, HybridJoinRequest{})
	require.Error(t, err)
}

func TestHybridJoinSignsObjectSIDAndReturnsIssuedIdentity(t *testing.T) {
	existingKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	existingCert := selfSignedCert(t, existingKey, "on-prem-device-id")
	existing := &Identity{Key: existingKey, Certificate: existingCert, DeviceID: "on-prem-device-id"}

	signerKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	issuedCert := selfSignedCert(t, signerKey, "cloud-device-id")

	client := &mockClient{response: &httpclient.Response{
		StatusCode: http.StatusOK,
		Body:       enrollResponseBody(t, issuedCert.Raw),
	}}

	id, err := HybridJoin(context.Background(), client, existing, HybridJoinRequest{ObjectSID: "S-1-5-21-1-2-3-1001", TenantID: "tenant-1"})
	require.NoError(t, err)
	require.Equal(t, "cloud-device-id", id.DeviceID)
	require.NotEqual(t, existingKey.D, id.Key.D)

	var decoded hybridEnrollBody
	require.NoError(t, json.Unmarshal(client.lastBody, &decoded))
	require.Equal(t, "sha256signed", decoded.ServerAdJoinData.ClientIdentity.Type)
	require.Contains(t, decoded.ServerAdJoinData.ClientIdentity.Sid, "S-1-5-21-1-2-3-1001")
	require.NotEmpty(t, decoded.ServerAdJoinData.ClientIdentity.SignedBlob)
	require.Contains(t, client.lastURL, "on-prem-device-id")
}
