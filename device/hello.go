package device

import (
	"context"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/lobpang/roadgo/internal/roadcrypto"
	"github.com/lobpang/roadgo/pkg/httpclient"
)

const helloRegistrationEndpoint = "https://enterpriseregistration.windows.net/EnrollmentServer/key/?api-version=1.0"

// HelloKey is a Windows Hello keypair registered server-side, keyed by
// the base64(SHA-256(CNG public blob)) the server uses to identify it.
type HelloKey struct {
	Key *rsa.PrivateKey
	KID string
}

// CreateHelloKey generates a fresh RSA-2048 Windows Hello keypair and
// computes its kid without contacting the server.
func CreateHelloKey() (*HelloKey, error) {
	key, err := roadcrypto.GenerateRSAKey()
	if err != nil {
		return nil, err
	}
	return &HelloKey{Key: key, KID: helloKID(&key.PublicKey)}, nil
}

func helloKID(pub *rsa.PublicKey) string {
	blob := roadcrypto.EncodeRSA1Blob(pub)
	sum := sha256.Sum256(blob)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// RegisterHelloKey posts hello's public CNG blob to the enrollment
// service's key-registration endpoint, authenticated with a bearer
// access token.
func RegisterHelloKey(ctx context.Context, client httpclient.Client, hello *HelloKey, accessToken string) error {
	blob := roadcrypto.EncodeRSA1Blob(&hello.Key.PublicKey)
	body, err := json.Marshal(map[string]string{
		"kngc": base64.StdEncoding.EncodeToString(blob),
	})
	if err != nil {
		return errors.Wrap(err, "encoding hello key registration request")
	}

	headers := http.Header{
		"Authorization": {"Bearer " + accessToken},
		"Content-Type":  {"application/json"},
	}
	resp, err := client.Post(ctx, helloRegistrationEndpoint, headers, body)
	if err != nil {
		return errors.Wrap(err, "posting hello key registration")
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return errors.Errorf("hello key registration failed: %s", resp.Body)
	}
	return nil
}
