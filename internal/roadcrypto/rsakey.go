package roadcrypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"

	"github.com/pkg/errors"
)

// KeySizeBits is the RSA key size used for both device and transport
// keys, and for Windows Hello keys.
const KeySizeBits = 2048

// GenerateRSAKey creates a new RSA-2048 keypair with the standard
// public exponent (65537).
func GenerateRSAKey() (*rsa.PrivateKey, error) {
	key, err := rsa.GenerateKey(rand.Reader, KeySizeBits)
	if err != nil {
		return nil, errors.Wrap(err, "generating rsa key")
	}
	return key, nil
}

// EncodePKCS1PEM serializes a private key the way roadlib does: PKCS#1
// ("TraditionalOpenSSL"), unencrypted.
func EncodePKCS1PEM(key *rsa.PrivateKey) []byte {
	block := &pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}
	return pem.EncodeToMemory(block)
}

// DecodePKCS1PEM loads a private key previously written by
// EncodePKCS1PEM, also tolerating PKCS#8 wrapping since some tooling
// writes keys that way.
func DecodePKCS1PEM(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("failed to decode PEM block")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	generic, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, errors.Wrap(err, "parsing private key")
	}
	key, ok := generic.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("key is not an RSA private key")
	}
	return key, nil
}
