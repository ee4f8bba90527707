package roadcrypto

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// jwkFields mirrors the field order roadlib emits; compact, no
// whitespace, matching json.Marshal's default separators.
type jwkFields struct {
	Kty string `json:"kty"`
	E   string `json:"e"`
	N   string `json:"n"`
	Alg string `json:"alg,omitempty"`
	Kid string `json:"kid,omitempty"`
}

// RegistrationJWK encodes a public key using standard (non-URL-safe)
// base64 with the extra fields the device/key registration endpoints
// expect: alg=RS256 and a random uppercase-UUID kid.
func RegistrationJWK(pub *rsa.PublicKey) ([]byte, error) {
	jwk := jwkFields{
		Kty: "RSA",
		E:   base64.StdEncoding.EncodeToString(bigIntBytes(int64(pub.E))),
		N:   base64.StdEncoding.EncodeToString(pub.N.Bytes()),
		Alg: "RS256",
		Kid: strings.ToUpper(uuid.New().String()),
	}
	return json.Marshal(jwk)
}

// GeneralJWK encodes a public key using URL-safe base64 without padding,
// and only the minimal {kty,e,n} fields, matching the "general" JWK mode.
func GeneralJWK(pub *rsa.PublicKey) ([]byte, error) {
	jwk := jwkFields{
		Kty: "RSA",
		E:   base64.RawURLEncoding.EncodeToString(bigIntBytes(int64(pub.E))),
		N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
	}
	return json.Marshal(jwk)
}
