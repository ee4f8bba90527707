package roadcrypto

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	jose "gopkg.in/square/go-jose.v2"
)

// SignRS256 signs payload with the device or transport private key,
// embedding extraHeaders (e.g. x5c for the device certificate) into
// the JWS protected header, and returns the compact serialization.
func SignRS256(key *rsa.PrivateKey, payload []byte, extraHeaders map[string]interface{}) (string, error) {
	opts := &jose.SignerOptions{}
	opts.WithType("JWT")
	for k, v := range extraHeaders {
		opts = opts.WithHeader(jose.HeaderKey(k), v)
	}

	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.RS256, Key: key}, opts)
	if err != nil {
		return "", errors.Wrap(err, "building rs256 signer")
	}
	jws, err := signer.Sign(payload)
	if err != nil {
		return "", errors.Wrap(err, "signing jwt")
	}
	return jws.CompactSerialize()
}

// SignHS256 signs payload with a derived session key (the PRT cookie
// signature scheme), embedding extraHeaders such as ctx and kdf_ver.
func SignHS256(key []byte, payload []byte, extraHeaders map[string]interface{}) (string, error) {
	opts := &jose.SignerOptions{}
	for k, v := range extraHeaders {
		opts = opts.WithHeader(jose.HeaderKey(k), v)
	}

	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: key}, opts)
	if err != nil {
		return "", errors.Wrap(err, "building hs256 signer")
	}
	jws, err := signer.Sign(payload)
	if err != nil {
		return "", errors.Wrap(err, "signing jwt")
	}
	return jws.CompactSerialize()
}

// VerifyHS256 checks a compact JWS signed with SignHS256 and returns
// its payload.
func VerifyHS256(key []byte, compact string) ([]byte, error) {
	jws, err := jose.ParseSigned(compact)
	if err != nil {
		return nil, errors.Wrap(err, "parsing jws")
	}
	payload, err := jws.Verify(key)
	if err != nil {
		return nil, errors.Wrap(err, "verifying hs256 signature")
	}
	return payload, nil
}

// UnverifiedJWTBody returns the raw (still base64url-decoded) body
// segment of a compact JWT/JWS without checking its signature, needed
// wherever roadlib reads claims out of a server-issued token it has no
// independent way to verify (e.g. the PRT assertion Azure AD returns).
func UnverifiedJWTBody(compact string) ([]byte, error) {
	parts := strings.Split(compact, ".")
	if len(parts) < 2 {
		return nil, errors.New("jwt: expected at least header.payload")
	}
	return base64.RawURLEncoding.DecodeString(parts[1])
}

// UnverifiedJWTClaims decodes the payload segment of compact into v,
// again without any signature check.
func UnverifiedJWTClaims(compact string, v interface{}) error {
	body, err := UnverifiedJWTBody(compact)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrap(err, "jwt: decoding claims")
	}
	return nil
}
