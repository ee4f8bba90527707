package roadcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	jose "gopkg.in/square/go-jose.v2"
)

// authResponseHeader is the cleartext header carried in the first
// segment of an encrypted auth response; ctx names the KDF context
// used to derive the AES key from the PRT session key.
type authResponseHeader struct {
	Ctx string `json:"ctx"`
}

// UnwrapSessionKey decrypts the RSA-OAEP(SHA1)-wrapped session key
// Azure AD returns alongside a PRT, using the transport private key
// generated at device join time.
func UnwrapSessionKey(jwe string, transportKey *rsa.PrivateKey) ([]byte, error) {
	obj, err := jose.ParseEncrypted(jwe)
	if err != nil {
		return nil, errors.Wrap(err, "parsing session key jwe")
	}
	plaintext, err := obj.Decrypt(transportKey)
	if err != nil {
		return nil, errors.Wrap(err, "decrypting session key")
	}
	return plaintext, nil
}

// WrapSessionKey builds a compact JWE carrying sessionKey, wrapped
// under pub with RSA-OAEP/SHA-1 and AES-128-GCM content encryption —
// the same shape UnwrapSessionKey consumes. Exposed for tests that need
// to synthesize a session_key_jwe value.
func WrapSessionKey(pub *rsa.PublicKey, sessionKey []byte) (string, error) {
	encrypter, err := jose.NewEncrypter(jose.A128GCM, jose.Recipient{Algorithm: jose.RSA_OAEP, Key: pub}, nil)
	if err != nil {
		return "", errors.Wrap(err, "building session key encrypter")
	}
	obj, err := encrypter.Encrypt(sessionKey)
	if err != nil {
		return "", errors.Wrap(err, "rsa-oaep wrap")
	}
	return obj.CompactSerialize()
}

// DecryptAuthResponse implements roadlib's decrypt_auth_response. A
// PRT-session-key-encrypted response is framed like a compact JWE with
// five dot-separated segments: header.unused.iv.ciphertext.tag. The
// header's base64 "ctx" field is combined with sessionKey via KDFv1 to
// derive the AES key — there is no key-wrap segment as in a real JWE.
// If responseData does not look encrypted (starts with `{"`), it is
// returned as-is.
func DecryptAuthResponse(sessionKey []byte, responseData string) ([]byte, error) {
	if strings.HasPrefix(responseData, `{"`) {
		return []byte(responseData), nil
	}

	parts := strings.Split(responseData, ".")
	if len(parts) != 5 {
		return nil, errors.New("auth response: expected 5 compact segments")
	}
	headerSeg, ivSeg, dataSeg, tagSeg := parts[0], parts[2], parts[3], parts[4]

	headerRaw, err := base64.RawURLEncoding.DecodeString(headerSeg)
	if err != nil {
		return nil, errors.Wrap(err, "auth response: decoding header")
	}
	var header authResponseHeader
	if err := json.Unmarshal(headerRaw, &header); err != nil {
		return nil, errors.Wrap(err, "auth response: parsing header")
	}
	ctxBytes, err := base64.StdEncoding.DecodeString(header.Ctx)
	if err != nil {
		return nil, errors.Wrap(err, "auth response: decoding ctx")
	}
	_, derivedKey, err := KDFv1(sessionKey, ctxBytes)
	if err != nil {
		return nil, errors.Wrap(err, "auth response: deriving key")
	}

	iv, err := base64.RawURLEncoding.DecodeString(ivSeg)
	if err != nil {
		return nil, errors.Wrap(err, "auth response: decoding iv")
	}
	data, err := base64.RawURLEncoding.DecodeString(dataSeg)
	if err != nil {
		return nil, errors.Wrap(err, "auth response: decoding ciphertext")
	}
	tag, err := base64.RawURLEncoding.DecodeString(tagSeg)
	if err != nil {
		return nil, errors.Wrap(err, "auth response: decoding auth tag")
	}

	if len(iv) == 12 {
		return decryptGCM(derivedKey, iv, append(data, tag...), []byte(headerSeg))
	}
	return decryptCBCNoTag(derivedKey, iv, data)
}

// decryptGCM runs AES-GCM with the header's raw (still base64url)
// segment bytes as additional authenticated data, matching the
// Microsoft auth-response framing.
func decryptGCM(key, nonce, ciphertext, aad []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "auth response: aes cipher")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, "auth response: gcm")
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, errors.Wrap(err, "auth response: gcm open")
	}
	return plaintext, nil
}

// decryptCBCNoTag handles the legacy format: plain AES-CBC with
// PKCS7 padding and no authentication tag at all (the tag segment is
// present in the wire format but ignored).
func decryptCBCNoTag(key, iv, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, errors.New("auth response: malformed cbc ciphertext")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "auth response: aes cipher")
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ciphertext)
	return pkcs7Unpad(out)
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("pkcs7: empty input")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > len(data) || padLen > aes.BlockSize {
		return nil, errors.New("pkcs7: invalid padding")
	}
	return data[:len(data)-padLen], nil
}
