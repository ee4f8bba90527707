package roadcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionKeyWrapUnwrapRoundTrip(t *testing.T) {
	transportKey, err := GenerateRSAKey()
	require.NoError(t, err)

	sessionKey, err := RandBytes(32)
	require.NoError(t, err)

	jwe, err := WrapSessionKey(&transportKey.PublicKey, sessionKey)
	require.NoError(t, err)

	unwrapped, err := UnwrapSessionKey(jwe, transportKey)
	require.NoError(t, err)
	require.Equal(t, sessionKey, unwrapped)
}

func TestDecryptAuthResponsePassesThroughPlainJSON(t *testing.T) {
	out, err := DecryptAuthResponse([]byte("irrelevant"), `{"already":"plain"}`)
	require.NoError(t, err)
	require.JSONEq(t, `{"already":"plain"}`, string(out))
}

func TestDecryptAuthResponseGCM(t *testing.T) {
	sessionKey, err := RandBytes(32)
	require.NoError(t, err)
	kdfContext, derivedKey, err := KDFv1(sessionKey, nil)
	require.NoError(t, err)

	header := authResponseHeader{Ctx: base64.StdEncoding.EncodeToString(kdfContext)}
	headerJSON, err := json.Marshal(header)
	require.NoError(t, err)
	headerSeg := base64.RawURLEncoding.EncodeToString(headerJSON)

	iv, err := RandBytes(12)
	require.NoError(t, err)

	plaintext := []byte(`{"refresh_token":"opaque-refresh-token"}`)
	block, err := aes.NewCipher(derivedKey)
	require.NoError(t, err)
	gcm, err := cipher.NewGCM(block)
	require.NoError(t, err)
	sealed := gcm.Seal(nil, iv, plaintext, []byte(headerSeg))
	ciphertext, tag := sealed[:len(sealed)-gcm.Overhead()], sealed[len(sealed)-gcm.Overhead():]

	responseData := fmt.Sprintf("%s.%s.%s.%s.%s",
		headerSeg,
		base64.RawURLEncoding.EncodeToString([]byte("unused")),
		base64.RawURLEncoding.EncodeToString(iv),
		base64.RawURLEncoding.EncodeToString(ciphertext),
		base64.RawURLEncoding.EncodeToString(tag),
	)

	out, err := DecryptAuthResponse(sessionKey, responseData)
	require.NoError(t, err)
	require.Equal(t, plaintext, out)
}

func TestDecryptAuthResponseRejectsMalformedSegments(t *testing.T) {
	_, err := DecryptAuthResponse([]byte("key"), "only.two.segments")
	require.Error(t, err)
}

func TestPKCS7UnpadRejectsInvalidPadding(t *testing.T) {
	_, err := pkcs7Unpad([]byte{1, 2, 3, 0})
	require.Error(t, err)

	_, err = pkcs7Unpad(nil)
	require.Error(t, err)
}
