package roadcrypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRSA1BlobRoundTrip(t *testing.T) {
	key, err := GenerateRSAKey()
	require.NoError(t, err)

	blob := EncodeRSA1Blob(&key.PublicKey)
	require.Equal(t, "RSA1", string(blob[:4]))

	decoded, err := DecodeRSA1Blob(blob)
	require.NoError(t, err)
	require.Equal(t, key.PublicKey.E, decoded.E)
	require.Equal(t, 0, key.PublicKey.N.Cmp(decoded.N))
}

func TestDecodeRSA1BlobRejectsBadMagic(t *testing.T) {
	_, err := DecodeRSA1Blob(append([]byte("XXXX"), make([]byte, 20)...))
	require.Error(t, err)
}

func TestDecodeRSA1BlobRejectsTruncatedPayload(t *testing.T) {
	key, err := GenerateRSAKey()
	require.NoError(t, err)
	blob := EncodeRSA1Blob(&key.PublicKey)

	_, err = DecodeRSA1Blob(blob[:len(blob)-4])
	require.Error(t, err)
}
