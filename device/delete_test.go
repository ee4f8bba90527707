package device

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeleteRejectsIdentityMissingCertificateOrKey(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	require.Error(t, Delete(context.Background(), &Identity{}, true))
	require.Error(t, Delete(context.Background(), &Identity{Key: key}, true))
}
