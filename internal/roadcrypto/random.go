package roadcrypto

import (
	"crypto/rand"

	"github.com/pkg/errors"
)

// RandBytes returns n cryptographically random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	got, err := rand.Read(b)
	if err != nil {
		return nil, errors.Wrap(err, "reading random bytes")
	}
	if got != n {
		return nil, errors.New("unable to generate enough random data")
	}
	return b, nil
}
