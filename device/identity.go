// Package device implements Azure AD device registration: generating
// the device keypair, building the enrollment CSR, registering with
// the enrollment service (primary and hybrid join), Windows Hello key
// registration, and device deletion.
package device

import (
	"crypto/rsa"
	"crypto/x509"

	"github.com/pkg/errors"
)

// JoinType mirrors the values Azure AD's enrollment service expects.
type JoinType int

const (
	JoinTypeAzureADJoin JoinType = 0
	JoinTypeRegister    JoinType = 4
	JoinTypeHybridJoin  JoinType = 6
)

// Identity is a registered device's key material: an RSA device key
// (doubling as transport key unless TransportKey is set separately)
// and the certificate the enrollment service issued for it.
type Identity struct {
	Key          *rsa.PrivateKey
	TransportKey *rsa.PrivateKey
	Certificate  *x509.Certificate
	DeviceID     string
}

// transportKeyOrDefault returns the identity's dedicated transport key, falling
// back to the device key when no separate one was loaded — the two
// roles alias onto the same key by default.
func (id *Identity) transportKeyOrDefault() *rsa.PrivateKey {
	if id.TransportKey != nil {
		return id.TransportKey
	}
	return id.Key
}

// TransportPrivateKey exposes the key used to unwrap RSA-OAEP-wrapped session
// keys, whether or not it's distinct from the device key.
func (id *Identity) TransportPrivateKey() (*rsa.PrivateKey, error) {
	key := id.transportKeyOrDefault()
	if key == nil {
		return nil, errors.New("device: no transport key loaded")
	}
	return key, nil
}

// deviceIDFromCert extracts the AAD device ID from a certificate's
// subject common name, the convention the enrollment service uses.
func deviceIDFromCert(cert *x509.Certificate) string {
	return cert.Subject.CommonName
}
