package roadcrypto

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"

	"github.com/pkg/errors"
)

// PlaceholderDeviceID is the CN every enrollment CSR is built with; the
// server assigns the real device ID (a GUID) in its response and the
// caller must not read anything into this value.
const PlaceholderDeviceID = "7E980AD9-B86D-4306-9425-9AC066FB014A"

// BuildDeviceCSR builds a PKCS#10 certificate signing request for device
// registration, SHA-256 signed by the device key, with subject CN set
// to PlaceholderDeviceID.
func BuildDeviceCSR(key *rsa.PrivateKey) ([]byte, error) {
	template := &x509.CertificateRequest{
		Subject:            pkix.Name{CommonName: PlaceholderDeviceID},
		SignatureAlgorithm: x509.SHA256WithRSA,
	}
	der, err := x509.CreateCertificateRequest(rand.Reader, template, crypto.Signer(key))
	if err != nil {
		return nil, errors.Wrap(err, "creating certificate request")
	}
	return der, nil
}
