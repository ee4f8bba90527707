package device

import (
	"crypto/x509"
	"encoding/pem"

	"github.com/pkg/errors"

	"github.com/lobpang/roadgo/internal/roadcrypto"
)

// EncodeKeyPEM renders id.Key as the same unencrypted PKCS#1 PEM
// format enrollment writes to disk.
func (id *Identity) EncodeKeyPEM() []byte {
	return roadcrypto.EncodePKCS1PEM(id.Key)
}

// EncodeCertPEM renders id.Certificate as a PEM block, or nil if no
// certificate has been issued yet.
func (id *Identity) EncodeCertPEM() []byte {
	if id.Certificate == nil {
		return nil
	}
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: id.Certificate.Raw})
}

// LoadIdentity reconstructs an Identity from a PEM-encoded key and
// (optionally) a PEM-encoded certificate, the inverse of enrollment's
// on-disk persistence.
func LoadIdentity(keyPEM, certPEM []byte) (*Identity, error) {
	key, err := roadcrypto.DecodePKCS1PEM(keyPEM)
	if err != nil {
		return nil, errors.Wrap(err, "loading device key")
	}
	id := &Identity{Key: key}

	if len(certPEM) > 0 {
		block, _ := pem.Decode(certPEM)
		if block == nil {
			return nil, errors.New("device: failed to decode certificate PEM")
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, errors.Wrap(err, "parsing device certificate")
		}
		id.Certificate = cert
		id.DeviceID = deviceIDFromCert(cert)
	}
	return id, nil
}

// LoadTransportOnly loads keyPEM purely as a transport key, leaving
// Key/Certificate unset — used when the device cert belongs to a
// different keypair than the one unwrapping session keys.
func LoadTransportOnly(keyPEM []byte) (*Identity, error) {
	key, err := roadcrypto.DecodePKCS1PEM(keyPEM)
	if err != nil {
		return nil, errors.Wrap(err, "loading transport key")
	}
	return &Identity{TransportKey: key}, nil
}
