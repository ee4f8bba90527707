package device

import (
	"context"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"math/rand"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/lobpang/roadgo/internal/roadcrypto"
	"github.com/lobpang/roadgo/pkg/httpclient"
)

const enrollmentEndpoint = "https://enterpriseregistration.windows.net/EnrollmentServer/device/?api-version=2.0"

// EnrollRequest describes a primary device-join request. Any empty
// field is filled in with the same defaults roadlib uses.
type EnrollRequest struct {
	DeviceName   string
	DeviceType   string // "Windows" or "MacOS" (case-insensitive)
	OSVersion    string
	TargetDomain string
	JoinType     JoinType
	DeviceTicket []byte // optional MSA-DDID
}

func (r *EnrollRequest) applyDefaults() {
	if r.DeviceName == "" {
		r.DeviceName = "DESKTOP-" + randomUpperAlnum(8)
	}
	if r.DeviceType == "" {
		r.DeviceType = "Windows"
	}
	if r.OSVersion == "" {
		r.OSVersion = "10.0.19041.928"
	}
	if r.TargetDomain == "" {
		r.TargetDomain = "iminyour.cloud"
	}
}

// certificateRequestBody is the {Type,Data} shape the enrollment API
// expects for the CSR field, shared across primary and hybrid join.
type certificateRequestBody struct {
	Type string `json:"Type"`
	Data string `json:"Data"`
}

type windowsEnrollBody struct {
	CertificateRequest certificateRequestBody `json:"CertificateRequest"`
	TransportKey       string                 `json:"TransportKey"`
	TargetDomain       string                 `json:"TargetDomain"`
	DeviceType         string                 `json:"DeviceType"`
	OSVersion          string                 `json:"OSVersion"`
	DeviceDisplayName  string                 `json:"DeviceDisplayName"`
	JoinType           JoinType               `json:"JoinType"`
	Attributes         map[string]string      `json:"attributes"`
}

type macOSEnrollBody struct {
	DeviceDisplayName  string                 `json:"DeviceDisplayName"`
	CertificateRequest certificateRequestBody `json:"CertificateRequest"`
	OSVersion          string                 `json:"OSVersion"`
	TargetDomain       string                 `json:"TargetDomain"`
	AikCertificate     string                 `json:"AikCertificate"`
	DeviceType         string                 `json:"DeviceType"`
	TransportKey       string                 `json:"TransportKey"`
	JoinType           JoinType               `json:"JoinType"`
	AttestationData    string                 `json:"AttestationData"`
}

type enrollResponse struct {
	Certificate *struct {
		RawBody string `json:"RawBody"`
	} `json:"Certificate"`
}

// Enroll performs a primary Azure AD join: generates an RSA-2048
// keypair, builds the enrollment CSR, POSTs the registration request
// bearing accessToken, and returns the resulting Identity (device key
// plus the issued certificate).
func Enroll(ctx context.Context, client httpclient.Client, accessToken string, req EnrollRequest) (*Identity, error) {
	req.applyDefaults()

	key, err := roadcrypto.GenerateRSAKey()
	if err != nil {
		return nil, err
	}
	csrDER, err := roadcrypto.BuildDeviceCSR(key)
	if err != nil {
		return nil, err
	}
	csrReq := certificateRequestBody{
		Type: "pkcs10",
		Data: base64.StdEncoding.EncodeToString(csrDER),
	}

	var body interface{}
	if strings.EqualFold(req.DeviceType, "macos") {
		jwk, err := roadcrypto.RegistrationJWK(&key.PublicKey)
		if err != nil {
			return nil, err
		}
		body = macOSEnrollBody{
			DeviceDisplayName:  req.DeviceName,
			CertificateRequest: csrReq,
			OSVersion:          "12.2.0", // hard-coded regardless of req.OSVersion, matching the original
			TargetDomain:       req.TargetDomain,
			AikCertificate:     "",
			DeviceType:         "MacOS",
			TransportKey:       base64.StdEncoding.EncodeToString(jwk),
			JoinType:           req.JoinType,
			AttestationData:    "",
		}
	} else {
		blob := roadcrypto.EncodeRSA1Blob(&key.PublicKey)
		attrs := map[string]string{
			"ReuseDevice":     "true",
			"ReturnClientSid": "true",
		}
		if len(req.DeviceTicket) > 0 {
			attrs["MSA-DDID"] = base64.StdEncoding.EncodeToString(req.DeviceTicket)
		}
		body = windowsEnrollBody{
			CertificateRequest: csrReq,
			TransportKey:       base64.StdEncoding.EncodeToString(blob),
			TargetDomain:       req.TargetDomain,
			DeviceType:         req.DeviceType,
			OSVersion:          req.OSVersion,
			DeviceDisplayName:  req.DeviceName,
			JoinType:           req.JoinType,
			Attributes:         attrs,
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "encoding enrollment request")
	}

	headers := http.Header{
		"Authorization": {"Bearer " + accessToken},
		"Content-Type":  {"application/json"},
	}
	resp, err := client.Post(ctx, enrollmentEndpoint, headers, payload)
	if err != nil {
		return nil, errors.Wrap(err, "posting enrollment request")
	}

	var reply enrollResponse
	if err := json.Unmarshal(resp.Body, &reply); err != nil {
		return nil, errors.Wrap(err, "decoding enrollment response")
	}
	if reply.Certificate == nil || reply.Certificate.RawBody == "" {
		return nil, errors.Errorf("device enrollment failed: %s", resp.Body)
	}

	certDER, err := base64.StdEncoding.DecodeString(reply.Certificate.RawBody)
	if err != nil {
		return nil, errors.Wrap(err, "decoding issued certificate")
	}
	cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		return nil, errors.Wrap(err, "parsing issued certificate")
	}

	return &Identity{
		Key:         key,
		Certificate: cert,
		DeviceID:    deviceIDFromCert(cert),
	}, nil
}

const upperAlnum = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomUpperAlnum(n int) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = upperAlnum[rand.Intn(len(upperAlnum))]
	}
	return string(out)
}
