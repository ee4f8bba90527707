package device

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/lobpang/roadgo/internal/roadcrypto"
	"github.com/lobpang/roadgo/pkg/httpclient"
)

// HybridJoinRequest describes a hybrid (on-prem-synced) device join.
type HybridJoinRequest struct {
	DeviceName   string
	DeviceType   string
	OSVersion    string
	TargetDomain string
	ObjectSID    string
	TenantID     string
}

func (r *HybridJoinRequest) applyDefaults() {
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

type clientIdentityBody struct {
	Type       string `json:"Type"`
	Sid        string `json:"Sid"`
	SignedBlob string `json:"SignedBlob"`
}

type serverAdJoinDataBody struct {
	TransportKey      string             `json:"TransportKey"`
	TargetDomain      string             `json:"TargetDomain"`
	DeviceType        string             `json:"DeviceType"`
	OSVersion         string             `json:"OSVersion"`
	DeviceDisplayName string             `json:"DeviceDisplayName"`
	TargetDomainID    string             `json:"TargetDomainId"`
	ClientIdentity    clientIdentityBody `json:"ClientIdentity"`
}

type hybridEnrollBody struct {
	CertificateRequest certificateRequestBody `json:"CertificateRequest"`
	ServerAdJoinData   serverAdJoinDataBody   `json:"ServerAdJoinData"`
	JoinType           JoinType               `json:"JoinType"`
	Attributes         map[string]string      `json:"attributes"`
}

// HybridJoin registers a new cloud identity for a device that already
// has an on-prem AD device key/certificate (existing), signing the
// object SID + timestamp blob with that existing key per the
// "sha256signed" ClientIdentity scheme, and returns the new Identity
// issued for the cloud side.
func HybridJoin(ctx context.Context, client httpclient.Client, existing *Identity, req HybridJoinRequest) (*Identity, error) {
	req.applyDefaults()
	if existing == nil || existing.Key == nil || existing.Certificate == nil {
		return nil, errors.New("device: hybrid join requires an existing device key and certificate")
	}

	newKey, err := roadcrypto.GenerateRSAKey()
	if err != nil {
		return nil, err
	}
	csrDER, err := roadcrypto.BuildDeviceCSR(newKey)
	if err != nil {
		return nil, err
	}

	signData := fmt.Sprintf("%s.%sZ", req.ObjectSID, time.Now().UTC().Format(timeLayoutNoZ))
	digest := sha256.Sum256([]byte(signData))
	signature, err := rsa.SignPKCS1v15(rand.Reader, existing.Key, crypto.SHA256, digest[:])
	if err != nil {
		return nil, errors.Wrap(err, "signing hybrid join blob")
	}

	blob := roadcrypto.EncodeRSA1Blob(&newKey.PublicKey)
	body := hybridEnrollBody{
		CertificateRequest: certificateRequestBody{
			Type: "pkcs10",
			Data: base64.StdEncoding.EncodeToString(csrDER),
		},
		ServerAdJoinData: serverAdJoinDataBody{
			TransportKey:      base64.StdEncoding.EncodeToString(blob),
			TargetDomain:      req.TargetDomain,
			DeviceType:        req.DeviceType,
			OSVersion:         req.OSVersion,
			DeviceDisplayName: req.DeviceName,
			TargetDomainID:    req.TenantID,
			ClientIdentity: clientIdentityBody{
				Type:       "sha256signed",
				Sid:        signData,
				SignedBlob: base64.StdEncoding.EncodeToString(signature),
			},
		},
		JoinType: JoinTypeHybridJoin,
		Attributes: map[string]string{
			"ReuseDevice":     "true",
			"ReturnClientSid": "true",
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "encoding hybrid join request")
	}

	url := fmt.Sprintf("https://enterpriseregistration.windows.net/EnrollmentServer/device/%s?api-version=2.0", existing.DeviceID)
	headers := http.Header{
		"User-Agent":   {fmt.Sprintf("Dsreg/10.0 (Windows %s)", req.OSVersion)},
		"Content-Type": {"application/json"},
	}
	resp, err := client.Post(ctx, url, headers, payload)
	if err != nil {
		return nil, errors.Wrap(err, "posting hybrid join request")
	}

	var reply enrollResponse
	if err := json.Unmarshal(resp.Body, &reply); err != nil {
		return nil, errors.Wrap(err, "decoding hybrid join response")
	}
	if reply.Certificate == nil || reply.Certificate.RawBody == "" {
		return nil, errors.Errorf("hybrid device join failed: %s", resp.Body)
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
		Key:         newKey,
		Certificate: cert,
		DeviceID:    deviceIDFromCert(cert),
	}, nil
}

const timeLayoutNoZ = "2006-01-02 15:04:05"
