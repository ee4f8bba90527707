package prt

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/lobpang/roadgo/internal/roadcrypto"
	"github.com/lobpang/roadgo/pkg/httpclient"
)

// srvChallenge fetches a fresh server nonce from the common-tenant
// /token endpoint, used by PRT acquisition, PRT renewal and WAM
// brokerplugin requests for their request_nonce.
func srvChallenge(ctx context.Context, client httpclient.Client) (string, error) {
	form := url.Values{"grant_type": {"srv_challenge"}}
	resp, err := client.Post(ctx, tokenEndpoint, http.Header{"Content-Type": {"application/x-www-form-urlencoded"}}, []byte(form.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "requesting srv_challenge")
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("srv_challenge failed: %s", resp.Body)
	}
	var reply struct {
		Nonce string `json:"Nonce"`
	}
	if err := json.Unmarshal(resp.Body, &reply); err != nil {
		return "", errors.Wrap(err, "decoding srv_challenge reply")
	}
	return reply.Nonce, nil
}

// signWithSessionKeyV2 implements the shared derive-while-signing dance
// used for PRT-cookie v2, PRT renewal, and WAM brokerplugin requests:
// a random 24-byte context is generated, the payload is first signed
// with a throwaway random HS256 key purely to obtain the JWT body's
// canonical bytes, KDFv2 derives the real signing key from that body,
// and the payload is re-signed with the derived key.
func signWithSessionKeyV2(sessionKey []byte, payload map[string]interface{}) (string, error) {
	kdfContext, err := roadcrypto.RandBytes(24)
	if err != nil {
		return "", err
	}
	headers := map[string]interface{}{
		"ctx":     base64.StdEncoding.EncodeToString(kdfContext),
		"kdf_ver": 2,
	}

	tempKey, err := roadcrypto.RandBytes(32)
	if err != nil {
		return "", err
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, "encoding payload")
	}
	tempJWT, err := roadcrypto.SignHS256(tempKey, payloadJSON, headers)
	if err != nil {
		return "", err
	}
	jwtBody, err := roadcrypto.UnverifiedJWTBody(tempJWT)
	if err != nil {
		return "", err
	}

	_, derivedKey, err := roadcrypto.KDFv2(sessionKey, kdfContext, jwtBody)
	if err != nil {
		return "", err
	}
	return roadcrypto.SignHS256(derivedKey, payloadJSON, headers)
}

// requestTokenWithSessionKeySignedPayload posts a session-key-signed
// JWT-bearer request to the common /token endpoint, the envelope PRT
// renewal and WAM brokerplugin auth both use.
func requestTokenWithSessionKeySignedPayload(ctxParent context.Context, client httpclient.Client, sessionKey []byte, payload map[string]interface{}, includeTGT bool) (string, error) {
	reqJWT, err := signWithSessionKeyV2(sessionKey, payload)
	if err != nil {
		return "", err
	}

	form := url.Values{
		"windows_api_version": {"2.2"},
		"grant_type":          {"urn:ietf:params:oauth:grant-type:jwt-bearer"},
		"request":             {reqJWT},
		"client_info":         {"1"},
	}
	if includeTGT {
		form.Set("tgt", "true")
	}

	resp, err := client.Post(ctxParent, tokenEndpoint, http.Header{"Content-Type": {"application/x-www-form-urlencoded"}}, []byte(form.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "posting session-key-signed request")
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("session-key-signed request failed: %s", resp.Body)
	}
	return string(resp.Body), nil
}

