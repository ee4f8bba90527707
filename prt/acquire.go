package prt

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/lobpang/roadgo/device"
	"github.com/lobpang/roadgo/internal/roadcrypto"
	"github.com/lobpang/roadgo/pkg/httpclient"
)

// tokenEndpoint is the fixed common-tenant endpoint every PRT request
// goes through, regardless of the caller's own tenant.
const tokenEndpoint = "https://login.microsoftonline.com/common/oauth2/token"

// Fixed client IDs the PRT protocol signs requests with.
const (
	clientIDPRT        = "38aa3b87-a06d-4817-b275-7a316988d93b"
	clientIDRefreshPRT = "29d9ed98-a469-4536-ade2-f981bc1d605e"
)

// Credential selects which inner grant a PRT-acquisition request uses.
type Credential struct {
	Password     *PasswordCredential
	SAML         []byte
	RefreshToken string
	Hello        *HelloCredential
}

type PasswordCredential struct {
	Username string
	Password string
}

// HelloCredential signs the inner assertion with a Windows Hello key
// instead of a password/SAML assertion.
type HelloCredential struct {
	Username string
	Key      *device.HelloKey
}

// helloAssertion builds and signs the inner "ngc" JWT the Hello flow
// wraps in the outer device-cert-signed request: a short-lived RS256
// token identifying the user, keyed by the Hello key's kid rather than
// the device certificate.
func helloAssertion(cred *HelloCredential) (string, error) {
	now := time.Now().Unix()
	payload := map[string]interface{}{
		"iss":   cred.Username,
		"aud":   "common",
		"iat":   now - 3600,
		"exp":   now + 3600,
		"scope": "openid aza ugs",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, "encoding hello assertion payload")
	}
	headers := map[string]interface{}{
		"kid": cred.Key.KID,
		"use": "ngc",
	}
	return roadcrypto.SignRS256(cred.Key.Key, body, headers)
}

// Result is what a successful PRT acquisition yields: the refresh
// token, unwrapped session key, and any decrypted Kerberos TGT session
// keys present in the reply.
type Result struct {
	Material    *Material
	TGTADKey    []byte
	TGTCloudKey []byte
	RawReply    map[string]interface{}
}

type tgtEntry struct {
	KeyType   int    `json:"keyType"`
	ClientKey string `json:"clientKey"`
}

// Acquire obtains a new PRT using the device certificate to sign a
// JWT-bearer assertion. server nonce is fetched first via srv_challenge.
func Acquire(ctx context.Context, client httpclient.Client, id *device.Identity, cred Credential) (*Result, error) {
	nonce, err := srvChallenge(ctx, client)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"request_nonce": nonce,
		"scope":         "openid aza ugs",
		"group_sids":    []string{},
		"win_ver":       "10.0.19041.868",
	}

	switch {
	case cred.Password != nil:
		payload["client_id"] = clientIDPRT
		payload["grant_type"] = "password"
		payload["username"] = cred.Password.Username
		payload["password"] = cred.Password.Password
	case cred.SAML != nil:
		payload["client_id"] = clientIDPRT
		payload["grant_type"] = "urn:ietf:params:oauth:grant-type:saml1_1-bearer"
		payload["assertion"] = base64.StdEncoding.EncodeToString(cred.SAML)
	case cred.RefreshToken != "":
		payload["client_id"] = clientIDRefreshPRT
		payload["grant_type"] = "refresh_token"
		payload["refresh_token"] = cred.RefreshToken
	case cred.Hello != nil:
		assertion, err := helloAssertion(cred.Hello)
		if err != nil {
			return nil, err
		}
		payload["client_id"] = clientIDPRT
		payload["grant_type"] = "urn:ietf:params:oauth:grant-type:jwt-bearer"
		payload["username"] = cred.Hello.Username
		payload["assertion"] = assertion
	default:
		return nil, errors.New("prt: no credential supplied")
	}

	if id == nil || id.Certificate == nil || id.Key == nil {
		return nil, errors.New("prt: device identity with certificate and key is required")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "encoding prt request payload")
	}

	headers := map[string]interface{}{
		"x5c":     base64.StdEncoding.EncodeToString(id.Certificate.Raw),
		"kdf_ver": 2,
	}
	reqJWT, err := roadcrypto.SignRS256(id.Key, body, headers)
	if err != nil {
		return nil, err
	}

	form := url.Values{
		"windows_api_version": {"2.2"},
		"grant_type":          {"urn:ietf:params:oauth:grant-type:jwt-bearer"},
		"request":             {reqJWT},
		"client_info":         {"1"},
		"tgt":                 {"true"},
	}

	resp, err := client.Post(ctx, tokenEndpoint, http.Header{"Content-Type": {"application/x-www-form-urlencoded"}}, []byte(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "posting prt request")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("prt acquisition failed: %s", resp.Body)
	}

	var reply map[string]interface{}
	if err := json.Unmarshal(resp.Body, &reply); err != nil {
		return nil, errors.Wrap(err, "decoding prt reply")
	}

	sessionKeyJWE, _ := reply["session_key_jwe"].(string)
	if sessionKeyJWE == "" {
		return nil, errors.New("prt: reply did not contain session_key_jwe")
	}
	transportKey, err := id.TransportPrivateKey()
	if err != nil {
		return nil, err
	}
	sessionKey, err := roadcrypto.UnwrapSessionKey(sessionKeyJWE, transportKey)
	if err != nil {
		return nil, errors.Wrap(err, "unwrapping prt session key")
	}

	refreshToken, _ := reply["refresh_token"].(string)
	result := &Result{
		Material: &Material{RefreshToken: refreshToken, SessionKey: sessionKey},
		RawReply: reply,
	}

	if raw, ok := reply["tgt_ad"].(string); ok {
		if key, err := decryptTGTKey(raw, sessionKey); err == nil {
			result.TGTADKey = key
		}
	}
	if raw, ok := reply["tgt_cloud"].(string); ok {
		if key, err := decryptTGTKey(raw, sessionKey); err == nil {
			result.TGTCloudKey = key
		}
	}

	return result, nil
}

// decryptTGTKey parses a tgt_ad/tgt_cloud JSON blob and, if it carries
// an actual key (keyType != 0), decrypts its clientKey using the
// session key via the same framing decrypt_auth_response uses.
func decryptTGTKey(raw string, sessionKey []byte) ([]byte, error) {
	var entry tgtEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, errors.Wrap(err, "parsing tgt entry")
	}
	if entry.KeyType == 0 {
		return nil, errors.New("prt: tgt entry has no key")
	}
	return roadcrypto.DecryptAuthResponse(sessionKey, entry.ClientKey)
}
