package device

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/lobpang/roadgo/pkg/httpclient"
)

// Delete removes id from Azure AD, authenticating with the device
// certificate over mutual TLS rather than a bearer token.
func Delete(ctx context.Context, id *Identity, verifyTLS bool) error {
	if id.Certificate == nil || id.Key == nil {
		return errors.New("device: delete requires a loaded certificate and key")
	}
	cert := tls.Certificate{
		Certificate: [][]byte{id.Certificate.Raw},
		PrivateKey:  id.Key,
	}
	client, err := httpclient.NewMutualTLS(cert, verifyTLS)
	if err != nil {
		return errors.Wrap(err, "building mutual-tls client")
	}

	url := fmt.Sprintf("https://enterpriseregistration.windows.net/EnrollmentServer/device/%s?", id.DeviceID)
	resp, err := client.Delete(ctx, url, http.Header{})
	if err != nil {
		return errors.Wrap(err, "deleting device")
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("device deletion failed: %s", resp.Body)
	}
	return nil
}
