package roadgo

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	validator "github.com/mattermost/xml-roundtrip-validator"
	"github.com/pkg/errors"

	"github.com/lobpang/roadgo/token"
)

// dssoUsernamePasswordEnvelope builds the WS-Trust RST SOAP body the
// usernamemixed endpoint expects.
const dssoUsernamePasswordEnvelope = `<?xml version="1.0" encoding="UTF-8"?>
<s:Envelope xmlns:s="http://www.w3.org/2003/05/soap-envelope" xmlns:a="http://www.w3.org/2005/08/addressing" xmlns:u="http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-utility-1.0.xsd">
  <s:Header>
    <a:Action s:mustUnderstand="1">http://schemas.xmlsoap.org/ws/2005/02/trust/RST/Issue</a:Action>
    <a:To s:mustUnderstand="1">%s</a:To>
    <a:MessageID>urn:uuid:%s</a:MessageID>
    <o:Security s:mustUnderstand="1" xmlns:o="http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-secext-1.0.xsd">
      <u:Timestamp u:Id="_0">
        <u:Created>%s</u:Created>
        <u:Expires>%s</u:Expires>
      </u:Timestamp>
      <o:UsernameToken u:Id="uuid-%s">
        <o:Username>%s</o:Username>
        <o:Password>%s</o:Password>
      </o:UsernameToken>
    </o:Security>
  </s:Header>
  <s:Body>
    <trust:RequestSecurityToken xmlns:trust="http://docs.oasis-open.org/ws-sx/ws-trust/200512">
      <wsp:AppliesTo xmlns:wsp="http://schemas.xmlsoap.org/ws/2004/09/policy">
        <a:EndpointReference>
          <a:Address>urn:federation:MicrosoftOnline</a:Address>
        </a:EndpointReference>
      </wsp:AppliesTo>
      <trust:KeyType>http://docs.oasis-open.org/ws-sx/ws-trust/200512/Bearer</trust:KeyType>
      <trust:RequestType>http://docs.oasis-open.org/ws-sx/ws-trust/200512/Issue</trust:RequestType>
    </trust:RequestSecurityToken>
  </s:Body>
</s:Envelope>`

// GetDesktopSSOToken posts a WS-Trust SOAP envelope to the
// username/password Desktop SSO trust endpoint and extracts the
// DesktopSsoToken from the response. The Kerberos/"windowstransport"
// variant is not implemented: it requires a Negotiate header sourced
// from the host's SSPI/GSSAPI context, which this module does not
// provide an abstraction for.
func (c *Context) GetDesktopSSOToken(ctx context.Context, username, password string) (string, error) {
	now := time.Now().UTC()
	envelope := fmt.Sprintf(dssoUsernamePasswordEnvelope,
		dssoEndpoint(c.Tenant, dssoUsernameMixedPath),
		soapMessageID(),
		now.Format(time.RFC3339),
		now.Add(10*time.Minute).Format(time.RFC3339),
		soapMessageID(),
		xmlEscape(username),
		xmlEscape(password),
	)

	resp, err := c.client().Post(ctx, dssoEndpoint(c.Tenant, dssoUsernameMixedPath),
		http.Header{"Content-Type": {"application/soap+xml; charset=utf-8"}}, []byte(envelope))
	if err != nil {
		return "", errors.Wrap(err, "posting desktop sso request")
	}
	if resp.StatusCode != http.StatusOK {
		return "", NewAuthErrorFromBody("desktop sso request failed", resp.Body)
	}

	return extractDesktopSSOToken(resp.Body)
}

// extractDesktopSSOToken parses a WS-Trust SOAP response, validating
// well-formedness before handing it to etree, and returns the
// DesktopSsoToken element's text content wherever it appears in the
// document.
func extractDesktopSSOToken(body []byte) (string, error) {
	if err := validator.Validate(bytes.NewReader(body)); err != nil {
		return "", errors.Wrap(err, "desktop sso response failed xml validation")
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return "", errors.Wrap(err, "parsing desktop sso response")
	}

	for _, el := range doc.FindElements("//DesktopSsoToken") {
		return el.Text(), nil
	}
	return "", errors.New("desktop sso response: DesktopSsoToken element not found")
}

// AuthenticateWithDesktopSSOToken wraps a raw DesktopSsoToken in the
// SAML1.1-bearer assertion shape the token endpoint expects and
// redeems it.
func (c *Context) AuthenticateWithDesktopSSOToken(ctx context.Context, dssoToken string, extra map[string]string) (*token.Data, error) {
	assertion := []byte(fmt.Sprintf(
		`<saml:Assertion xmlns:saml="urn:oasis:names:tc:SAML:1.0:assertion"><DesktopSsoToken>%s</DesktopSsoToken></saml:Assertion>`,
		xmlEscape(dssoToken)))
	return c.SAML(ctx, assertion, extra)
}

func soapMessageID() string {
	return uuid.New().String()
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
