// Package roadgo implements an Azure AD / Entra ID device-identity and
// Primary Refresh Token client: device enrollment, PRT acquisition and
// renewal, PRT-cookie-based silent sign-in, and the generic OAuth2
// grants (password, refresh, code, SAML, device-SSO) that share its
// token-response decoding and error taxonomy.
package roadgo

import "fmt"

// AuthenticationError is the error the flows in this package return
// for a non-200 response and for client-side validation failures;
// transport and decoding failures are returned as wrapped errors
// instead. It always carries the raw server response body (if any) so
// callers never have to guess what Azure AD actually said.
type AuthenticationError struct {
	Message      string
	Body         []byte
	ErrorCode    string
	ErrorDesc    string
}

func (e *AuthenticationError) Error() string {
	if e.ErrorDesc != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.ErrorDesc)
	}
	if len(e.Body) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, string(e.Body))
	}
	return e.Message
}

// NewAuthError builds a bare AuthenticationError with no response body,
// used for client-side validation failures (e.g. unimplemented PKCE).
func NewAuthError(message string) *AuthenticationError {
	return &AuthenticationError{Message: message}
}

// NewAuthErrorFromBody builds an AuthenticationError from a non-200
// HTTP response, attempting to pull error/error_description out of a
// JSON body for a friendlier message.
func NewAuthErrorFromBody(message string, body []byte) *AuthenticationError {
	aerr := &AuthenticationError{Message: message, Body: body}
	code, desc, ok := parseOAuthErrorBody(body)
	if ok {
		aerr.ErrorCode = code
		aerr.ErrorDesc = desc
	}
	return aerr
}
