package roadgo

import (
	"github.com/lobpang/roadgo/pkg/httpclient"
	"github.com/lobpang/roadgo/pkg/log"
	"github.com/lobpang/roadgo/token"
)

// Context is the mutable configuration bundle every flow in this
// package operates against, mirroring roadlib's AuthenticationContext.
type Context struct {
	Username string
	Password string
	Tenant   string
	ClientID string

	// ResourceURI targets the v1 endpoint; Scope targets v2. When
	// both are set, Scope wins.
	ResourceURI string
	Scope       string

	UserAgent string
	VerifyTLS bool

	// TokenData holds the last normalized record any flow produced.
	TokenData *token.Data

	HTTP   httpclient.Client
	Logger log.Logger
}

// NewContext builds a Context with sane defaults: TLS verification on,
// a no-op logger, and a default net/http-backed client.
func NewContext(clientID string) *Context {
	client, _ := httpclient.New(httpclient.Options{VerifyTLS: true})
	return &Context{
		ClientID:  token.LookupClientID(clientID),
		VerifyTLS: true,
		HTTP:      client,
		Logger:    log.Nop{},
	}
}

// useV2 reports whether this context should drive the v2.0 endpoints,
// i.e. whenever Scope has been set.
func (c *Context) useV2() bool {
	return c.Scope != ""
}

// logger returns c.Logger, falling back to a no-op sink so callers
// never need a nil check.
func (c *Context) logger() log.Logger {
	if c.Logger == nil {
		return log.Nop{}
	}
	return c.Logger
}

// client returns c.HTTP, falling back to a fresh default client.
func (c *Context) client() httpclient.Client {
	if c.HTTP == nil {
		c.HTTP, _ = httpclient.New(httpclient.Options{VerifyTLS: c.VerifyTLS, UserAgent: c.UserAgent})
	}
	return c.HTTP
}
