package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/http2"
)

// DefaultTimeout matches the PRT engine's spec: every HTTP call gets a
// 30 second timeout unless the caller overrides it.
const DefaultTimeout = 30 * time.Second

type noRedirectKey struct{}

// WithNoRedirect marks a context so the default Client's Get will stop at
// the first 3xx instead of following it. Several flows in this module
// (nonce discovery, PRT cookie redemption) depend on reading the
// Location header of a redirect response rather than following it.
func WithNoRedirect(ctx context.Context) context.Context {
	return context.WithValue(ctx, noRedirectKey{}, true)
}

func noRedirect(ctx context.Context) bool {
	v, _ := ctx.Value(noRedirectKey{}).(bool)
	return v
}

// Options configures the default Client.
type Options struct {
	Proxy     string
	VerifyTLS bool
	UserAgent string
	Timeout   time.Duration
	// TLSCert is presented as the client certificate (mutual TLS) when
	// useTLS is set, which only NewMutualTLS does (used by device
	// deletion, which authenticates with the device certificate).
	TLSCert tls.Certificate
	useTLS  bool
}

type defaultClient struct {
	http      *http.Client
	userAgent string
}

// New builds the default net/http-backed Client.
func New(opts Options) (Client, error) {
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: !opts.VerifyTLS}, //nolint:gosec // caller-controlled
	}
	if opts.useTLS {
		transport.TLSClientConfig.Certificates = []tls.Certificate{opts.TLSCert}
	}
	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, errors.Wrap(err, "parsing proxy url")
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	if err := http2.ConfigureTransport(transport); err != nil {
		return nil, errors.Wrap(err, "configuring http2 transport")
	}

	return &defaultClient{
		http: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if noRedirect(req.Context()) {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		userAgent: opts.UserAgent,
	}, nil
}

// NewMutualTLS builds a Client authenticating with a client certificate,
// used by device.Delete to prove device identity to the enrollment
// service without a bearer token.
func NewMutualTLS(cert tls.Certificate, verifyTLS bool) (Client, error) {
	return New(Options{VerifyTLS: verifyTLS, TLSCert: cert, useTLS: true})
}

func (c *defaultClient) do(ctx context.Context, method, rawURL string, headers http.Header, body []byte) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, errors.Wrapf(err, "building %s request", method)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "performing %s request", method)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading response body")
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

func (c *defaultClient) Get(ctx context.Context, url string, headers http.Header) (*Response, error) {
	return c.do(ctx, http.MethodGet, url, headers, nil)
}

func (c *defaultClient) Post(ctx context.Context, url string, headers http.Header, body []byte) (*Response, error) {
	return c.do(ctx, http.MethodPost, url, headers, body)
}

func (c *defaultClient) Delete(ctx context.Context, url string, headers http.Header) (*Response, error) {
	return c.do(ctx, http.MethodDelete, url, headers, nil)
}
