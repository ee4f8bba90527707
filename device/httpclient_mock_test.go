package device

import (
	"context"
	"net/http"

	"github.com/lobpang/roadgo/pkg/httpclient"
)

// mockClient is a minimal in-memory httpclient.Client double: it hands
// back a fixed response (or error) regardless of the request, while
// recording the last call for assertions.
type mockClient struct {
	response *httpclient.Response
	err      error

	lastMethod string
	lastURL    string
	lastBody   []byte
}

func (m *mockClient) Get(ctx context.Context, url string, headers http.Header) (*httpclient.Response, error) {
	m.lastMethod, m.lastURL = "GET", url
	return m.response, m.err
}

func (m *mockClient) Post(ctx context.Context, url string, headers http.Header, body []byte) (*httpclient.Response, error) {
	m.lastMethod, m.lastURL, m.lastBody = "POST", url, body
	return m.response, m.err
}

func (m *mockClient) Delete(ctx context.Context, url string, headers http.Header) (*httpclient.Response, error) {
	m.lastMethod, m.lastURL = "DELETE", url
	return m.response, m.err
}
