package prt

import (
	"context"
	"net/http"

	"github.com/lobpang/roadgo/pkg/httpclient"
)

// mockClient is a scripted httpclient.Client double returning queued
// POST/GET responses in order, recording each call for assertions.
type mockClient struct {
	responses []*httpclient.Response
	errs      []error
	calls     int

	urls  []string
	bodies [][]byte
}

func (m *mockClient) next() (*httpclient.Response, error) {
	i := m.calls
	m.calls++
	var resp *httpclient.Response
	var err error
	if i < len(m.responses) {
		resp = m.responses[i]
	}
	if i < len(m.errs) {
		err = m.errs[i]
	}
	return resp, err
}

func (m *mockClient) Get(ctx context.Context, url string, headers http.Header) (*httpclient.Response, error) {
	m.urls = append(m.urls, url)
	m.bodies = append(m.bodies, nil)
	return m.next()
}

func (m *mockClient) Post(ctx context.Context, url string, headers http.Header, body []byte) (*httpclient.Response, error) {
	m.urls = append(m.urls, url)
	m.bodies = append(m.bodies, body)
	return m.next()
}

func (m *mockClient) Delete(ctx context.Context, url string, headers http.Header) (*httpclient.Response, error) {
	m.urls = append(m.urls, url)
	m.bodies = append(m.bodies, nil)
	return m.next()
}
