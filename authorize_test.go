package roadgo

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildAuthorizeURLV1UsesResourceAndFixedFieldOrder(t *testing.T) {
	c := &Context{ClientID: "client-1", ResourceURI: "https://graph.windows.net/"}
	got := c.BuildAuthorizeURL("https://localhost/redirect", "code", "fixed-state")

	want := "https://login.microsoftonline.com/common/oauth2/authorize?" +
		"response_type=code&client_id=client-1&resource=" + url.QueryEscape("https://graph.windows.net/") +
		"&redirect_uri=" + url.QueryEscape("https://localhost/redirect") + "&state=fixed-state"
	require.Equal(t, want, got)
}

func TestBuildAuthorizeURLV2UsesScopeInsteadOfResource(t *testing.T) {
	c := &Context{ClientID: "client-1", Scope: "openid profile"}
	got := c.BuildAuthorizeURL("https://localhost/redirect", "code", "fixed-state")

	require.Contains(t, got, "/oauth2/v2.0/authorize?")
	require.Contains(t, got, "scope="+url.QueryEscape("openid profile"))
	require.NotContains(t, got, "resource=")
}

func TestBuildAuthorizeURLGeneratesStateWhenEmpty(t *testing.T) {
	c := &Context{ClientID: "client-1"}
	got := c.BuildAuthorizeURL("https://localhost/redirect", "code", "")
	require.Contains(t, got, "state=")
	require.NotContains(t, got, "state=&")
}
