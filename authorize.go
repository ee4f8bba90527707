package roadgo

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// BuildAuthorizeURL constructs the v1 or v2 /authorize URL (v2 iff
// c.Scope is set), with client_id/redirect_uri/resource-or-scope/
// tenant/response_type and a random UUID state if none is supplied.
func (c *Context) BuildAuthorizeURL(redirectURI, responseType, state string) string {
	if state == "" {
		state = uuid.New().String()
	}

	v2 := c.useV2()
	q := url.Values{}
	q.Set("response_type", responseType)
	q.Set("client_id", c.ClientID)
	if v2 {
		q.Set("scope", c.Scope)
	} else if c.ResourceURI != "" {
		q.Set("resource", c.ResourceURI)
	}
	q.Set("redirect_uri", redirectURI)
	q.Set("state", state)

	base := authorizeEndpoint(c.Tenant, v2)
	return base + "?" + encodeOrdered(q, []string{"response_type", "client_id", "resource", "scope", "redirect_uri", "state"})
}

// encodeOrdered renders q in the given field order (skipping absent
// keys), matching the literal query-string shape spec §8 scenario 3
// expects rather than url.Values.Encode's alphabetical order.
func encodeOrdered(q url.Values, order []string) string {
	var parts []string
	for _, k := range order {
		v, ok := q[k]
		if !ok {
			continue
		}
		parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(v[0]))
	}
	return strings.Join(parts, "&")
}
