package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupResourceURIResolvesKnownAliasesCaseInsensitively(t *testing.T) {
	require.Equal(t, "https://graph.microsoft.com/", LookupResourceURI("MSGraph"))
	require.Equal(t, "https://graph.windows.net/", LookupResourceURI("aadgraph"))
}

func TestLookupResourceURIPassesThroughUnknownValues(t *testing.T) {
	require.Equal(t, "https://example.com/custom", LookupResourceURI("https://example.com/custom"))
}

func TestLookupClientIDResolvesKnownAliases(t *testing.T) {
	require.Equal(t, "04b07795-8ddb-461a-bbee-02f9e1bf7b46", LookupClientID("AzureCLI"))
}

func TestLookupClientIDPassesThroughUnknownValues(t *testing.T) {
	require.Equal(t, "11111111-2222-3333-4444-555555555555", LookupClientID("11111111-2222-3333-4444-555555555555"))
}

func TestLookupUserAgentResolvesKnownAliasesAndPassesEmpty(t *testing.T) {
	require.Contains(t, LookupUserAgent("pta"), "PRT/1.0")
	require.Equal(t, "", LookupUserAgent(""))
	require.Equal(t, "custom-ua", LookupUserAgent("custom-ua"))
}
