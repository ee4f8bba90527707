package roadgo

import "fmt"

// defaultTenantV1 is the tenant placeholder every endpoint builder below
// (v1 and v2 alike) uses when the caller leaves Context.Tenant empty;
// none of the builders uses defaultTenantV2.
const (
	defaultTenantV1 = "common"
	defaultTenantV2 = "organizations"
)

const authorityBase = "https://login.microsoftonline.com"

// tenantOrDefault returns the caller's tenant, or the supplied default
// when none was set.
func tenantOrDefault(tenant, def string) string {
	if tenant == "" {
		return def
	}
	return tenant
}

// tokenEndpointV1 builds the v1 (`/oauth2/token`) endpoint URL for tenant.
func tokenEndpointV1(tenant string) string {
	return fmt.Sprintf("%s/%s/oauth2/token", authorityBase, tenantOrDefault(tenant, defaultTenantV1))
}

// tokenEndpointV2 builds the v2 (`/oauth2/v2.0/token`) endpoint URL for tenant.
func tokenEndpointV2(tenant string) string {
	return fmt.Sprintf("%s/%s/oauth2/v2.0/token", authorityBase, tenantOrDefault(tenant, defaultTenantV1))
}

// authorizeEndpoint builds the `/authorize` (v1 or v2) endpoint URL.
func authorizeEndpoint(tenant string, v2 bool) string {
	t := tenantOrDefault(tenant, defaultTenantV1)
	if v2 {
		return fmt.Sprintf("%s/%s/oauth2/v2.0/authorize", authorityBase, t)
	}
	return fmt.Sprintf("%s/%s/oauth2/authorize", authorityBase, t)
}

// userRealmEndpoint builds the federation-discovery endpoint for user.
func userRealmEndpoint(user string) string {
	return fmt.Sprintf("%s/common/UserRealm/%s?api-version=2.0", authorityBase, user)
}

const (
	dssoUsernameMixedPath    = "winauth/trust/2005/usernamemixed"
	dssoWindowsTransportPath = "winauth/trust/2005/windowstransport"
	dssoAuthority            = "https://autologon.microsoftazuread-sso.com"
)

func dssoEndpoint(tenant, path string) string {
	return fmt.Sprintf("%s/%s/%s", dssoAuthority, tenantOrDefault(tenant, defaultTenantV1), path)
}

const (
	bulkEnrollmentBeginURL = authorityBase + "/webapp/bulkaadjtoken/begin"
	bulkEnrollmentPollURL  = authorityBase + "/webapp/bulkaadjtoken/poll"
)

// enrollmentClientID is the fixed client_id the bulk-enrollment and
// id_token-mapped reply uses, matching roadlib's hardcoded value.
const enrollmentClientID = "b90d5b8f-5503-4153-b545-b31cecfaece2"
