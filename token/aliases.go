package token

import "strings"

// wellKnownResources maps short resource names to their canonical
// resource URI, reconstructed from publicly documented Microsoft
// first-party resource identifiers.
var wellKnownResources = map[string]string{
	"aadgraph":     "https://graph.windows.net/",
	"msgraph":      "https://graph.microsoft.com/",
	"graph":        "https://graph.microsoft.com/",
	"azurerm":      "https://management.core.windows.net/",
	"management":   "https://management.core.windows.net/",
	"outlook":      "https://outlook.office365.com/",
	"office":       "https://outlook.office365.com/",
	"onedrive":     "https://api.spaces.skype.com/",
	"adibiza":      "https://management.azure.com/",
	"webshellsuffix": "https://management.azure.com/",
	"officespo":   "https://microsoft.sharepoint-df.com/",
	"officemanagement": "https://manage.office.com/",
	"azurevault":  "https://vault.azure.net",
	"devicereg":   "urn:ms-drs:enterpriseregistration.windows.net",
	"drs":         "urn:ms-drs:enterpriseregistration.windows.net",
	"oofficeapps": "https://officeapps.live.com/",
	"teams":       "https://api.spaces.skype.com/",
	"yammer":      "https://api.yammer.com/",
	"mstoken":     "https://storage.azure.com/",
}

// wellKnownClients maps short client names to their canonical
// first-party client ID GUID.
var wellKnownClients = map[string]string{
	"azurecli":          "04b07795-8ddb-461a-bbee-02f9e1bf7b46",
	"azurepowershell":   "1950a258-227b-4e31-a9cf-717495945fc2",
	"graphexplorer":     "de8bc8b5-d9f9-48b1-a8ad-b748da725064",
	"outlook":           "2d7f3606-b07d-41d1-b9d2-0d0c9296a6e8",
	"officemobile":      "27922004-5251-4030-b22d-91ecd9a37ea4",
	"onedrive":          "ab9b8c07-8f02-4f72-87fa-80105867a763",
	"teams":             "1fec8e78-bce4-4aaf-ab1b-5451cc387264",
	"edge":              "e9c51622-460d-4d3d-952d-966a5b1da34c",
	"winstore":          "9ba1a5c7-f17a-4de9-a1f1-6178c8d51223",
	"officeclient":      "d3590ed6-52b3-4102-aeff-aad2292ab01c",
	"webaccount":        "29d9ed98-a469-4536-ade2-f981bc1d605e",
	"broker":            "29d9ed98-a469-4536-ade2-f981bc1d605e",
	"autopilot":         "38aa3b87-a06d-4817-b275-7a316988d93b",
	"enrollment":        "b90d5b8f-5503-4153-b545-b31cecfaece2",
	"intune":            "d4ebce55-015a-49b5-a083-c84d1797ae8c",
	"company portal":    "9ba1a5c7-f17a-4de9-a1f1-6178c8d51223",
}

// wellKnownUserAgents maps short user-agent names to the literal
// string a first-party Windows/macOS client would send.
var wellKnownUserAgents = map[string]string{
	"pta":        "Mozilla/5.0 (Windows NT 10.0; Microsoft Windows 10.0.19041) PRT/1.0",
	"edge":       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36 Edg/91.0.864.59",
	"android":    "Dalvik/2.1.0 (Linux; U; Android 11; Pixel 5 Build/RQ3A.210905.001)",
	"iphone":     "Mozilla/5.0 (iPhone; CPU iPhone OS 15_0 like Mac OS X) AppleWebKit/605.1.15",
	"officewin":  "Microsoft Office/16.0 (Windows NT 10.0; Microsoft Outlook 16.0.14026; Pro)",
}

// LookupResourceURI resolves a short resource alias to its canonical
// URI; unknown names pass through unchanged.
func LookupResourceURI(name string) string {
	if resolved, ok := wellKnownResources[strings.ToLower(name)]; ok {
		return resolved
	}
	return name
}

// LookupClientID resolves a short client alias to its canonical GUID;
// unknown names pass through unchanged.
func LookupClientID(id string) string {
	if resolved, ok := wellKnownClients[strings.ToLower(id)]; ok {
		return resolved
	}
	return id
}

// LookupUserAgent resolves a short user-agent alias to its canonical
// literal string; empty input and unknown names pass through
// unchanged.
func LookupUserAgent(ua string) string {
	if ua == "" {
		return ua
	}
	if resolved, ok := wellKnownUserAgents[strings.ToLower(ua)]; ok {
		return resolved
	}
	return ua
}
