package token

import (
	"time"
)

// ParseAccessToken splits a raw access token into a normalized Data
// record and the full raw claims map, without verifying the signature.
func ParseAccessToken(accessToken string) (*Data, map[string]interface{}, error) {
	claims, err := claimsOf(accessToken)
	if err != nil {
		return nil, nil, err
	}

	data := &Data{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}
	if exp, ok := claims["exp"]; ok {
		if seconds, ok := toInt64(exp); ok {
			data.ExpiresOn = time.Unix(seconds, 0).Format(timeLayout)
		}
	}
	if tid, ok := claims["tid"].(string); ok {
		data.TenantID = tid
	}
	if appid, ok := claims["appid"].(string); ok {
		data.ClientID = appid
	}
	return data, claims, nil
}

// toInt64 handles the fact that encoding/json decodes numeric claims
// as float64 by default.
func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}
