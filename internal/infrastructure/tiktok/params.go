package tiktok

import (
	"math/rand/v2"
	"regexp"
)

const (
	msTokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	msTokenLength   = 107
)

var msTokenPattern = regexp.MustCompile(`(?:^|;\s*)msToken=([^;]+)`)

// MsTokenFromCookie extracts msToken from a raw cookie header, or "".
func MsTokenFromCookie(cookie string) string {
	m := msTokenPattern.FindStringSubmatch(cookie)
	if m == nil {
		return ""
	}
	return m[1]
}

// GenerateMsToken returns a random token in the shape the web client uses.
// The platform may still reject it; a cookie token is preferred.
func GenerateMsToken() string {
	b := make([]byte, msTokenLength)
	for i := range b {
		b[i] = msTokenAlphabet[rand.IntN(len(msTokenAlphabet))]
	}
	return string(b)
}

// ProductListParams returns the ordered query entries of the product list call.
func ProductListParams(cfg Config, sellerID, fingerprint, msToken string) []Param {
	return []Param{
		{"locale", "en"},
		{"language", "en"},
		{"oec_seller_id", sellerID},
		{"aid", AppID},
		{"app_name", AppName},
		{"fp", fingerprint},
		{"device_platform", "web"},
		{"cookie_enabled", true},
		{"screen_width", cfg.ScreenWidth},
		{"screen_height", cfg.ScreenHeight},
		{"browser_language", cfg.BrowserLanguage},
		{"browser_platform", cfg.BrowserPlatform},
		{"browser_name", cfg.BrowserName},
		{"browser_version", cfg.BrowserVersion()},
		{"browser_online", true},
		{"timezone_name", cfg.TimezoneName},
		{"use_content_type_definition", 1},
		{MsTokenKey, msToken},
	}
}
