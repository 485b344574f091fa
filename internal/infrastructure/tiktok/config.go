// Package tiktok builds, signs and sends the TikTok Shop seller insights
// product list request.
package tiktok

import (
	"errors"
	"strings"
	"time"
)

// Config holds the browser identity and transport settings of the client.
type Config struct {
	// UserAgent is sent as a header and fed to both signing primitives
	UserAgent string
	// SecChUa is the sec-ch-ua client hint matching UserAgent
	SecChUa         string
	BrowserLanguage string
	BrowserPlatform string
	BrowserName     string
	TimezoneName    string
	ScreenWidth     int
	ScreenHeight    int
	// GnarlyVersion is the version argument of the X-Gnarly primitive
	GnarlyVersion string
	// Timeout bounds one HTTP call, connection through body
	Timeout time.Duration
	// MaxResponseSize bounds the response body read
	MaxResponseSize int64
}

const (
	// ProductListPath is the insights endpoint path
	ProductListPath = "/api/v2/insights/seller/ttp/product/list/v2"
	// AppID is the seller center application id (aid)
	AppID = "4068"
	// AppName is the seller center application name
	AppName = "i18n_ecom_shop"

	DefaultUserAgent       = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36"
	DefaultSecChUa         = `"Google Chrome";v="142", "Not?A_Brand";v="99", "Chromium";v="142"`
	DefaultGnarlyVersion   = "5.1.1"
	DefaultTimeout         = 30 * time.Second
	DefaultMaxResponseSize = 10 * 1024 * 1024
)

// Errors for client configuration
var (
	ErrConfigMissingUserAgent = errors.New("tiktok: user agent is required")
	ErrConfigMissingVersion   = errors.New("tiktok: gnarly version is required")
)

// DefaultConfig returns the desktop Chrome identity the signing scripts expect
func DefaultConfig() Config {
	return Config{
		UserAgent:       DefaultUserAgent,
		SecChUa:         DefaultSecChUa,
		BrowserLanguage: "en-US",
		BrowserPlatform: "MacIntel",
		BrowserName:     "Mozilla",
		TimezoneName:    "America/New_York",
		ScreenWidth:     1512,
		ScreenHeight:    982,
		GnarlyVersion:   DefaultGnarlyVersion,
		Timeout:         DefaultTimeout,
		MaxResponseSize: DefaultMaxResponseSize,
	}
}

// Validate fills zero values with defaults and checks required fields
func (c *Config) Validate() error {
	if strings.TrimSpace(c.UserAgent) == "" {
		return ErrConfigMissingUserAgent
	}
	if c.GnarlyVersion == "" {
		return ErrConfigMissingVersion
	}
	d := DefaultConfig()
	if c.SecChUa == "" {
		c.SecChUa = d.SecChUa
	}
	if c.BrowserLanguage == "" {
		c.BrowserLanguage = d.BrowserLanguage
	}
	if c.BrowserPlatform == "" {
		c.BrowserPlatform = d.BrowserPlatform
	}
	if c.BrowserName == "" {
		c.BrowserName = d.BrowserName
	}
	if c.TimezoneName == "" {
		c.TimezoneName = d.TimezoneName
	}
	if c.ScreenWidth <= 0 {
		c.ScreenWidth = d.ScreenWidth
	}
	if c.ScreenHeight <= 0 {
		c.ScreenHeight = d.ScreenHeight
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.MaxResponseSize <= 0 {
		c.MaxResponseSize = d.MaxResponseSize
	}
	return nil
}

// BrowserVersion is navigator.appVersion: the user agent without "Mozilla/"
func (c Config) BrowserVersion() string {
	return strings.TrimPrefix(c.UserAgent, "Mozilla/")
}
