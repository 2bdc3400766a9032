package config

import (
	"fmt"
	"net"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Cookie security modes for APP_COOKIE_SECURE.
const (
	CookieSecureAuto   = "auto"
	CookieSecureAlways = "true"
	CookieSecureNever  = "false"
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// CookieDomain is the domain for auth cookies.
	// Leave empty for host-only cookies.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// CookieSecureMode is auto, true or false. auto marks cookies Secure outside dev mode.
	CookieSecureMode string `env:"APP_COOKIE_SECURE" envDefault:"auto"`

	// CookieSecure is derived from CookieSecureMode by Sanitize.
	CookieSecure bool

	// CORSAllowedOrigins lists browser origins allowed to send credentialed requests.
	CORSAllowedOrigins []string `env:"HTTP_CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	// CompressionEnabled enables gzip compression for JSON responses.
	CompressionEnabled bool `env:"HTTP_COMPRESSION_ENABLED" envDefault:"false"`

	// CompressionLevel is the gzip compression level (1-9).
	// Default is 6 (standard gzip default).
	CompressionLevel int `env:"HTTP_COMPRESSION_LEVEL" envDefault:"6"`

	// CompressionMinSize is the smallest body, in bytes, worth compressing.
	CompressionMinSize int `env:"HTTP_COMPRESSION_MIN_SIZE" envDefault:"1024"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize(isDev bool) {
	// Clamp compression level to valid gzip range (1-9)
	h.CompressionLevel = min(max(h.CompressionLevel, 1), 9)
	h.CompressionMinSize = max(h.CompressionMinSize, 0)

	h.CookieDomain = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(h.CookieDomain)), ".")
	h.CORSAllowedOrigins = compact(h.CORSAllowedOrigins)

	switch strings.ToLower(strings.TrimSpace(h.CookieSecureMode)) {
	case CookieSecureAlways:
		h.CookieSecure = true
	case CookieSecureNever:
		h.CookieSecure = false
	default:
		h.CookieSecureMode = CookieSecureAuto
		h.CookieSecure = !isDev
	}
}

// ValidateCookieDomain rejects cookie domains that are public suffixes, such
// as "com" or "github.io", since browsers drop cookies scoped to them.
func (h *HTTPConfig) ValidateCookieDomain() error {
	domain := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(h.CookieDomain)), ".")
	if domain == "" || domain == "localhost" || net.ParseIP(domain) != nil {
		return nil
	}
	if strings.ContainsAny(domain, ":/ ") {
		return fmt.Errorf("cookie domain %q must be a bare host name", domain)
	}
	if _, err := publicsuffix.EffectiveTLDPlusOne(domain); err != nil {
		return fmt.Errorf("cookie domain %q is a public suffix", domain)
	}
	return nil
}
