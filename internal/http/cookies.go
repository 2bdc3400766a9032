package httpx

import (
	"net/http"
	"time"
)

// Cookie names shared with the browser client.
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	LoggedInCookie     = "logged_in"
)

// CookieConfig controls the attributes of the auth cookie triple.
type CookieConfig struct {
	// Domain is empty for host-only cookies.
	Domain     string
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Clock      func() time.Time
}

// CookieTransport writes and clears access_token, refresh_token and logged_in.
// access_token and logged_in always share an expiry so the client-visible flag
// never outlives the token it advertises.
type CookieTransport struct {
	cfg CookieConfig
}

// NewCookieTransport constructs a CookieTransport.
func NewCookieTransport(cfg CookieConfig) *CookieTransport {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &CookieTransport{cfg: cfg}
}

// SetAuthCookies writes all three cookies after a login.
func (c *CookieTransport) SetAuthCookies(w http.ResponseWriter, access, refresh string) {
	now := c.cfg.Clock()
	c.set(w, c.cookie(AccessTokenCookie, access, true, now, c.cfg.AccessTTL))
	c.set(w, c.cookie(RefreshTokenCookie, refresh, true, now, c.cfg.RefreshTTL))
	c.set(w, c.cookie(LoggedInCookie, "true", false, now, c.cfg.AccessTTL))
}

// SetAccessCookies rewrites access_token and logged_in after a refresh.
func (c *CookieTransport) SetAccessCookies(w http.ResponseWriter, access string) {
	now := c.cfg.Clock()
	c.set(w, c.cookie(AccessTokenCookie, access, true, now, c.cfg.AccessTTL))
	c.set(w, c.cookie(LoggedInCookie, "true", false, now, c.cfg.AccessTTL))
}

// ClearAuthCookies expires all three cookies.
func (c *CookieTransport) ClearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie, LoggedInCookie} {
		ck := c.cookie(name, "", name != LoggedInCookie, time.Time{}, 0)
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0).UTC()
		c.set(w, ck)
	}
}

func (c *CookieTransport) cookie(name, value string, httpOnly bool, now time.Time, ttl time.Duration) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.cfg.Domain,
		HttpOnly: httpOnly,
		Secure:   c.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl > 0 {
		ck.Expires = now.Add(ttl).UTC()
		ck.MaxAge = int(ttl / time.Second)
	}
	return ck
}

func (c *CookieTransport) set(w http.ResponseWriter, ck *http.Cookie) {
	http.SetCookie(w, ck)
}
