package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinTokenTTL is the shortest token or session lifetime accepted from env.
	MinTokenTTL = time.Minute

	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = time.Hour
)

// AuthConfig groups token signing keys, lifetimes and password hashing.
//
// Keys are base64-encoded PEM so they fit in a single env line; use
// `estate-admin keys-generate` to produce them. Access and refresh tokens
// are signed with separate key pairs.
type AuthConfig struct {
	AccessPrivateKey  string `env:"ACCESS_PRIVATE_KEY"`
	AccessPublicKey   string `env:"ACCESS_PUBLIC_KEY"`
	RefreshPrivateKey string `env:"REFRESH_PRIVATE_KEY"`
	RefreshPublicKey  string `env:"REFRESH_PUBLIC_KEY"`

	Issuer string `env:"ISSUER" envDefault:"estate-api"`

	AccessTTL  time.Duration `env:"ACCESS_TTL"  envDefault:"15m"`
	RefreshTTL time.Duration `env:"REFRESH_TTL" envDefault:"60m"`
	// SessionTTL bounds the server-side session; it never ends before the refresh token.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"60m"`

	BcryptCost int `env:"BCRYPT_COST" envDefault:"12"`

	// SessionKeyPrefix namespaces session keys in Redis.
	SessionKeyPrefix string `env:"SESSION_KEY_PREFIX" envDefault:"session:"`
}

// Sanitize applies minimums and clamps.
func (a *AuthConfig) Sanitize() {
	a.Issuer = strings.TrimSpace(a.Issuer)
	if a.AccessTTL <= 0 {
		a.AccessTTL = defaultAccessTTL
	}
	if a.RefreshTTL <= 0 {
		a.RefreshTTL = defaultRefreshTTL
	}
	a.AccessTTL = max(a.AccessTTL, MinTokenTTL)
	a.RefreshTTL = max(a.RefreshTTL, a.AccessTTL)
	a.SessionTTL = max(a.SessionTTL, a.RefreshTTL)

	a.BcryptCost = min(max(a.BcryptCost, bcrypt.MinCost), bcrypt.MaxCost)

	if strings.TrimSpace(a.SessionKeyPrefix) == "" {
		a.SessionKeyPrefix = "session:"
	}
}

// Validate checks that all four keys are present and that access and refresh
// use different private keys. Key parsing happens in bootstrap.
func (a *AuthConfig) Validate() error {
	return errors.Join(a.validatePresent(), a.ValidateDistinctKeys())
}

func (a *AuthConfig) validatePresent() error {
	var missing []string
	for name, v := range map[string]string{
		"AUTH_ACCESS_PRIVATE_KEY":  a.AccessPrivateKey,
		"AUTH_ACCESS_PUBLIC_KEY":   a.AccessPublicKey,
		"AUTH_REFRESH_PRIVATE_KEY": a.RefreshPrivateKey,
		"AUTH_REFRESH_PUBLIC_KEY":  a.RefreshPublicKey,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return fmt.Errorf("missing token keys: %s", strings.Join(missing, ", "))
}

// ErrSameKeyPair is returned when access and refresh tokens would share a key.
var ErrSameKeyPair = errors.New("access and refresh tokens must use different keys")

// ValidateDistinctKeys rejects configurations that reuse one private key for both kinds.
func (a *AuthConfig) ValidateDistinctKeys() error {
	if strings.TrimSpace(a.AccessPrivateKey) != "" &&
		strings.TrimSpace(a.AccessPrivateKey) == strings.TrimSpace(a.RefreshPrivateKey) {
		return ErrSameKeyPair
	}
	return nil
}
