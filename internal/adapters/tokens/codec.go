// Package tokens signs and verifies RS256 identity tokens.
package tokens

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	domainauth "github.com/estatehub/estate-api/internal/domain/auth"
)

// DefaultIssuer is stamped into iss when no issuer is configured.
const DefaultIssuer = "estate-api"

// Claims is the payload carried by access and refresh tokens.
type Claims struct {
	jwt.RegisteredClaims
	Kind domainauth.TokenKind `json:"kind"`
}

// KeyPair is the RSA material for one token kind.
type KeyPair struct {
	Private *rsa.PrivateKey
	Public  *rsa.PublicKey
}

func (k KeyPair) valid() bool { return k.Private != nil && k.Public != nil }

// CodecOptions configures a Codec.
type CodecOptions struct {
	Access  KeyPair
	Refresh KeyPair
	Issuer  string
	// Clock overrides time.Now; used by tests to move across expiry.
	Clock func() time.Time
}

// Codec implements ports.TokenCodec with one key pair per token kind.
type Codec struct {
	keys   map[domainauth.TokenKind]KeyPair
	issuer string
	now    func() time.Time
}

// NewCodec validates key material and returns a Codec.
func NewCodec(opts CodecOptions) (*Codec, error) {
	if !opts.Access.valid() {
		return nil, errors.New("access key pair is required")
	}
	if !opts.Refresh.valid() {
		return nil, errors.New("refresh key pair is required")
	}
	issuer := opts.Issuer
	if issuer == "" {
		issuer = DefaultIssuer
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &Codec{
		keys: map[domainauth.TokenKind]KeyPair{
			domainauth.TokenKindAccess:  opts.Access,
			domainauth.TokenKindRefresh: opts.Refresh,
		},
		issuer: issuer,
		now:    now,
	}, nil
}

// Issue signs a token of the given kind for subject.
func (c *Codec) Issue(subject string, kind domainauth.TokenKind, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("token subject cannot be empty")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	pair, ok := c.keys[kind]
	if !ok {
		return "", fmt.Errorf("unknown token kind %q", kind)
	}

	now := c.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Kind: kind,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(pair.Private)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Verify checks signature, expiry and kind and returns the token subject.
func (c *Codec) Verify(token string, kind domainauth.TokenKind) (string, error) {
	pair, ok := c.keys[kind]
	if !ok {
		return "", fmt.Errorf("unknown token kind %q: %w", kind, domainauth.ErrTokenInvalidSignature)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(c.issuer),
		jwt.WithTimeFunc(c.now),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return pair.Public, nil
	})
	if err != nil {
		return "", classify(err)
	}

	if claims.Kind != kind {
		return "", fmt.Errorf("token kind %q, want %q: %w", claims.Kind, kind, domainauth.ErrTokenInvalidSignature)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("token has no subject: %w", domainauth.ErrTokenMalformed)
	}
	return claims.Subject, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w", domainauth.ErrTokenInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", domainauth.ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %w", domainauth.ErrTokenMalformed, err)
	}
}
