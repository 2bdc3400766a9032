package tokens

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// MinKeyBits is the smallest RSA modulus accepted for signing keys.
const MinKeyBits = 2048

// ParseKeyPair decodes PEM-encoded RSA keys and checks that they belong together.
func ParseKeyPair(privatePEM, publicPEM []byte) (KeyPair, error) {
	priv, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
	if err != nil {
		return KeyPair{}, fmt.Errorf("parse private key: %w", err)
	}
	pub, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return KeyPair{}, fmt.Errorf("parse public key: %w", err)
	}
	if !priv.PublicKey.Equal(pub) {
		return KeyPair{}, errors.New("public key does not match private key")
	}
	return KeyPair{Private: priv, Public: pub}, nil
}

// ParseKeyPairBase64 decodes keys stored as base64-encoded PEM, the format used in env config.
func ParseKeyPairBase64(privateB64, publicB64 string) (KeyPair, error) {
	privatePEM, err := base64.StdEncoding.DecodeString(strings.TrimSpace(privateB64))
	if err != nil {
		return KeyPair{}, fmt.Errorf("decode private key: %w", err)
	}
	publicPEM, err := base64.StdEncoding.DecodeString(strings.TrimSpace(publicB64))
	if err != nil {
		return KeyPair{}, fmt.Errorf("decode public key: %w", err)
	}
	return ParseKeyPair(privatePEM, publicPEM)
}

// GenerateKeyPairPEM creates a new RSA key pair and returns PKCS#1 private and PKIX public PEM blocks.
func GenerateKeyPairPEM(bits int) (privatePEM, publicPEM []byte, err error) {
	if bits < MinKeyBits {
		return nil, nil, fmt.Errorf("key size %d is below minimum %d", bits, MinKeyBits)
	}
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, nil, fmt.Errorf("generate rsa key: %w", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal public key: %w", err)
	}
	privatePEM = pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	publicPEM = pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	return privatePEM, publicPEM, nil
}

// GenerateKeyPair is GenerateKeyPairPEM followed by ParseKeyPair.
func GenerateKeyPair(bits int) (KeyPair, error) {
	privatePEM, publicPEM, err := GenerateKeyPairPEM(bits)
	if err != nil {
		return KeyPair{}, err
	}
	return ParseKeyPair(privatePEM, publicPEM)
}
