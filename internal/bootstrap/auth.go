package bootstrap

import (
	"fmt"

	"github.com/estatehub/estate-api/config"
	"github.com/estatehub/estate-api/internal/adapters/tokens"
)

// BuildTokenCodec decodes the configured key pairs and builds the RS256 codec.
func BuildTokenCodec(cfg config.AuthConfig) (*tokens.Codec, error) {
	access, err := tokens.ParseKeyPairBase64(cfg.AccessPrivateKey, cfg.AccessPublicKey)
	if err != nil {
		return nil, fmt.Errorf("access key pair: %w", err)
	}
	refresh, err := tokens.ParseKeyPairBase64(cfg.RefreshPrivateKey, cfg.RefreshPublicKey)
	if err != nil {
		return nil, fmt.Errorf("refresh key pair: %w", err)
	}
	return tokens.NewCodec(tokens.CodecOptions{
		Access:  access,
		Refresh: refresh,
		Issuer:  cfg.Issuer,
	})
}
