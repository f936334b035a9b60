package factory

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lucidia/lucid-server/internal/auth"
	"github.com/lucidia/lucid-server/internal/config"
)

// NewVerifier returns the identity verifier selected by LUCID_AUTH_MODE.
func NewVerifier(cfg *config.Config, log zerolog.Logger) (auth.Verifier, error) {
	switch cfg.AuthMode {
	case "mock":
		log.Warn().Str("email", cfg.MockEmail).Msg("mock auth enabled, all tokens resolve to one user")
		return auth.NewMockVerifier(cfg.MockEmail), nil
	case "jwks":
		log.Info().Str("url", cfg.JWKSURL).Msg("jwks auth enabled")
		return auth.NewJWKSVerifier(cfg.JWKSURL, cfg.AuthAudience, log), nil
	default:
		return nil, fmt.Errorf("unknown LUCID_AUTH_MODE: %s", cfg.AuthMode)
	}
}
