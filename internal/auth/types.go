package auth

import (
	"time"

	"github.com/consensuslabs/pavilion-mint/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// Config represents authentication configuration
type Config struct {
	JWT struct {
		Secret         string
		AccessTokenTTL time.Duration
	}
	ChallengeTTL time.Duration
}

// NewConfigFromAuthConfig creates an auth.Config from config.AuthConfig
func NewConfigFromAuthConfig(cfg *config.AuthConfig) *Config {
	authConfig := &Config{}
	authConfig.JWT.Secret = cfg.JWT.Secret
	authConfig.JWT.AccessTokenTTL = cfg.JWT.AccessTokenTTL
	authConfig.ChallengeTTL = cfg.ChallengeTTL
	if authConfig.ChallengeTTL <= 0 {
		authConfig.ChallengeTTL = 5 * time.Minute
	}
	return authConfig
}

// ChallengeRequest asks for a message to sign
type ChallengeRequest struct {
	Address string `json:"address" binding:"required"`
}

// ChallengeResponse carries the message the wallet must sign
type ChallengeResponse struct {
	Address   string    `json:"address" msgpack:"address"`
	Message   string    `json:"message" msgpack:"message"`
	ExpiresAt time.Time `json:"expiresAt" msgpack:"expiresAt"`
}

// ConnectRequest proves control of a wallet with a personal_sign signature
type ConnectRequest struct {
	Address   string `json:"address" binding:"required"`
	Message   string `json:"message" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// ConnectResponse is returned once the wallet is connected
type ConnectResponse struct {
	Address     string `json:"address" msgpack:"address"`
	AccessToken string `json:"accessToken" msgpack:"accessToken"`
	TokenType   string `json:"tokenType" msgpack:"tokenType"`
	ExpiresIn   int    `json:"expiresIn" msgpack:"expiresIn"`
}

// TokenClaims represents the JWT claims
type TokenClaims struct {
	Address string `json:"address"`
	jwt.RegisteredClaims
}
