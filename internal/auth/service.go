package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/consensuslabs/pavilion-mint/internal/cache"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

const challengeKeyPrefix = "wallet:challenge:"

// ErrChallengeMissing is returned when no live challenge matches the message
var ErrChallengeMissing = errors.New("challenge expired or unknown")

// Service connects wallets and validates their tokens
type Service struct {
	tokens TokenService
	cache  cache.Service
	config *Config
	logger Logger
	now    func() time.Time
}

// NewService creates a new auth service
func NewService(tokens TokenService, cache cache.Service, config *Config, logger Logger) *Service {
	return &Service{
		tokens: tokens,
		cache:  cache,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// Challenge issues a one-time message for address to sign
func (s *Service) Challenge(ctx context.Context, address string) (*ChallengeResponse, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid wallet address %q", address)
	}
	checksum := common.HexToAddress(address).Hex()
	message := ChallengeMessage(checksum, uuid.New().String())

	if err := s.cache.Set(ctx, challengeKey(checksum), message, s.config.ChallengeTTL); err != nil {
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}

	return &ChallengeResponse{
		Address:   checksum,
		Message:   message,
		ExpiresAt: s.now().Add(s.config.ChallengeTTL),
	}, nil
}

// Connect verifies the signed challenge and issues an access token
func (s *Service) Connect(ctx context.Context, req ConnectRequest) (*ConnectResponse, error) {
	if !common.IsHexAddress(req.Address) {
		return nil, fmt.Errorf("invalid wallet address %q", req.Address)
	}
	checksum := common.HexToAddress(req.Address).Hex()

	expected, err := s.cache.Get(ctx, challengeKey(checksum))
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return nil, ErrChallengeMissing
		}
		return nil, fmt.Errorf("failed to load challenge: %w", err)
	}
	if expected != req.Message {
		return nil, ErrChallengeMissing
	}

	if err := VerifySignature(checksum, req.Message, req.Signature); err != nil {
		s.logger.LogWarn("Wallet signature rejected", map[string]interface{}{
			"address": checksum,
			"error":   err.Error(),
		})
		return nil, err
	}

	if err := s.cache.Delete(ctx, challengeKey(checksum)); err != nil {
		s.logger.LogError(err, "Failed to delete used challenge")
	}

	token, err := s.tokens.GenerateAccessToken(checksum)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.LogInfo("Wallet connected", map[string]interface{}{
		"address": checksum,
	})

	return &ConnectResponse{
		Address:     checksum,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.config.JWT.AccessTokenTTL.Seconds()),
	}, nil
}

// ValidateToken returns the wallet address carried by token
func (s *Service) ValidateToken(token string) (string, error) {
	claims, err := s.tokens.ValidateAccessToken(token)
	if err != nil {
		return "", err
	}
	return claims.Address, nil
}

func challengeKey(address string) string {
	return challengeKeyPrefix + strings.ToLower(address)
}
