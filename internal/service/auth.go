package service

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"lumio_social/internal/config"
	"lumio_social/internal/model"
	"lumio_social/internal/repository"
)

// AuthService logs wallets in by challenge-response: the wallet signs a
// one-time nonce with its ed25519 key and receives an access token.
type AuthService struct {
	challengeRepo repository.ChallengeRepository
	config        *config.Config
}

func NewAuthService(challengeRepo repository.ChallengeRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		challengeRepo: challengeRepo,
		config:        cfg,
	}
}

// IssueChallenge creates a nonce the wallet must sign to log in.
func (s *AuthService) IssueChallenge(ctx context.Context, wallet model.ActorID) (*model.Challenge, error) {
	challenge := &model.Challenge{
		Wallet:    wallet,
		Nonce:     uuid.NewString(),
		ExpiresAt: time.Now().Add(time.Duration(s.config.ChallengeMaxAge) * time.Second),
	}
	if err := s.challengeRepo.Create(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}
	return challenge, nil
}

// Login redeems a signed challenge for an access token. The challenge is
// consumed even when the signature is wrong.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	challenge, err := s.challengeRepo.Consume(ctx, req.Wallet, req.Nonce)
	if err != nil {
		return nil, err
	}
	if challenge.IsExpired() {
		return nil, model.ErrChallengeExpired
	}

	sig, err := hex.DecodeString(strings.TrimPrefix(req.Signature, "0x"))
	if err != nil || len(sig) != ed25519.SignatureSize {
		return nil, model.ErrInvalidSignature
	}
	if !ed25519.Verify(ed25519.PublicKey(req.Wallet[:]), []byte(challenge.Nonce), sig) {
		return nil, model.ErrInvalidSignature
	}

	accessToken, err := s.generateAccessToken(req.Wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &model.LoginResponse{
		Wallet:      req.Wallet,
		AccessToken: accessToken,
		ExpiresIn:   s.config.AccessTokenMaxAge,
	}, nil
}

func (s *AuthService) generateAccessToken(wallet model.ActorID) (string, error) {
	claims := jwt.MapClaims{
		"wallet": wallet.String(),
		"exp":    time.Now().Add(time.Duration(s.config.AccessTokenMaxAge) * time.Second).Unix(),
		"iat":    time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}
