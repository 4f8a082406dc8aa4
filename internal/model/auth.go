package model

import (
	"errors"
	"time"
)

// Challenge is a one-time nonce a wallet must sign to log in.
type Challenge struct {
	Wallet    ActorID   `json:"wallet"`
	Nonce     string    `json:"nonce"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired returns true if the challenge can no longer be redeemed
func (c *Challenge) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// ChallengeRequest is the request body for POST /auth/challenge
type ChallengeRequest struct {
	Wallet ActorID `json:"wallet" cbor:"wallet"`
}

// LoginRequest is the request body for POST /auth/login.
// Signature is the hex ed25519 signature of Nonce by the wallet key.
type LoginRequest struct {
	Wallet    ActorID `json:"wallet" cbor:"wallet"`
	Nonce     string  `json:"nonce" cbor:"nonce"`
	Signature string  `json:"signature" cbor:"signature"`
}

// LoginResponse is returned after a successful wallet login
type LoginResponse struct {
	Wallet      ActorID `json:"wallet"`
	AccessToken string  `json:"access_token"`
	ExpiresIn   int     `json:"expires_in"` // Seconds until access token expires
}

// Auth errors
var (
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrChallengeExpired  = errors.New("challenge expired")
	ErrInvalidSignature  = errors.New("invalid signature")
)

// Token API error codes (used in HTTP responses)
const (
	CodeTokenExpired     = "TOKEN_EXPIRED"
	CodeTokenInvalid     = "TOKEN_INVALID"
	CodeChallengeInvalid = "CHALLENGE_INVALID"
	CodeInvalidSignature = "INVALID_SIGNATURE"
)
