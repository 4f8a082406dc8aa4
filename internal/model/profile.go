package model

import (
	"errors"
)

// Profile is keyed by wallet and created on the wallet's first post or profile update.
type Profile struct {
	Wallet           ActorID `json:"wallet"`
	Username         *string `json:"username"`
	SocialHandle     *string `json:"social_handle"`
	Description      *string `json:"description"`
	Avatar           *string `json:"avatar"`
	CreatedAt        uint64  `json:"created_at"`
	TotalPosts       uint64  `json:"total_posts"`
	TotalVibesEarned uint64  `json:"total_vibes_earned"`
}

// UpdateProfileRequest carries the fields to overwrite. Nil fields are left untouched;
// there is no way to clear a field once set.
type UpdateProfileRequest struct {
	Username          *string  `json:"username,omitempty" cbor:"username,omitempty"`
	SocialHandle      *string  `json:"social_handle,omitempty" cbor:"social_handle,omitempty"`
	Description       *string  `json:"description,omitempty" cbor:"description,omitempty"`
	Avatar            *string  `json:"avatar,omitempty" cbor:"avatar,omitempty"`
	SessionForAccount *ActorID `json:"session_for_account,omitempty" cbor:"session_for_account,omitempty"`
}

// BalanceResponse reports a wallet's accumulated vibes.
type BalanceResponse struct {
	Wallet ActorID `json:"wallet"`
	Vibes  uint64  `json:"vibes"`
}

// Profile field limits
const (
	DefaultMaxUsernameLength     = 50
	DefaultMaxSocialHandleLength = 30
	DefaultMaxDescriptionLength  = 160
)

var (
	// ErrProfileNotFound is returned when a wallet has never posted or updated its profile
	ErrProfileNotFound = errors.New("profile not found")

	// ErrProfileFieldTooLong is returned when a profile field exceeds its limit
	ErrProfileFieldTooLong = errors.New("profile field too long")

	// ErrInvalidSocialHandle is returned when a handle contains characters outside [A-Za-z0-9_]
	ErrInvalidSocialHandle = errors.New("social handle may only contain letters, numbers and underscores")
)

// Error codes for HTTP responses
const (
	CodeProfileFieldTooLong = "PROFILE_FIELD_TOO_LONG"
	CodeInvalidSocialHandle = "INVALID_SOCIAL_HANDLE"
)
