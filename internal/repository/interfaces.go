package repository

import (
	"context"

	"lumio_social/internal/model"
)

// SessionRepository is a read-only session registry backend.
// Sessions are issued by another system; Save exists for seeding and tests.
type SessionRepository interface {
	SessionFor(ctx context.Context, account model.ActorID) (model.Session, bool, error)
	Save(ctx context.Context, s model.Session) error
}

type ChallengeRepository interface {
	// Create stores a login challenge until its expiry
	Create(ctx context.Context, challenge *model.Challenge) error
	// Consume atomically fetches and removes the challenge for wallet/nonce
	Consume(ctx context.Context, wallet model.ActorID, nonce string) (*model.Challenge, error)
}
