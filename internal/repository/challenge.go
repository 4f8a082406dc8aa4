package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"lumio_social/internal/model"
)

const challengeKeyPrefix = "challenge:"

type challengeRepository struct {
	rdb *redis.Client
}

// NewChallengeRepository stores login challenges in Redis with a TTL.
func NewChallengeRepository(rdb *redis.Client) ChallengeRepository {
	return &challengeRepository{rdb: rdb}
}

func challengeKey(wallet model.ActorID, nonce string) string {
	return challengeKeyPrefix + wallet.String() + ":" + nonce
}

// Create stores the challenge; Redis drops it once ExpiresAt passes
func (r *challengeRepository) Create(ctx context.Context, challenge *model.Challenge) error {
	ttl := time.Until(challenge.ExpiresAt)
	if ttl <= 0 {
		return model.ErrChallengeExpired
	}

	data, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("encode challenge: %w", err)
	}
	if err := r.rdb.Set(ctx, challengeKey(challenge.Wallet, challenge.Nonce), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to create challenge: %w", err)
	}
	return nil
}

// Consume fetches and deletes the challenge in one round trip, so a nonce
// can be redeemed at most once
func (r *challengeRepository) Consume(ctx context.Context, wallet model.ActorID, nonce string) (*model.Challenge, error) {
	data, err := r.rdb.GetDel(ctx, challengeKey(wallet, nonce)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to consume challenge: %w", err)
	}

	var challenge model.Challenge
	if err := json.Unmarshal(data, &challenge); err != nil {
		return nil, fmt.Errorf("decode challenge: %w", err)
	}
	return &challenge, nil
}
