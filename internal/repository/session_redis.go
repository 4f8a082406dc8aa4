package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"lumio_social/internal/model"
)

const sessionKeyPrefix = "session:"

type redisSessionRepository struct {
	rdb *redis.Client
}

// NewRedisSessionRepository reads sessions stored as JSON under session:<account>.
func NewRedisSessionRepository(rdb *redis.Client) SessionRepository {
	return &redisSessionRepository{rdb: rdb}
}

func sessionKey(account model.ActorID) string {
	return sessionKeyPrefix + account.String()
}

func (r *redisSessionRepository) SessionFor(ctx context.Context, account model.ActorID) (model.Session, bool, error) {
	data, err := r.rdb.Get(ctx, sessionKey(account)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Session{}, false, nil
		}
		return model.Session{}, false, fmt.Errorf("get session: %w", err)
	}

	var s model.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return model.Session{}, false, fmt.Errorf("decode session %s: %w", account, err)
	}
	return s, true, nil
}

func (r *redisSessionRepository) Save(ctx context.Context, s model.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.rdb.Set(ctx, sessionKey(s.Account), data, 0).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}
