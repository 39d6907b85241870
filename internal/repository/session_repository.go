package repository

import (
	"context"
	"encoding/json"
	"errors"
	"interview_marker_backend/internal/model"
	"interview_marker_backend/internal/util"
	"time"

	"github.com/go-redis/redis/v8"
)

const sessionKeyPrefix = "review_session:"

// SessionRepository 评审会话状态，存于 Redis，带过期时间
type SessionRepository struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewSessionRepository(rdb *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{Redis: rdb, TTL: ttl}
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*model.ReviewSessionState, error) {
	data, err := r.Redis.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}

	var state model.ReviewSessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *SessionRepository) Save(ctx context.Context, state *model.ReviewSessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return r.Redis.Set(ctx, sessionKeyPrefix+state.ID, data, r.TTL).Err()
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.Redis.Del(ctx, sessionKeyPrefix+id).Err()
}
