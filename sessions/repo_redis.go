package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "eshtarek:session:"

// RedisRepo keeps sessions in Redis as JSON documents with a TTL refreshed on every write
type RedisRepo struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisRepo(client redis.UniversalClient, ttl time.Duration) *RedisRepo {
	return &RedisRepo{client: client, ttl: ttl}
}

func (r *RedisRepo) Upsert(ctx context.Context, session Session) error {
	if session.ID == "" {
		return fmt.Errorf("sessionID is required")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("[sessions RedisRepo.Upsert] marshal: %w", err)
	}
	if err := r.client.Set(ctx, redisKey(session.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("[sessions RedisRepo.Upsert] set: %w", err)
	}
	return nil
}

func (r *RedisRepo) Get(ctx context.Context, sessionID string) (Session, error) {
	if sessionID == "" {
		return Session{}, fmt.Errorf("sessionID is required")
	}

	data, err := r.client.Get(ctx, redisKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("[sessions RedisRepo.Get] get: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return Session{}, fmt.Errorf("[sessions RedisRepo.Get] unmarshal: %w", err)
	}
	return session, nil
}

func (r *RedisRepo) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}
	if err := r.client.Del(ctx, redisKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("[sessions RedisRepo.Delete] del: %w", err)
	}
	return nil
}

func redisKey(sessionID string) string {
	return redisKeyPrefix + sessionID
}
