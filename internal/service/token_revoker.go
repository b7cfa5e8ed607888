package service

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const revokedTokenPrefix = "revoked_jwt:"

type RedisTokenRevoker struct {
	rdb *redis.Client
}

func NewRedisTokenRevoker(rdb *redis.Client) *RedisTokenRevoker {
	return &RedisTokenRevoker{rdb: rdb}
}

func (r *RedisTokenRevoker) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, revokedTokenPrefix+tokenID, 1, ttl).Err()
}

func (r *RedisTokenRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, revokedTokenPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
