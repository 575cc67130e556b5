package revocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"municipal-docs/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const defaultRedisKey = "auth:revoked"

// revokeScript inserts one entry and sweeps in the same atomic step once the
// set grows past the threshold.
//
// KEYS[1] = sorted set (member = credential hash, score = expiry unix ms)
// ARGV[1] = member
// ARGV[2] = expiry unix ms
// ARGV[3] = threshold
// ARGV[4] = now unix ms
// Returns the number of swept members.
var revokeScript = redis.NewScript(`
redis.call('ZADD', KEYS[1], ARGV[2], ARGV[1])
local size = redis.call('ZCARD', KEYS[1])
if size > tonumber(ARGV[3]) then
  return redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[4])
end
return 0
`)

// Redis is a durable registry shared by every API process. Credentials are
// stored as SHA-256 hashes scored by their expiry, so a restart keeps
// revocations and the raw credential never reaches Redis.
type Redis struct {
	rdb    *redis.Client
	key    string
	expiry ExpiryFunc

	Metrics *metrics.Metrics
	Now     func() time.Time
}

func NewRedis(rdb *redis.Client, expiry ExpiryFunc) *Redis {
	return &Redis{rdb: rdb, key: defaultRedisKey, expiry: expiry, Now: time.Now}
}

func (r *Redis) Revoke(ctx context.Context, token string) error {
	// Undecodable credentials get score 0 so the next sweep evicts them.
	var score int64
	if exp, ok := r.expiry(token); ok {
		score = exp.UnixMilli()
	}
	removed, err := revokeScript.Run(ctx, r.rdb, []string{r.key},
		hashToken(token), score, Threshold, r.Now().UnixMilli()).Int()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	r.Metrics.ObserveSweep("threshold", removed)
	return nil
}

func (r *Redis) IsRevoked(ctx context.Context, token string) (bool, error) {
	_, err := r.rdb.ZScore(ctx, r.key, hashToken(token)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return true, nil
}

func (r *Redis) Sweep(ctx context.Context) (int, error) {
	n, err := r.rdb.ZRemRangeByScore(ctx, r.key, "-inf", fmt.Sprintf("%d", r.Now().UnixMilli())).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return int(n), nil
}

func (r *Redis) Size(ctx context.Context) (int, error) {
	n, err := r.rdb.ZCard(ctx, r.key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return int(n), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
