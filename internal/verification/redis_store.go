package verification

import (
	"context"
	"fmt"
	"time"

	"github.com/bizlab-kr/leadbot/internal/models"
	"github.com/bizlab-kr/leadbot/internal/redisclient"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces verification hashes.
const DefaultKeyPrefix = "leadbot:verification:"

// consumeScript checks and consumes a record in one step.
// KEYS[1] record key; ARGV[1] code; ARGV[2] now in unix milliseconds.
const consumeScript = `
local rec = redis.call('HMGET', KEYS[1], 'code', 'expires_at', 'consumed')
if not rec[1] then
  return 0
end
if rec[3] == '1' then
  return 0
end
if tonumber(rec[2]) <= tonumber(ARGV[2]) then
  return 0
end
if rec[1] ~= ARGV[1] then
  return 0
end
redis.call('HSET', KEYS[1], 'consumed', '1')
return 1
`

// RedisStore keeps records as hashes that expire with the code.
type RedisStore struct {
	client *redisclient.Client
	prefix string
}

func NewRedisStore(client *redisclient.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(phone string) string {
	return s.prefix + phone
}

func (s *RedisStore) Put(ctx context.Context, rec models.VerificationRecord) error {
	key := s.key(rec.Phone)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			"code", rec.Code,
			"created_at", rec.CreatedAt.UnixMilli(),
			"expires_at", rec.ExpiresAt.UnixMilli(),
			"consumed", "0",
		)
		pipe.PExpireAt(ctx, key, rec.ExpiresAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store verification record: %w", err)
	}
	return nil
}

func (s *RedisStore) Consume(ctx context.Context, phone, code string, now time.Time) (bool, error) {
	n, err := s.client.Eval(ctx, consumeScript, []string{s.key(phone)}, code, now.UnixMilli()).Int()
	if err != nil {
		return false, fmt.Errorf("failed to consume verification record: %w", err)
	}
	return n == 1, nil
}
