package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// takeScript reads, checks and increments in one round trip so concurrent
// instances never push a window past its limit.
var takeScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current >= tonumber(ARGV[1]) then
  return {current, 0}
end
current = redis.call('INCR', KEYS[1])
if current == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return {current, 1}
`)

type RedisCounterStore struct {
	rdb redis.Scripter
}

func NewRedisCounterStore(rdb redis.Scripter) *RedisCounterStore {
	return &RedisCounterStore{rdb: rdb}
}

func (s *RedisCounterStore) Take(ctx context.Context, key string, limit int64, ttl time.Duration) (int64, bool, error) {
	res, err := takeScript.Run(ctx, s.rdb, []string{key}, limit, ttl.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, false, fmt.Errorf("ratelimit take %s: %w", key, err)
	}
	if len(res) != 2 {
		return 0, false, fmt.Errorf("ratelimit take %s: unexpected reply %v", key, res)
	}
	return res[0], res[1] == 1, nil
}
