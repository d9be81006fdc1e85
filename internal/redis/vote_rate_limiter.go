package redis

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
)

// tokenBucketScript refills the bucket based on elapsed time, then tries to
// consume one token. Atomic per key.
// KEYS[1]=bucket hash, ARGV: [1]=now_ms, [2]=capacity, [3]=tokens per minute
var tokenBucketScript = goredis.NewScript(`
local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens'))
local last_refill = tonumber(redis.call('HGET', KEYS[1], 'last_refill'))
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local rate = tonumber(ARGV[3])
if tokens == nil then
  tokens = capacity
  last_refill = now
end
local elapsed_min = (now - last_refill) / 60000.0
tokens = math.min(capacity, tokens + elapsed_min * rate)
local allowed = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
end
redis.call('HSET', KEYS[1], 'tokens', tostring(tokens), 'last_refill', tostring(now))
redis.call('PEXPIRE', KEYS[1], 3600000)
return allowed
`)

// VoteRateLimiter implements token bucket rate limiting for votes, keyed by
// the voting user.
type VoteRateLimiter struct {
	rdb      *goredis.Client
	clock    clockwork.Clock
	capacity int
	rate     int // tokens per minute
}

// NewVoteRateLimiter creates a new vote rate limiter.
// capacity: maximum burst size (tokens)
// rate: sustained rate (tokens per minute)
func NewVoteRateLimiter(rdb *goredis.Client, clock clockwork.Clock, capacity, rate int) *VoteRateLimiter {
	return &VoteRateLimiter{
		rdb:      rdb,
		clock:    clock,
		capacity: capacity,
		rate:     rate,
	}
}

// Allow checks whether the user may cast another vote, consuming a token
// when it is.
func (v *VoteRateLimiter) Allow(ctx context.Context, userID int64) (bool, error) {
	key := fmt.Sprintf("rate_limit:votes:%d", userID)

	result, err := tokenBucketScript.Run(ctx, v.rdb, []string{key},
		v.clock.Now().UnixMilli(),
		v.capacity,
		v.rate,
	).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	return result == 1, nil
}
