// Package ratelimit provides a Redis-backed token bucket used to throttle
// the payment endpoints per actor.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBucket is a distributed token bucket keyed per caller. State lives in
// Redis so every API replica shares one budget.
type TokenBucket struct {
	client    *redis.Client
	capacity  int
	refillPPS float64
	ttl       time.Duration
	keyPrefix string
}

func NewTokenBucket(client *redis.Client, capacity int, refillPerSecond float64, ttl time.Duration) *TokenBucket {
	return &TokenBucket{
		client:    client,
		capacity:  capacity,
		refillPPS: refillPerSecond,
		ttl:       ttl,
		keyPrefix: "ratelimit:payments:",
	}
}

// Allow consumes one token for the given actor if available.
func (b *TokenBucket) Allow(ctx context.Context, actorID string) (bool, error) {
	now := time.Now().UnixMilli()
	key := b.keyPrefix + actorID

	res, err := bucketScript.Run(ctx, b.client, []string{key},
		b.capacity, b.refillPPS, now, b.ttl.Milliseconds(),
	).Result()
	if err != nil {
		return false, fmt.Errorf("failed to run bucket script: %w", err)
	}

	arr, ok := res.([]interface{})
	if !ok || len(arr) < 1 {
		return false, fmt.Errorf("unexpected bucket script result: %v", res)
	}

	allowed, ok := arr[0].(int64)
	if !ok {
		return false, fmt.Errorf("unexpected bucket script result: %v", res)
	}

	return allowed == 1, nil
}

var bucketScript = redis.NewScript(`
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local refill = tonumber(ARGV[2]) -- tokens per second
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local data = redis.call('HMGET', key, 'tokens', 'last_ms')
local tokens = tonumber(data[1])
local last = tonumber(data[2])
if tokens == nil then tokens = capacity end
if last == nil then last = now end

local delta = math.max(0, now - last)
tokens = math.min(capacity, tokens + delta / 1000 * refill)

local allowed = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
end

redis.call('HMSET', key, 'tokens', tokens, 'last_ms', now)
if ttl > 0 then redis.call('PEXPIRE', key, ttl) end
return {allowed, tokens}
`)
