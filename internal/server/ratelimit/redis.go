package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// fixedWindowScript counts a request and returns the new count and the window's remaining
// lifetime in milliseconds.
const fixedWindowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`

// redisTimeout bounds each limiter round trip so a slow Redis cannot stall requests.
const redisTimeout = 250 * time.Millisecond

// RedisLimiter enforces fixed-window limits shared by every instance using the same Redis.
// It fails open: when Redis is unavailable requests are allowed and the failure is logged.
type RedisLimiter struct {
	client *redis.Client
	config *Config
	prefix string
	script *redis.Script
	logger *slog.Logger
}

// NewRedisLimiter creates a limiter on client. A nil config uses LoadConfig defaults.
func NewRedisLimiter(client *redis.Client, config *Config, prefix string, logger *slog.Logger) *RedisLimiter {
	if config == nil {
		config = LoadConfig(func(string) (string, bool) { return "", false })
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisLimiter{
		client: client,
		config: config,
		prefix: prefix,
		script: redis.NewScript(fixedWindowScript),
		logger: logger,
	}
}

// Allow counts the request against its window. Burst does not apply to fixed windows.
func (l *RedisLimiter) Allow(ctx context.Context, clientID, endpoint, method string) (bool, Info) {
	endpointConfig, decided := l.config.resolve(clientID, endpoint, method)
	if decided != nil {
		return *decided, Info{Allowed: *decided}
	}
	if l.client == nil {
		return true, Info{Allowed: true}
	}

	key := bucketKey(clientID, method, endpointConfig)
	if l.prefix != "" {
		key = l.prefix + ":" + key
	}
	ttl := endpointConfig.Window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}

	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	res, err := l.script.Run(ctx, l.client, []string{key}, ttl).Int64Slice()
	if err != nil || len(res) != 2 {
		l.logger.Warn("rate limiter unavailable, allowing request", "key", key, "error", err)
		return true, Info{Allowed: true}
	}

	count, pttl := res[0], res[1]
	if pttl < 0 {
		pttl = ttl
	}
	resetIn := time.Duration(pttl) * time.Millisecond
	limit := endpointConfig.Limit
	allowed := count <= int64(limit)

	info := Info{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: max(limit-int(count), 0),
		ResetTime: time.Now().Add(resetIn),
	}
	if !allowed {
		info.RetryAfter = max(resetIn, time.Second)
	}
	return allowed, info
}

// Stop is a no-op; the Redis client is owned by the caller.
func (l *RedisLimiter) Stop() {}

var (
	_ Allower = (*Limiter)(nil)
	_ Allower = (*RedisLimiter)(nil)
)
