package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sashasmiles/clinic-backend/pkg/logging"
)

// RedisLimiter is a fixed-window rate limiter backed by Redis, for
// deployments where multiple instances serve the public intake endpoints.
// It fails open: if Redis is unreachable the request proceeds.
type RedisLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	prefix string
	logger *logging.Logger
}

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// NewRedisLimiter creates a limiter allowing limit requests per window per key.
func NewRedisLimiter(rdb *redis.Client, limit int, window time.Duration, prefix string, logger *logging.Logger) *RedisLimiter {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	if prefix = strings.TrimSpace(prefix); prefix == "" {
		prefix = "rl"
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisLimiter{rdb: rdb, limit: limit, window: window, prefix: prefix, logger: logger}
}

// Allow reports whether the request from key is within the rate limit.
func (rl *RedisLimiter) Allow(r *http.Request, key string) bool {
	count, err := rl.incr(r.Context(), rl.prefix+":"+key)
	if err != nil {
		rl.logger.Warn("redis rate limiter error, failing open", "error", err)
		return true
	}
	return count <= int64(rl.limit)
}

func (rl *RedisLimiter) incr(ctx context.Context, key string) (int64, error) {
	return fixedWindowScript.Run(ctx, rl.rdb, []string{key}, rl.window.Milliseconds()).Int64()
}

var _ Limiter = (*RedisLimiter)(nil)
