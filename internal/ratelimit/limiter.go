package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/casaondara/booking-platform/pkg/logging"
)

// Limiter is a fixed-window counter backed by Redis, keyed by customer
// key. The count-and-check is a single Lua script, so concurrent requests
// for the same key cannot race past the limit.
type Limiter struct {
	rdb    *redis.Client
	max    int
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

// New creates a limiter allowing max requests per window for each key.
func New(rdb *redis.Client, max int, window time.Duration, logger *logging.Logger) *Limiter {
	if max <= 0 {
		max = 2
	}
	if window <= 0 {
		window = time.Hour
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Limiter{rdb: rdb, max: max, window: window, prefix: "booking:rate", logger: logger}
}

// Allow counts this request against key's window and reports whether it is
// within the limit. A Redis failure is returned to the caller: the limiter
// is a correctness gate, so it does not fail open.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := l.prefix + ":" + key
	count, err := l.incr(ctx, redisKey)
	if err != nil {
		return false, fmt.Errorf("ratelimit: incr %s: %w", redisKey, err)
	}
	if count > int64(l.max) {
		l.logger.Warn("booking rate limit exceeded", "key", key, "count", count, "max", l.max)
		return false, nil
	}
	return true, nil
}

func (l *Limiter) incr(ctx context.Context, key string) (int64, error) {
	ms := l.window.Milliseconds()
	res, err := fixedWindowScript.Run(ctx, l.rdb, []string{key}, ms).Result()
	if err != nil {
		return 0, err
	}
	switch v := res.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, err
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected redis script result type %T", res)
	}
}

// Reset clears the window for a key (admin use).
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.rdb.Del(ctx, l.prefix+":"+key).Err()
}
