package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/config"
)

// fixed-window counter: INCR the window key, set its TTL on first hit.
// Returns {count, ttl_ms} so the middleware can emit Retry-After.
var rateScript = redis.NewScript(`
	local key = KEYS[1]
	local window_ms = tonumber(ARGV[1])
	local count = redis.call('INCR', key)
	if count == 1 then
		redis.call('PEXPIRE', key, window_ms)
	end
	local ttl = redis.call('PTTL', key)
	return { count, ttl }
`)

// NewRateLimit returns an Echo middleware that throttles requests per
// client IP + route using a Redis fixed-window counter.  When Redis is not
// configured or a call fails the middleware lets the request through:
// throttling is protection, not a dependency.
func NewRateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			window := time.Now().UnixMilli() / cfg.Window.Milliseconds()
			key := cfg.Prefix + ":" + c.RealIP() + ":" + c.Request().Method + ":" + c.Path() +
				":" + strconv.FormatInt(window, 10)

			vals, err := rateScript.Run(c.Request().Context(), rdb,
				[]string{key}, cfg.Window.Milliseconds()).Int64Slice()
			if err != nil || len(vals) != 2 {
				return next(c)
			}
			count, ttlMs := vals[0], vals[1]

			remaining := int64(cfg.Limit) - count
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(cfg.Limit) {
				secs := (ttlMs + 999) / 1000
				if secs < 0 {
					secs = 0
				}
				c.Response().Header().Set("Retry-After", strconv.FormatInt(secs, 10))
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many requests"})
			}
			return next(c)
		}
	}
}
