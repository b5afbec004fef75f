package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/config"
)

// bodyCapture tees the response body into a buffer while writing through to
// the client, so a 200 can be stored after the handler ran.
type bodyCapture struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (w *bodyCapture) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// NewResponseCache returns an Echo middleware that serves GET responses
// from Redis for a short TTL.  Only 200 JSON responses are stored.  The
// question listing is the hot read of the platform (every quiz screen polls
// it), which is what this exists for; the TTL is short enough that a
// visibility flip propagates within seconds.  A missing Redis client
// disables caching entirely.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			// Responses diverge per viewer (role-based visibility), so the
			// authenticated subject is part of the key.
			uid, _ := c.Get(CtxUserID).(string)
			sum := sha1.Sum([]byte(uid + "|" + c.Path() + "|" + c.Request().URL.RawQuery))
			key := fmt.Sprintf("%s:%x", cfg.Prefix, sum)

			ctx := c.Request().Context()
			if body, err := rdb.Get(ctx, key).Bytes(); err == nil {
				c.Response().Header().Set("X-Cache", "HIT")
				return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, body)
			}

			w := &bodyCapture{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = w
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			ct := c.Response().Header().Get(echo.HeaderContentType)
			if w.status == http.StatusOK && strings.HasPrefix(ct, echo.MIMEApplicationJSON) {
				_ = rdb.SetEx(context.Background(), key, w.buf.Bytes(), cfg.TTL).Err()
			}
			return nil
		}
	}
}
