package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskforge/backend/api/transport"
)

// RateLimit throttles requests per client IP within a fixed window, backed by
// Redis so the count holds across replicas. A Redis outage fails open.
func RateLimit(client *redislib.Client, limit int, window time.Duration, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			key := fmt.Sprintf("ratelimit:%s:%s", ctx.Path(), ctx.RemoteIP())

			stdCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			count, err := client.Incr(stdCtx, key).Result()
			if err != nil {
				logger.Warn("rate limiter unavailable", zap.Error(err))
				next(ctx)
				return
			}
			if count == 1 {
				client.Expire(stdCtx, key, window)
			}

			if count > int64(limit) {
				ttl, _ := client.TTL(stdCtx, key).Result()
				if ttl > 0 {
					ctx.Response.Header.Set("Retry-After", strconv.Itoa(int(ttl.Seconds())))
				}
				writeEnvelope(ctx, transport.NewFailure(http.StatusTooManyRequests, "too many requests", nil))
				return
			}

			next(ctx)
		}
	}
}
