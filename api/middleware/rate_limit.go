package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rollmates/dicematch-backend/api/responses"
	"github.com/rollmates/dicematch-backend/pkg/config"
	pkgerrors "github.com/rollmates/dicematch-backend/pkg/errors"
	"github.com/rollmates/dicematch-backend/pkg/logger"
)

// RateLimiterStore is the counter surface the limiter needs from redis.
type RateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
	RateLimitKey(string) string
}

// RollRateLimit throttles roll submissions per user over a fixed window.
// Without an identity on the request the limiter stays out of the way; the
// handler rejects anonymous submissions itself.
func RollRateLimit(cfg config.RollRateLimitConfig, store RateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if cfg.Window <= 0 || cfg.PerUserLimit <= 0 || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			userID := UserIDFromContext(ctx)
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			key := store.RateLimitKey(fmt.Sprintf("rolls:%s", userID))
			count, err := store.IncrWithTTL(ctx, key, cfg.Window)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
				return
			}
			if count > int64(cfg.PerUserLimit) {
				if logg != nil {
					logCtx := logg.WithFields(ctx, map[string]any{
						"attempts":       count,
						"limit":          cfg.PerUserLimit,
						"window_seconds": int(cfg.Window.Seconds()),
					})
					logg.Warn(logCtx, "rolls.rate_limit.blocked")
				}
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many rolls, slow down"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
