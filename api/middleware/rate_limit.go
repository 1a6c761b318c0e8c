package middleware

import (
	"net/http"
	"time"

	"github.com/mariasandoval/storelocator-backend/api/responses"
	"github.com/mariasandoval/storelocator-backend/internal/ratelimit"
	pkgerrors "github.com/mariasandoval/storelocator-backend/pkg/errors"
	"github.com/mariasandoval/storelocator-backend/pkg/logger"
)

// RateLimit enforces the dual-window quota on every request it wraps.
// Authenticated callers are counted per user; anonymous callers per
// client IP. A counter store failure denies the request rather than
// letting traffic through unmetered.
func RateLimit(limiter ratelimit.Limiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			subject := UserIDFromContext(ctx)
			scope := "user"
			if subject == "" {
				subject = clientIP(r)
				scope = "ip"
			}

			decision, err := limiter.Admit(ctx, subject, time.Now())
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
				return
			}
			if !decision.Allowed {
				if logg != nil {
					logCtx := logg.WithFields(ctx, map[string]any{
						"scope":               scope,
						"retry_after_seconds": decision.RetryAfterSeconds(),
					})
					logg.Warn(logCtx, "rate_limit.blocked")
				}
				responses.WriteRateLimited(ctx, logg, w, decision.RetryAfterSeconds())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
