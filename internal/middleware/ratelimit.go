package middleware

import (
	"math"
	"net/http"
	"strconv"

	"mahattati/internal/logger"
	"mahattati/internal/ratelimit"
	"mahattati/internal/reqctx"
	"mahattati/internal/utils/helpers"

	"go.uber.org/zap"
)

const TooManyRequestsMessage = "Too many requests from this IP, please try again later."

// RateLimit ограничивает число запросов с одного IP. Ставится после RequestID.
// Если хранилище лимитов недоступно, запрос пропускается.
func RateLimit(l ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := reqctx.GetClientIP(r.Context())
			if ip == "" {
				ip = ClientIP(r)
			}

			d, err := l.Allow(r.Context(), ip)
			if err != nil {
				logger.WithCtx(r.Context()).Warn("Лимитер недоступен, запрос пропущен", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("RateLimit-Remaining", strconv.Itoa(d.Remaining))
			if !d.Allowed {
				secs := int(math.Ceil(d.RetryAfter.Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				logger.WithCtx(r.Context()).Warn("Превышен лимит запросов", zap.String("ip", ip))
				helpers.Error(w, http.StatusTooManyRequests, TooManyRequestsMessage)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
