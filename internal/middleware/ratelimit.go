package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/forgo/setlist/api/internal/model"
)

// RateLimitConfig holds rate limiter configuration
type RateLimitConfig struct {
	Enabled  bool
	Requests int           // Requests per window (default 100)
	Window   time.Duration // Time window (default 1 minute)
}

// RateLimit limits requests per client IP. Rejected requests get a JSON
// 429 with Retry-After.
func RateLimit(cfg RateLimitConfig) Middleware {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.Requests <= 0 {
		cfg.Requests = 100
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}

	retryAfter := int(cfg.Window.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}

	return httprate.Limit(
		cfg.Requests,
		cfg.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			model.NewRateLimitError(retryAfter).WriteJSON(w)
		}),
	)
}
