package httpapi

import (
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"school-assistant-backend/internal/auth"
)

// Limiter holds one token bucket per user for the model-backed routes.
type Limiter struct {
	mu       sync.Mutex
	limiters map[int]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewLimiter allows perMinute requests per user per minute. perMinute <= 0
// disables limiting.
func NewLimiter(perMinute int) *Limiter {
	if perMinute <= 0 {
		return &Limiter{limit: rate.Inf}
	}
	return &Limiter{
		limiters: make(map[int]*rate.Limiter),
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    perMinute,
	}
}

func (l *Limiter) Allow(userID int) bool {
	if l == nil || l.limit == rate.Inf {
		return true
	}

	l.mu.Lock()
	lim, ok := l.limiters[userID]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[userID] = lim
	}
	l.mu.Unlock()

	return lim.Allow()
}

// Wrap must sit inside the auth middleware.
func (l *Limiter) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := auth.UserIDFromContext(r.Context())
		if !l.Allow(uid) {
			rateLimited.Inc()
			w.Header().Set("Retry-After", "60")
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
