package auth

import (
	"context"
	"net/http"
	"strings"

	"school-assistant-backend/internal/analytics"
)

type ctxKey string

const userIDKey ctxKey = "user_id"

type Middleware struct {
	secret []byte
}

func New(secret []byte) Middleware {
	return Middleware{secret: secret}
}

func (m Middleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		userID, err := ParseToken(m.secret, strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		next(w, r.WithContext(WithUserID(r.Context(), userID)))
	}
}

// WithUserID marks ctx as authenticated for userID, for both this package and analytics.
func WithUserID(ctx context.Context, userID int) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return analytics.WithUserID(ctx, userID)
}

func UserIDFromContext(ctx context.Context) (int, bool) {
	v := ctx.Value(userIDKey)
	if v == nil {
		return 0, false
	}
	uid, ok := v.(int)
	return uid, ok
}
