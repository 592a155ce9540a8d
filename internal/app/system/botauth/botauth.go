// internal/app/system/botauth/botauth.go
package botauth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	tokenstore "github.com/dalemusser/scripthub/internal/app/store/tokens"
	"github.com/dalemusser/scripthub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

type ctxKey string

const tokenKey ctxKey = "apiToken"

// Middleware authenticates bot requests with bearer API tokens. Failed
// verifications are rate limited per client IP so an attacker cannot burn
// CPU on bcrypt comparisons or enumerate token IDs.
type Middleware struct {
	tokens  *tokenstore.Store
	limiter *ratelimit.Limiter
	log     *zap.Logger
}

// New creates the middleware. The failure limiter allows 20 bad attempts
// per IP per minute; successful verifications reset the window.
func New(store *tokenstore.Store, logger *zap.Logger) *Middleware {
	return &Middleware{
		tokens:  store,
		limiter: ratelimit.New(20, time.Minute),
		log:     logger,
	}
}

// TokenFromContext returns the verified token attached by Require.
func TokenFromContext(ctx context.Context) (tokenstore.Token, bool) {
	tok, ok := ctx.Value(tokenKey).(tokenstore.Token)
	return tok, ok
}

// Require rejects requests without a valid "Authorization: Bearer sh_..."
// header. On success the verified token rides the request context.
func (m *Middleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ratelimit.ClientIP(r)
		if !m.limiter.Allow(ip) {
			writeJSONError(w, http.StatusTooManyRequests, "too many failed authentication attempts")
			return
		}

		raw := bearerToken(r)
		if raw == "" {
			writeJSONError(w, http.StatusUnauthorized, "bearer token required")
			return
		}

		tok, err := m.tokens.Verify(r.Context(), raw)
		if err != nil {
			switch {
			case errors.Is(err, tokenstore.ErrMalformed),
				errors.Is(err, tokenstore.ErrNotFound),
				errors.Is(err, tokenstore.ErrInvalidSecret):
				writeJSONError(w, http.StatusUnauthorized, "invalid token")
			case errors.Is(err, tokenstore.ErrRevoked):
				writeJSONError(w, http.StatusUnauthorized, "token revoked")
			default:
				m.log.Error("token verification failed", zap.Error(err))
				writeJSONError(w, http.StatusInternalServerError, "internal server error")
			}
			return
		}

		// Good token: stop counting this IP against the failure window.
		m.limiter.Reset(ip)

		ctx := context.WithValue(r.Context(), tokenKey, tok)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
