package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	jwtutil "github.com/Dias221467/Threads_Backend/pkg/jwt"
	log "github.com/sirupsen/logrus"
)

type contextKey string

const userContextKey contextKey = "user"

// Authenticator resolves a raw session token into its claims.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*jwtutil.Claims, error)
}

// AuthMiddleware rejects requests without a valid session. The token is read
// from the "jwt" cookie, falling back to an Authorization bearer header.
func AuthMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			claims, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				log.WithError(err).WithField("path", r.URL.Path).Warn("Rejected session token")
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims)))
		})
	}
}

// WithUser stores claims on ctx.
func WithUser(ctx context.Context, claims *jwtutil.Claims) context.Context {
	return context.WithValue(ctx, userContextKey, claims)
}

// GetUserFromContext returns the authenticated caller, or nil.
func GetUserFromContext(ctx context.Context) *jwtutil.Claims {
	claims, _ := ctx.Value(userContextKey).(*jwtutil.Claims)
	return claims
}

// SessionToken returns the raw session token carried by r, if any.
func SessionToken(r *http.Request) string {
	return tokenFromRequest(r)
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie("jwt"); err == nil && c.Value != "" {
		return c.Value
	}
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
