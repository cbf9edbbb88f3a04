package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"coursehub/internal/auth"
	"coursehub/internal/domain/models"
	"coursehub/internal/httputil"
)

// OptionalAuth attaches the caller to the request when a bearer token is present.
// Requests without an Authorization header pass through as anonymous; handlers
// that need an actor reject them. A malformed or invalid token is always a 401.
func OptionalAuth(verifier auth.JWTVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims, err := verifier.VerifyToken(strings.TrimSpace(token))
			if err != nil {
				logger.Debug("token rejected", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, httputil.WithActor(r, models.ActorFromClaims(claims)))
		})
	}
}
