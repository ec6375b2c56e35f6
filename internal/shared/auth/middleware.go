package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/intern-assistant/platform/internal/shared/config"
)

// Middleware creates JWT authentication middleware. The token subject
// is resolved against the user store so revoked accounts stop working
// immediately, matching how the login endpoint issued the token.
func Middleware(cfg config.AuthConfig, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				writeError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims, err := ParseToken(cfg, parts[1])
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			identity, err := users.FindIdentity(r.Context(), claims.Subject)
			if err != nil || identity == nil {
				writeError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
