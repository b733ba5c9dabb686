package web

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// bearerAuth guards a route subtree with a static bearer key. Admin and cron
// surfaces each get their own key so a leaked cron credential cannot touch
// voucher administration.
func bearerAuth(key string, logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				logger.Error().Str("path", r.URL.Path).Msg("API key is not configured")
				writeError(w, http.StatusForbidden, "FORBIDDEN", "endpoint disabled")
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authorization header")
				return
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "malformed token")
				return
			}

			if subtle.ConstantTimeCompare([]byte(tokenParts[1]), []byte(key)) != 1 {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
