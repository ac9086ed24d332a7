package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"agentdeck/internal/auth"
	"agentdeck/internal/httputil"
)

// OptionalAuth resolves the viewer from a bearer token. It never rejects a
// request: a missing or invalid token yields the anonymous viewer, and each
// operation decides whether it needs an authenticated one. A nil verifier
// treats every request as anonymous.
func OptionalAuth(verifier auth.TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok || verifier == nil {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Debug("continuing as anonymous viewer",
					"path", r.URL.Path,
					"request_id", httputil.GetRequestID(r),
				)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, httputil.WithViewer(r, claims.Viewer()))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
