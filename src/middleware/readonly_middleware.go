package middleware

import (
	"net/http"

	"mpdee-accounts/src/util"
)

// ReadOnlyMiddleware rejects every write except signing in and out when
// readOnly is set.
func ReadOnlyMiddleware(readOnly bool) func(http.Handler) http.Handler {
	allowedPosts := map[string]bool{
		"/api/auth/login":  true,
		"/api/auth/logout": true,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !readOnly || r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			if r.Method == http.MethodPost && allowedPosts[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			util.WriteError(w, http.StatusForbidden, "read-only mode: only GET requests are allowed")
		})
	}
}
