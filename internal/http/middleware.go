package http

import (
	"net/http"
	"strings"
)

const hstsValue = "max-age=31536000; includeSubDomains"

// SecurityHeaders adds security-related headers to all responses.
// Session cookies are Secure, so production responses also pin HTTPS.
func SecurityHeaders(isProduction bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

			if isProduction {
				h.Set("Strict-Transport-Security", hstsValue)
			}

			switch {
			// Swagger UI needs scripts, styles, and images to render
			case strings.HasPrefix(r.URL.Path, "/swagger/"):
				h.Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
			default:
				h.Set("Content-Security-Policy", "default-src 'none'")
			}

			// Auth and profile responses carry tokens or signed URLs
			if strings.HasPrefix(r.URL.Path, "/auth/") || strings.HasPrefix(r.URL.Path, "/users/") {
				h.Set("Cache-Control", "no-store")
			}

			next.ServeHTTP(w, r)
		})
	}
}
