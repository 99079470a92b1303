package middleware

import (
	"net/http"
	"strings"
)

// Cross-origin policy for the booking API. The app shell and web client are
// the only intended callers, so the grant is a small fixed set; the
// X-App-Environment response header is exposed so cross-origin clients can
// read their shell classification.
const (
	corsAllowedHeaders = "Authorization, Content-Type, X-Request-ID"
	corsAllowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsExposedHeaders = "X-App-Environment, X-RateLimit-Remaining, Retry-After"
	corsMaxAge         = "600"
)

// CORS grants cross-origin access to origins on the allowlist. A "*" entry
// echoes any Origin back rather than sending a literal wildcard, since the
// API uses Authorization headers.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAny := false
	allow := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origin = strings.ToLower(strings.TrimSpace(origin))
		switch origin {
		case "":
		case "*":
			allowAny = true
		default:
			allow[origin] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			granted := origin != "" && originAllowed(allow, allowAny, origin)
			if granted {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
				h.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
				h.Set("Access-Control-Allow-Methods", corsAllowedMethods)
				h.Set("Access-Control-Expose-Headers", corsExposedHeaders)
				h.Set("Access-Control-Max-Age", corsMaxAge)
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if granted {
					w.WriteHeader(http.StatusNoContent)
				} else {
					w.WriteHeader(http.StatusForbidden)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(allow map[string]struct{}, allowAny bool, origin string) bool {
	if allowAny {
		return true
	}
	_, ok := allow[strings.ToLower(origin)]
	return ok
}
