// Package shell decides which of the two presentation modes a client gets:
// the compact installed-app shell (TWA/WebView) or the spacious browser layout.
package shell

import (
	"context"
	"net/http"
	"strings"
)

// Environment is the runtime host classification for a request.
type Environment string

const (
	// InstalledShell is a trusted web activity / WebView wrapper.
	InstalledShell Environment = "installed_shell"
	// BrowserTab is an ordinary browser.
	BrowserTab Environment = "browser"
	// Unknown means no user agent was presented.
	Unknown Environment = "unknown"
)

// Classify inspects a user-agent string and picks the presentation mode.
// Android WebView marks itself with "wv"; older wrappers report "Version/4.0".
func Classify(userAgent string) Environment {
	ua := strings.ToLower(strings.TrimSpace(userAgent))
	if ua == "" {
		return Unknown
	}
	if strings.Contains(ua, "wv") || strings.Contains(ua, "version/4.0") {
		return InstalledShell
	}
	return BrowserTab
}

type ctxKey string

const envKey ctxKey = "mentari.shell_env"

// WithEnvironment stores the classification in context.
func WithEnvironment(ctx context.Context, env Environment) context.Context {
	return context.WithValue(ctx, envKey, env)
}

// FromContext extracts the classification, defaulting to Unknown.
func FromContext(ctx context.Context) Environment {
	if env, ok := ctx.Value(envKey).(Environment); ok {
		return env
	}
	return Unknown
}

// Middleware classifies each request once and exposes the result to handlers
// via context and to clients via the X-App-Environment response header.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			env := Classify(r.UserAgent())
			w.Header().Set("X-App-Environment", string(env))
			next.ServeHTTP(w, r.WithContext(WithEnvironment(r.Context(), env)))
		})
	}
}
