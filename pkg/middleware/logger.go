package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// Logger returns middleware that emits one log line per request after the
// handler chain returns.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Info("request served",
				"method", r.Method,
				"path", r.URL.RequestURI(),
				"remote", r.RemoteAddr,
				"elapsed", time.Since(start),
			)
		})
	}
}
