package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestLogger logs one line per request with status, size and latency.
// 5xx responses are logged at error level, 4xx at warn.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		userID, _ := GetUserID(r.Context())

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", chimw.GetReqID(r.Context()),
			"user_id", userID,
		}

		switch {
		case status >= 500:
			slog.ErrorContext(r.Context(), "HTTP request", attrs...)
		case status >= 400:
			slog.WarnContext(r.Context(), "HTTP request", attrs...)
		default:
			slog.InfoContext(r.Context(), "HTTP request", attrs...)
		}
	})
}
