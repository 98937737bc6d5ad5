package logger

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/langowen/cotizaya/internal/metrics"
)

// New logs every request once it completes and records it in the API metrics.
func New() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		log := slog.Default().With(
			slog.String("component", "middleware/logger"),
		)

		log.Info("logger middleware enabled")

		fn := func(w http.ResponseWriter, r *http.Request) {
			entry := log.With(
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", r.UserAgent()),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			t1 := time.Now()
			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				elapsed := time.Since(t1)

				entry.Info("request completed",
					slog.Int("status", status),
					slog.Int("bytes", ww.BytesWritten()),
					slog.String("duration", elapsed.String()),
				)

				code := strconv.Itoa(status)
				metrics.APIRequestTotal.WithLabelValues(r.Method, code).Inc()
				metrics.APIRequestDuration.WithLabelValues(r.Method, code).Observe(elapsed.Seconds())
			}()

			next.ServeHTTP(ww, r)
		}

		return http.HandlerFunc(fn)
	}
}
