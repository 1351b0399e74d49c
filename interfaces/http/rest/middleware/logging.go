package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"teamsqa-backend/pkg/common"
)

// Logger creates a logging middleware. The chi request ID is copied into the
// common request context so handlers and services can attach it to their own
// log lines without importing chi.
func Logger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			if reqID := middleware.GetReqID(r.Context()); reqID != "" {
				r = r.WithContext(common.WithRequestID(r.Context(), reqID))
			}

			// Wrap response writer to capture status code
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("HTTP Request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestID", common.GetRequestID(r.Context())),
				zap.String("remoteAddr", r.RemoteAddr),
			)
		})
	}
}
