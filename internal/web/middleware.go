package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// requestLogger logs each request with its status, size and latency.
func requestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			entry := log.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      status,
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  middleware.GetReqID(r.Context()),
			})

			// Frame polling is frequent.
			if r.URL.Path == "/healthz" || (status < http.StatusBadRequest && isTick(r)) {
				entry.Debug("Request")
				return
			}
			if status >= http.StatusInternalServerError {
				entry.Warn("Request")
				return
			}
			entry.Info("Request")
		})
	}
}

func isTick(r *http.Request) bool {
	return strings.HasSuffix(r.URL.Path, "/tick")
}
