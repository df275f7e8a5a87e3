package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMid "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/gabomsambo/silce/internal/observability"
)

const (
	maxLoggedPath = 256
	maxLoggedIP   = 64
)

// Logger emits a structured log per request and records request metrics.
// The request-scoped logger, tagged with the request id, is placed in context.
func Logger(logger *zap.Logger, metrics *observability.Metrics) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rid := chiMid.GetReqID(r.Context())
			reqLogger := logger
			ctx := r.Context()
			if rid != "" {
				reqLogger = logger.With(zap.String("request_id", rid))
				ctx = WithRequestID(ctx, rid)
			}
			ctx = observability.WithLogger(ctx, reqLogger)
			ctx, lf := withLogFields(ctx)
			r = r.WithContext(ctx)

			// wrap writer to capture status
			rw := NewResponseRecorder(w)
			next.ServeHTTP(rw, r)

			route := routePattern(r)
			dur := time.Since(start)
			metrics.ObserveHTTP(route, r.Method, rw.Status(), dur)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.String("path", observability.SanitizeString(r.URL.Path, maxLoggedPath)),
				zap.Int("status", rw.Status()),
				zap.Int64("duration_ms", dur.Milliseconds()),
				zap.String("remote_ip", observability.SanitizeString(clientIP(r), maxLoggedIP)),
				zap.Bool("htmx", IsHTMX(r.Context())),
			}
			if l := lf.locale; l != "" {
				fields = append(fields, zap.String("locale", l))
			}
			switch {
			case rw.Status() >= http.StatusInternalServerError:
				reqLogger.Error("request", fields...)
			case rw.Status() >= http.StatusBadRequest:
				reqLogger.Warn("request", fields...)
			default:
				reqLogger.Info("request", fields...)
			}
		})
	}
}

// routePattern keeps metric cardinality bounded: unmatched paths share one label.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func clientIP(r *http.Request) string {
	// Trust X-Forwarded-For set by the fronting proxy (last IP is client)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		p := strings.Split(xff, ",")
		return strings.TrimSpace(p[len(p)-1])
	}
	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i != -1 {
		if _, err := strconv.Atoi(host[i+1:]); err == nil {
			return host[:i]
		}
	}
	return host
}
