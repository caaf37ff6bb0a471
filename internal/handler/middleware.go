package handler

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	"github.com/angeloszaimis/ab-dashboard/internal/metrics"
)

// RequestIDHeader is read from inbound requests and set on responses.
const RequestIDHeader = "X-Request-ID"

type ctxKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestID returns the request ID stored by Instrument, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Instrument wraps next with request ID assignment, access logging and a
// request-received metrics event labelled with route.
func (d *DashboardHandler) Instrument(route string, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		clientIP := extractClientIP(r)

		d.logger.Info("Received request",
			slog.String("request_id", requestID),
			slog.String("from", clientIP),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("route", route),
			slog.String("user_agent", r.UserAgent()))

		d.metricsCollector.Emit(metrics.MetricEvent{
			Type:      metrics.EventRequestReceived,
			Timestamp: time.Now(),
			Route:     route,
		})

		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next(wrapped, r.WithContext(context.WithValue(r.Context(), ctxKey{}, requestID)), ps)

		d.logger.Debug("Completed request",
			slog.String("request_id", requestID),
			slog.String("route", route),
			slog.Int("status", wrapped.statusCode),
			slog.Duration("duration", time.Since(start)))
	}
}

func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}

	host, _, _ := net.SplitHostPort(r.RemoteAddr)
	return host
}
