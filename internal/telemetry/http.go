// Package telemetry instruments the HTTP server: one span and one metric
// sample per request.
package telemetry

import (
	"log"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "finboard/internal/telemetry"

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// HTTPMiddleware wraps next with a server span, a request counter, and a
// duration histogram per request. skipPaths lists paths to not record
// (health probes). Best-effort: instrument creation failures are logged and
// the middleware degrades to a passthrough.
func HTTPMiddleware(next http.Handler, skipPaths map[string]bool) http.Handler {
	tracer := otel.Tracer(instrumentationName)
	meter := otel.Meter(instrumentationName)

	requests, err := meter.Int64Counter("http.server.requests",
		metric.WithDescription("Completed HTTP requests"))
	if err != nil {
		log.Printf("telemetry: request counter: %v", err)
	}
	duration, err := meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("ms"))
	if err != nil {
		log.Printf("telemetry: duration histogram: %v", err)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}
		ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))
		elapsed := time.Since(start)

		attrs := []attribute.KeyValue{
			attribute.String("http.request.method", r.Method),
			attribute.String("url.path", r.URL.Path),
			attribute.Int("http.response.status_code", rec.status),
		}
		span.SetAttributes(attrs...)
		if rec.status >= http.StatusInternalServerError {
			span.SetStatus(otelcodes.Error, http.StatusText(rec.status))
		}
		if requests != nil {
			requests.Add(ctx, 1, metric.WithAttributes(attrs...))
		}
		if duration != nil {
			duration.Record(ctx, float64(elapsed.Milliseconds()), metric.WithAttributes(attrs...))
		}
	})
}
